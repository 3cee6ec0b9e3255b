package ryanair

// Profile is the customer profile payload.
type Profile struct {
	CustomerID string `json:"customerId"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// Orders is the active-bookings payload from the orders endpoint.
type Orders struct {
	Items []OrderItem `json:"items"`
}

// OrderItem wraps one booking in the orders list.
type OrderItem struct {
	ProductID  string  `json:"productId"`
	RawBooking Booking `json:"rawBooking"`
}

// Booking carries the booking reference and its flights.
type Booking struct {
	RecordLocator string      `json:"recordLocator"`
	Status        string      `json:"status"`
	Flights       []Journey   `json:"flights"`
	Seats         []Seat      `json:"seats"`
	Passengers    []Passenger `json:"passengers"`
}

// Journey is one direction of a booking, made of one or more segments.
type Journey struct {
	JourneyNum     int       `json:"journeyNum"`
	CheckInOpenUTC string    `json:"checkInOpenUTC"`
	CheckInClose   string    `json:"checkInCloseUTC"`
	Segments       []Segment `json:"segments"`
}

// Segment is a single flight leg.
type Segment struct {
	SegmentNum   int          `json:"segmentNum"`
	Origin       string       `json:"origin"`
	Destination  string       `json:"destination"`
	FlightNumber string       `json:"flightNumber"`
	IsCancelled  bool         `json:"isCancelled"`
	Times        SegmentTimes `json:"times"`
}

// SegmentTimes holds the UTC departure and arrival times of a segment.
type SegmentTimes struct {
	DepartUTC string `json:"departUTC"`
	ArriveUTC string `json:"arriveUTC"`
}

// Seat assigns a passenger to a seat on one segment.
type Seat struct {
	JourneyNum int    `json:"journeyNum"`
	SegmentNum int    `json:"segmentNum"`
	PaxNum     int    `json:"paxNum"`
	Code       string `json:"code"`
}

// Passenger is one traveller on a booking.
type Passenger struct {
	PaxNum     int    `json:"paxNum"`
	Title      string `json:"title"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
}

// BoardingPass is one issued boarding pass. Barcode holds the raw symbology
// payload; rendering it is left to the caller.
type BoardingPass struct {
	Barcode   string         `json:"barcode"`
	Flight    LabelledValue  `json:"flight"`
	Departure Station        `json:"departure"`
	Arrival   Station        `json:"arrival"`
	Seat      SeatDesignator `json:"seat"`
	Name      PassengerName  `json:"name"`
}

// LabelledValue is a display label such as a flight number.
type LabelledValue struct {
	Label string `json:"label"`
}

// Station is an airport on a boarding pass.
type Station struct {
	Name    string `json:"name"`
	DateUTC string `json:"dateUTC"`
}

// SeatDesignator is the assigned seat on a boarding pass.
type SeatDesignator struct {
	Designator string `json:"designator"`
}

// PassengerName is the traveller name on a boarding pass.
type PassengerName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}
