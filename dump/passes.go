package dump

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/declanbyrne/ryanairdump/ryanair"
)

var nonWordChars = regexp.MustCompile(`[\W_]`)

// passFileName builds a per-pass file name from passenger, flight and
// departure date, stripped of anything unsafe for a filesystem.
func passFileName(pass ryanair.BoardingPass) string {
	name := pass.Name.First + " " + pass.Name.Last +
		": (" + pass.Flight.Label + ") " +
		pass.Departure.Name + " - " + pass.Arrival.Name +
		"(" + pass.Seat.Designator + ")"
	return nonWordChars.ReplaceAllString(name+pass.Departure.DateUTC, "") + ".json"
}

// PassResult describes what happened to one boarding pass.
type PassResult struct {
	BookingRef string
	FilePath   string
	Existed    bool
	Err        error
}

// savePasses writes each boarding pass as a JSON file under saveDir.
// Already-saved passes are left alone.
func savePasses(fs FileSystem, saveDir, bookingRef string, passes []ryanair.BoardingPass) []PassResult {
	results := make([]PassResult, 0, len(passes))

	for _, pass := range passes {
		path := filepath.Join(saveDir, passFileName(pass))

		if fs.Exists(path) {
			results = append(results, PassResult{BookingRef: bookingRef, FilePath: path, Existed: true})
			continue
		}

		data, err := json.MarshalIndent(pass, "", "  ")
		if err != nil {
			results = append(results, PassResult{BookingRef: bookingRef, Err: fmt.Errorf("failed to encode boarding pass: %w", err)})
			continue
		}

		if err := fs.WriteFile(path, data, 0644); err != nil {
			results = append(results, PassResult{BookingRef: bookingRef, Err: fmt.Errorf("failed to save boarding pass: %w", err)})
			continue
		}

		results = append(results, PassResult{BookingRef: bookingRef, FilePath: path})
	}

	return results
}
