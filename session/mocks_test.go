package session

import (
	"context"
	"encoding/json"

	"github.com/declanbyrne/ryanairdump/ryanair"
)

// MockAPI implements API for testing. Each endpoint has an overridable func
// and a call counter; unset funcs return a benign default.
type MockAPI struct {
	AccountLoginFunc    func(fingerprint, email, password string) (json.RawMessage, error)
	VerifyDeviceFunc    func(fingerprint, mfaToken, mfaCode string) (json.RawMessage, error)
	RememberMeTokenFunc func(fingerprint, customerID, accessToken string) (json.RawMessage, error)
	RefreshSessionFunc  func(fingerprint, rememberMeToken string) (json.RawMessage, error)
	UserProfileFunc     func(fingerprint, customerID, accessToken string) (json.RawMessage, error)
	OrdersFunc          func(fingerprint, customerID, accessToken string) (json.RawMessage, error)
	BoardingPassesFunc  func(fingerprint, accessToken, email, recordLocator string) (json.RawMessage, error)
	BookingDetailsFunc  func(fingerprint, accessToken string, info ryanair.BookingInfo) (json.RawMessage, error)

	AccountLoginCalls    int
	VerifyDeviceCalls    int
	RememberMeTokenCalls int
	RefreshSessionCalls  int
	UserProfileCalls     int
	OrdersCalls          int
	BoardingPassesCalls  int
	BookingDetailsCalls  int
}

func (m *MockAPI) AccountLogin(_ context.Context, fingerprint, email, password string) (json.RawMessage, error) {
	m.AccountLoginCalls++
	if m.AccountLoginFunc != nil {
		return m.AccountLoginFunc(fingerprint, email, password)
	}
	return json.RawMessage(`{"customerId": "C1", "token": "T1"}`), nil
}

func (m *MockAPI) VerifyDevice(_ context.Context, fingerprint, mfaToken, mfaCode string) (json.RawMessage, error) {
	m.VerifyDeviceCalls++
	if m.VerifyDeviceFunc != nil {
		return m.VerifyDeviceFunc(fingerprint, mfaToken, mfaCode)
	}
	return json.RawMessage(`{"customerId": "C1", "token": "T1"}`), nil
}

func (m *MockAPI) RememberMeToken(_ context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error) {
	m.RememberMeTokenCalls++
	if m.RememberMeTokenFunc != nil {
		return m.RememberMeTokenFunc(fingerprint, customerID, accessToken)
	}
	return json.RawMessage(`{"token": "R1"}`), nil
}

func (m *MockAPI) RefreshSession(_ context.Context, fingerprint, rememberMeToken string) (json.RawMessage, error) {
	m.RefreshSessionCalls++
	if m.RefreshSessionFunc != nil {
		return m.RefreshSessionFunc(fingerprint, rememberMeToken)
	}
	return json.RawMessage(`{"token": "T2"}`), nil
}

func (m *MockAPI) UserProfile(_ context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error) {
	m.UserProfileCalls++
	if m.UserProfileFunc != nil {
		return m.UserProfileFunc(fingerprint, customerID, accessToken)
	}
	return json.RawMessage(`{"customerId": "C1", "email": "a@b.com"}`), nil
}

func (m *MockAPI) Orders(_ context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error) {
	m.OrdersCalls++
	if m.OrdersFunc != nil {
		return m.OrdersFunc(fingerprint, customerID, accessToken)
	}
	return json.RawMessage(`{"items": []}`), nil
}

func (m *MockAPI) BoardingPasses(_ context.Context, fingerprint, accessToken, email, recordLocator string) (json.RawMessage, error) {
	m.BoardingPassesCalls++
	if m.BoardingPassesFunc != nil {
		return m.BoardingPassesFunc(fingerprint, accessToken, email, recordLocator)
	}
	return json.RawMessage(`[]`), nil
}

func (m *MockAPI) BookingDetails(_ context.Context, fingerprint, accessToken string, info ryanair.BookingInfo) (json.RawMessage, error) {
	m.BookingDetailsCalls++
	if m.BookingDetailsFunc != nil {
		return m.BookingDetailsFunc(fingerprint, accessToken, info)
	}
	return json.RawMessage(`{"booking": {}}`), nil
}

// MockStore implements Store in memory for testing
type MockStore struct {
	Records   map[string]Record
	SaveError error
	SaveCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{Records: make(map[string]Record)}
}

func (s *MockStore) Load(fingerprint string) (Record, error) {
	rec, ok := s.Records[fingerprint]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MockStore) Save(record Record) error {
	s.SaveCalls++
	if s.SaveError != nil {
		return s.SaveError
	}
	s.Records[record.Fingerprint] = record
	return nil
}

// MockLogger implements Logger for testing
type MockLogger struct {
	InfoCalls  []LogCall
	DebugCalls []LogCall
	WarnCalls  []LogCall
}

type LogCall struct {
	Message string
	Args    []any
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.InfoCalls = append(m.InfoCalls, LogCall{Message: msg, Args: args})
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.DebugCalls = append(m.DebugCalls, LogCall{Message: msg, Args: args})
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.WarnCalls = append(m.WarnCalls, LogCall{Message: msg, Args: args})
}
