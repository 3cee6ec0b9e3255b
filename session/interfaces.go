package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/declanbyrne/ryanairdump/ryanair"
)

// ErrNotFound is returned by a Store when no record exists for a fingerprint.
var ErrNotFound = errors.New("session record not found")

// API abstracts the Ryanair client for testing. Each method is a single
// request/response pair returning the raw JSON body; interpretation and
// retries live in the Manager.
type API interface {
	AccountLogin(ctx context.Context, fingerprint, email, password string) (json.RawMessage, error)
	VerifyDevice(ctx context.Context, fingerprint, mfaToken, mfaCode string) (json.RawMessage, error)
	RememberMeToken(ctx context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error)
	RefreshSession(ctx context.Context, fingerprint, rememberMeToken string) (json.RawMessage, error)
	UserProfile(ctx context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error)
	Orders(ctx context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error)
	BoardingPasses(ctx context.Context, fingerprint, accessToken, email, recordLocator string) (json.RawMessage, error)
	BookingDetails(ctx context.Context, fingerprint, accessToken string, info ryanair.BookingInfo) (json.RawMessage, error)
}

// Store abstracts session record persistence for testing.
type Store interface {
	Load(fingerprint string) (Record, error)
	Save(record Record) error
}

// Logger interface abstracts logging for testing
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Record is the per-device session state persisted across restarts. The
// password is never part of it.
type Record struct {
	Fingerprint     string `json:"fingerprint"`
	Email           string `json:"email"`
	CustomerID      string `json:"customerId"`
	AccessToken     string `json:"accessToken"`
	RememberMeToken string `json:"rememberMeToken,omitempty"`
}

// MfaChallenge is the transient state between a login that hit an unknown
// device fingerprint and the user-entered verification code. It is consumed
// by SubmitMFA and never persisted.
type MfaChallenge struct {
	MfaToken    string
	Fingerprint string
	Email       string
}

// Credentials hold the account email and password, kept in memory only.
type Credentials struct {
	Email    string
	Password string
}
