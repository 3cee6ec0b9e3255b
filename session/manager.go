package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/declanbyrne/ryanairdump/ryanair"
)

// Manager owns the authentication state machine: login, MFA verification,
// remember-me exchange and access-token refresh. Business calls go through
// it so that a session-expired response triggers exactly one refresh and one
// retry before the failure surfaces.
type Manager struct {
	api    API
	store  Store
	logger Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	creds map[string]Credentials
}

// NewManager creates a session manager.
func NewManager(api API, store Store, logger Logger) *Manager {
	return &Manager{
		api:    api,
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
		creds:  make(map[string]Credentials),
	}
}

// lockFor returns the mutex serializing mutating session operations for one
// fingerprint. Business calls for a stable token run outside it.
func (m *Manager) lockFor(fingerprint string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[fingerprint]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[fingerprint] = lock
	}
	return lock
}

// SetCredentials registers the account password in memory so that an expired
// session can fall back to a fresh login without user interaction. Returns
// the device fingerprint derived from the email.
func (m *Manager) SetCredentials(email, password string) (string, error) {
	fingerprint, err := ryanair.Fingerprint(email)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.creds[fingerprint] = Credentials{Email: email, Password: password}
	m.mu.Unlock()

	return fingerprint, nil
}

func (m *Manager) credentialsFor(fingerprint string) (Credentials, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds, ok := m.creds[fingerprint]
	return creds, ok
}

// Login performs a password login. On success the session record is
// persisted and a nil challenge is returned. If the API does not recognize
// the device fingerprint, a non-nil MfaChallenge is returned and the caller
// must collect a verification code and call SubmitMFA.
func (m *Manager) Login(ctx context.Context, email, password string) (*MfaChallenge, error) {
	fingerprint, err := m.SetCredentials(email, password)
	if err != nil {
		return nil, err
	}

	lock := m.lockFor(fingerprint)
	lock.Lock()
	defer lock.Unlock()

	raw, err := m.api.AccountLogin(ctx, fingerprint, email, password)
	if err != nil {
		return nil, err
	}

	result := ryanair.ClassifyLogin(raw)
	switch result.Kind {
	case ryanair.LoginOK:
		record := Record{
			Fingerprint: fingerprint,
			Email:       email,
			CustomerID:  result.CustomerID,
			AccessToken: result.Token,
		}
		if err := m.store.Save(record); err != nil {
			return nil, err
		}
		m.logger.Info("logged in", "fingerprint", fingerprint)
		return nil, nil

	case ryanair.LoginMfaRequired:
		m.logger.Info("unknown device fingerprint, verification code required", "fingerprint", fingerprint)
		return &MfaChallenge{
			MfaToken:    result.MfaToken,
			Fingerprint: fingerprint,
			Email:       email,
		}, nil

	case ryanair.LoginPasswordWrong:
		return nil, fmt.Errorf("%w: %s", ryanair.ErrInvalidAuth, result.Message)

	default:
		return nil, fmt.Errorf("%w: unrecognized login response", ryanair.ErrUnknown)
	}
}

// SubmitMFA consumes a challenge by submitting the user-entered code. A
// wrong code leaves the challenge usable for another attempt.
func (m *Manager) SubmitMFA(ctx context.Context, challenge *MfaChallenge, code string) error {
	lock := m.lockFor(challenge.Fingerprint)
	lock.Lock()
	defer lock.Unlock()

	raw, err := m.api.VerifyDevice(ctx, challenge.Fingerprint, challenge.MfaToken, code)
	if err != nil {
		return err
	}

	result := ryanair.ClassifyLogin(raw)
	switch result.Kind {
	case ryanair.LoginOK:
		record := Record{
			Fingerprint: challenge.Fingerprint,
			Email:       challenge.Email,
			CustomerID:  result.CustomerID,
			AccessToken: result.Token,
		}
		if err := m.store.Save(record); err != nil {
			return err
		}
		m.logger.Info("device verified", "fingerprint", challenge.Fingerprint)
		return nil

	case ryanair.LoginMfaCodeWrong:
		return fmt.Errorf("%w: %s", ryanair.ErrInvalidAuth, result.Message)

	default:
		return fmt.Errorf("%w: unrecognized verification response", ryanair.ErrUnknown)
	}
}

// reLogin performs a fresh password login from in-memory credentials after
// the stored session has fully expired. The updated record is persisted.
func (m *Manager) reLogin(ctx context.Context, record *Record) error {
	creds, ok := m.credentialsFor(record.Fingerprint)
	if !ok {
		return fmt.Errorf("%w: session expired and no password available, login required", ryanair.ErrInvalidAuth)
	}

	raw, err := m.api.AccountLogin(ctx, record.Fingerprint, creds.Email, creds.Password)
	if err != nil {
		return err
	}

	result := ryanair.ClassifyLogin(raw)
	switch result.Kind {
	case ryanair.LoginOK:
		record.Email = creds.Email
		record.CustomerID = result.CustomerID
		record.AccessToken = result.Token
		record.RememberMeToken = ""
		m.logger.Info("re-authenticated with password", "fingerprint", record.Fingerprint)
		return m.store.Save(*record)

	case ryanair.LoginPasswordWrong:
		return fmt.Errorf("%w: %s", ryanair.ErrInvalidAuth, result.Message)

	case ryanair.LoginMfaRequired:
		return fmt.Errorf("%w: device verification required, run login again", ryanair.ErrInvalidAuth)

	default:
		return fmt.Errorf("%w: unrecognized login response", ryanair.ErrUnknown)
	}
}

// ensureRememberMe requests a remember-me token for the record if it does
// not already hold one. If the access token has gone stale in the meantime,
// it falls back to a fresh password login. No-op when a token is present.
func (m *Manager) ensureRememberMe(ctx context.Context, record *Record) error {
	if record.RememberMeToken != "" {
		return nil
	}

	raw, err := m.api.RememberMeToken(ctx, record.Fingerprint, record.CustomerID, record.AccessToken)
	if err != nil {
		return err
	}

	if ryanair.IsSessionExpired(raw) {
		m.logger.Debug("access token stale during remember-me request", "fingerprint", record.Fingerprint)
		return m.reLogin(ctx, record)
	}

	token, ok := ryanair.ExtractToken(raw)
	if !ok {
		return fmt.Errorf("%w: remember-me response missing token", ryanair.ErrUnknown)
	}

	record.RememberMeToken = token
	return m.store.Save(*record)
}

// refreshAccessToken exchanges the remember-me token for a new access token.
// Upstream rotates the remember-me token on refresh, so a fresh one is
// requested afterwards. A refresh response without a token means the session
// is fully expired; the only way forward is a new password login.
func (m *Manager) refreshAccessToken(ctx context.Context, record *Record) error {
	raw, err := m.api.RefreshSession(ctx, record.Fingerprint, record.RememberMeToken)
	if err != nil {
		return err
	}

	token, ok := ryanair.ExtractToken(raw)
	if !ok {
		m.logger.Warn("remember-me token rejected, performing full login", "fingerprint", record.Fingerprint)
		record.AccessToken = ""
		record.RememberMeToken = ""
		if err := m.reLogin(ctx, record); err != nil {
			return err
		}
		return m.ensureRememberMe(ctx, record)
	}

	record.AccessToken = token
	record.RememberMeToken = ""
	return m.ensureRememberMe(ctx, record)
}

// call wraps a business API call with the session lifecycle: make sure a
// remember-me token exists, perform the call, and on a session-expired
// signature refresh the access token and retry exactly once. A second
// expired signature surfaces as an error rather than looping.
func (m *Manager) call(ctx context.Context, fingerprint string, fn func(Record) (json.RawMessage, error)) (json.RawMessage, error) {
	lock := m.lockFor(fingerprint)

	lock.Lock()
	record, err := m.store.Load(fingerprint)
	if err != nil {
		lock.Unlock()
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: no session for this account, run login first", ryanair.ErrInvalidAuth)
		}
		return nil, err
	}
	if record.RememberMeToken == "" {
		if err := m.ensureRememberMe(ctx, &record); err != nil {
			lock.Unlock()
			return nil, err
		}
	}
	lock.Unlock()

	raw, err := fn(record)
	if err != nil {
		return nil, err
	}
	if !ryanair.IsSessionExpired(raw) {
		return raw, nil
	}

	m.logger.Debug("session expired, refreshing access token", "fingerprint", fingerprint)

	lock.Lock()
	// Re-read: a concurrent caller may have refreshed the record already.
	record, err = m.store.Load(fingerprint)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if err := m.refreshAccessToken(ctx, &record); err != nil {
		lock.Unlock()
		return nil, err
	}
	lock.Unlock()

	raw, err = fn(record)
	if err != nil {
		return nil, err
	}
	if ryanair.IsSessionExpired(raw) {
		return nil, fmt.Errorf("%w: still not authenticated after token refresh", ryanair.ErrUnknown)
	}
	return raw, nil
}

// FetchProfile returns the customer profile for an authenticated fingerprint.
func (m *Manager) FetchProfile(ctx context.Context, fingerprint string) (ryanair.Profile, error) {
	raw, err := m.call(ctx, fingerprint, func(rec Record) (json.RawMessage, error) {
		return m.api.UserProfile(ctx, rec.Fingerprint, rec.CustomerID, rec.AccessToken)
	})
	if err != nil {
		return ryanair.Profile{}, err
	}

	var profile ryanair.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return ryanair.Profile{}, fmt.Errorf("%w: malformed profile response", ryanair.ErrUnknown)
	}
	return profile, nil
}

// FetchOrders returns the active bookings for an authenticated fingerprint.
func (m *Manager) FetchOrders(ctx context.Context, fingerprint string) (ryanair.Orders, error) {
	raw, err := m.call(ctx, fingerprint, func(rec Record) (json.RawMessage, error) {
		return m.api.Orders(ctx, rec.Fingerprint, rec.CustomerID, rec.AccessToken)
	})
	if err != nil {
		return ryanair.Orders{}, err
	}

	var orders ryanair.Orders
	if err := json.Unmarshal(raw, &orders); err != nil {
		return ryanair.Orders{}, fmt.Errorf("%w: malformed orders response", ryanair.ErrUnknown)
	}
	return orders, nil
}

// FetchBoardingPasses returns issued boarding passes for one booking.
func (m *Manager) FetchBoardingPasses(ctx context.Context, fingerprint, bookingRef, email string) ([]ryanair.BoardingPass, error) {
	raw, err := m.call(ctx, fingerprint, func(rec Record) (json.RawMessage, error) {
		return m.api.BoardingPasses(ctx, rec.Fingerprint, rec.AccessToken, email, bookingRef)
	})
	if err != nil {
		return nil, err
	}

	var passes []ryanair.BoardingPass
	if err := json.Unmarshal(raw, &passes); err != nil {
		return nil, fmt.Errorf("%w: malformed boarding pass response", ryanair.ErrUnknown)
	}
	return passes, nil
}

// FetchBookingDetails returns the raw details of one booking. The payload
// shape varies per booking, so it is handed to the caller undecoded.
func (m *Manager) FetchBookingDetails(ctx context.Context, fingerprint, bookingRef string) (json.RawMessage, error) {
	return m.call(ctx, fingerprint, func(rec Record) (json.RawMessage, error) {
		return m.api.BookingDetails(ctx, rec.Fingerprint, rec.AccessToken, ryanair.BookingInfo{
			BookingReference: bookingRef,
		})
	})
}
