package ryanair

import "errors"

var (
	// ErrInvalidAuth is returned when the API rejects the password or MFA
	// code. The wrapped message carries the retries-remaining text verbatim.
	ErrInvalidAuth = errors.New("invalid authentication credentials")

	// ErrCannotConnect is returned on transport-level failures.
	ErrCannotConnect = errors.New("cannot connect to Ryanair API")

	// ErrAPIRatelimit is returned when the API rate limit is exceeded,
	// surfaced distinctly so callers can back off.
	ErrAPIRatelimit = errors.New("API rate limit exceeded")

	// ErrUnknown is returned for any response shape we do not recognize.
	ErrUnknown = errors.New("unknown Ryanair API error")
)

// Upstream returns these exact English strings for some failures instead of
// a structured code. Matching them is a compatibility seam with the API and
// may need updating if upstream wording changes.
const (
	msgInvalidCredentials = "Invalid authentication credentials"
	msgRatelimitExceeded  = "API rate limit exceeded."
)
