package ryanair

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error codes and field names used by the upstream API. These are matched by
// literal comparison; they are the contract with the API, not display text.
const (
	codePasswordWrong = "Password.Wrong"
	codeMfaCodeWrong  = "Mfa.Wrong.Code"
	codeUnknownDevice = "Account.UnknownDeviceFingerprint"

	fieldAccessDenied = "access-denied"
	fieldCause        = "cause"
	fieldType         = "type"

	causeNotAuthenticated = "NOT AUTHENTICATED"
	typeClientError       = "CLIENT_ERROR"
)

// LoginKind tags the possible outcomes of a login or device-verification
// response. Upstream reuses HTTP 200 for all of them; the body decides.
type LoginKind int

const (
	// LoginUnrecognized is the zero value: a response shape we do not know.
	LoginUnrecognized LoginKind = iota
	// LoginOK carries a customer id and access token.
	LoginOK
	// LoginMfaRequired means the device fingerprint is unknown and a
	// verification code has been mailed to the account.
	LoginMfaRequired
	// LoginPasswordWrong means the password was rejected.
	LoginPasswordWrong
	// LoginMfaCodeWrong means the submitted verification code was rejected.
	LoginMfaCodeWrong
)

// LoginResult is the classified form of a login-shaped response.
type LoginResult struct {
	Kind       LoginKind
	CustomerID string
	Token      string
	MfaToken   string
	// Message is the human-readable failure text, e.g.
	// "Wrong password 4 retries remaining".
	Message string
}

// envelope covers every login-shaped body the API returns. Error responses
// carry code/message/additionalData, successes carry customerId/token.
type envelope struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	AdditionalData []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"additionalData"`
	CustomerID string `json:"customerId"`
	Token      string `json:"token"`
}

// firstAdditionalMessage returns additionalData[0].message, the slot upstream
// uses both for retries-remaining counts and for the MFA token.
func (e envelope) firstAdditionalMessage() string {
	if len(e.AdditionalData) == 0 {
		return ""
	}
	return e.AdditionalData[0].Message
}

// ClassifyLogin interprets an accountLogin or deviceFingerprint verification
// body as one of the LoginResult variants.
func ClassifyLogin(raw json.RawMessage) LoginResult {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return LoginResult{Kind: LoginUnrecognized}
	}

	if env.CustomerID != "" && env.Token != "" {
		return LoginResult{
			Kind:       LoginOK,
			CustomerID: env.CustomerID,
			Token:      env.Token,
		}
	}

	switch env.Code {
	case codeUnknownDevice:
		return LoginResult{
			Kind:     LoginMfaRequired,
			MfaToken: env.firstAdditionalMessage(),
		}
	case codePasswordWrong:
		return LoginResult{
			Kind:    LoginPasswordWrong,
			Message: retriesMessage(env),
		}
	case codeMfaCodeWrong:
		return LoginResult{
			Kind:    LoginMfaCodeWrong,
			Message: retriesMessage(env),
		}
	}

	return LoginResult{Kind: LoginUnrecognized}
}

// retriesMessage concatenates the upstream message with the retries-remaining
// count from additionalData[0].message, e.g. "Wrong password 4 retries
// remaining". The source fields are fixed by the upstream contract.
func retriesMessage(env envelope) string {
	return env.Message + " " + env.firstAdditionalMessage() + " retries remaining"
}

// IsSessionExpired reports whether a body carries the session-expired
// signature: {"access-denied": true, "cause": "NOT AUTHENTICATED"} or
// {"type": "CLIENT_ERROR"}. Upstream returns these with HTTP 200.
func IsSessionExpired(raw json.RawMessage) bool {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return false
	}

	if _, denied := body[fieldAccessDenied]; denied {
		if cause, _ := body[fieldCause].(string); cause == causeNotAuthenticated {
			return true
		}
	}
	if typ, _ := body[fieldType].(string); typ == typeClientError {
		return true
	}
	return false
}

// ExtractToken pulls the token out of a rememberMeToken or rememberMe refresh
// body. A body without a token means the session backing it is gone.
func ExtractToken(raw json.RawMessage) (string, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", false
	}
	if env.Token == "" {
		return "", false
	}
	return env.Token, true
}

// ClassifyErrorText maps upstream's unstructured English error strings onto
// the error taxonomy. No structured code exists for these cases, so substring
// matching is the only seam available.
func ClassifyErrorText(text string) error {
	if strings.Contains(text, msgInvalidCredentials) {
		return ErrInvalidAuth
	}
	if strings.Contains(text, msgRatelimitExceeded) {
		return ErrAPIRatelimit
	}
	return fmt.Errorf("%w: %s", ErrUnknown, text)
}
