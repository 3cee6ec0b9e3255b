package ryanair

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// recordedRequest captures what the fake API saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

func newFakeAPI(t *testing.T, status int, responseBody string) (*Client, *recordedRequest, func()) {
	t.Helper()

	recorded := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded.Method = r.Method
		recorded.Path = r.URL.Path
		recorded.Query = r.URL.RawQuery
		recorded.Header = r.Header.Clone()
		recorded.Body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		w.Write([]byte(responseBody))
	}))

	return NewWithHost(server.URL), recorded, server.Close
}

func TestClient_AccountLogin(t *testing.T) {
	client, recorded, closeFn := newFakeAPI(t, http.StatusOK, `{"customerId": "C1", "token": "T1"}`)
	defer closeFn()

	raw, err := client.AccountLogin(context.Background(), "fp-1", "a@b.com", "hunter2")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if recorded.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", recorded.Method)
	}
	if recorded.Path != "/usrprof/v2/accountLogin" {
		t.Errorf("Unexpected path: %s", recorded.Path)
	}
	if got := recorded.Header.Get(HeaderFingerprint); got != "fp-1" {
		t.Errorf("Expected fingerprint header, got %q", got)
	}
	if got := recorded.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected JSON content type, got %q", got)
	}

	var body map[string]string
	if err := json.Unmarshal(recorded.Body, &body); err != nil {
		t.Fatalf("Request body was not JSON: %v", err)
	}
	if body["email"] != "a@b.com" || body["password"] != "hunter2" || body["policyAgreed"] != "true" {
		t.Errorf("Unexpected login body: %v", body)
	}

	if ClassifyLogin(raw).Kind != LoginOK {
		t.Errorf("Expected raw body passed through, got %s", raw)
	}
}

func TestClient_VerifyDevice(t *testing.T) {
	client, recorded, closeFn := newFakeAPI(t, http.StatusOK, `{"customerId": "C1", "token": "T1"}`)
	defer closeFn()

	_, err := client.VerifyDevice(context.Background(), "fp-1", "MFATOKEN", "12345678")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if recorded.Method != http.MethodPut {
		t.Errorf("Expected PUT, got %s", recorded.Method)
	}
	if recorded.Path != "/usrprof/v2/accountVerifications/deviceFingerprint" {
		t.Errorf("Unexpected path: %s", recorded.Path)
	}

	var body map[string]string
	json.Unmarshal(recorded.Body, &body)
	if body["mfaCode"] != "12345678" || body["mfaToken"] != "MFATOKEN" {
		t.Errorf("Unexpected verification body: %v", body)
	}
}

func TestClient_RememberMeToken(t *testing.T) {
	client, recorded, closeFn := newFakeAPI(t, http.StatusOK, `{"token": "R1"}`)
	defer closeFn()

	_, err := client.RememberMeToken(context.Background(), "fp-1", "C1", "T1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if recorded.Path != "/usrprof/v2/accounts/C1/rememberMeToken" {
		t.Errorf("Unexpected path: %s", recorded.Path)
	}
	if got := recorded.Header.Get(HeaderAuthToken); got != "T1" {
		t.Errorf("Expected auth token header, got %q", got)
	}
}

func TestClient_RefreshSession(t *testing.T) {
	client, recorded, closeFn := newFakeAPI(t, http.StatusOK, `{"token": "T2"}`)
	defer closeFn()

	_, err := client.RefreshSession(context.Background(), "fp-1", "R1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if recorded.Path != "/usrprof/v2/accounts/rememberMe" {
		t.Errorf("Unexpected path: %s", recorded.Path)
	}
	if got := recorded.Header.Get(HeaderRememberMe); got != "R1" {
		t.Errorf("Expected remember-me header, got %q", got)
	}
	if got := recorded.Header.Get(HeaderAuthToken); got != "" {
		t.Errorf("Expected no auth token header on refresh, got %q", got)
	}
}

func TestClient_Orders(t *testing.T) {
	client, recorded, closeFn := newFakeAPI(t, http.StatusOK, `{"items": []}`)
	defer closeFn()

	_, err := client.Orders(context.Background(), "fp-1", "C1", "T1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if recorded.Path != "/orders/v2/orders/C1/details" {
		t.Errorf("Unexpected path: %s", recorded.Path)
	}
	if recorded.Query != "type=flight&active=true" {
		t.Errorf("Unexpected query: %s", recorded.Query)
	}
}

func TestClient_BookingDetails(t *testing.T) {
	client, recorded, closeFn := newFakeAPI(t, http.StatusOK, `{"booking": {}}`)
	defer closeFn()

	_, err := client.BookingDetails(context.Background(), "fp-1", "T1", BookingInfo{BookingReference: "ABC123"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if got := recorded.Header.Get("Client-Version"); got != "9.9.9" {
		t.Errorf("Expected client version header, got %q", got)
	}

	var body struct {
		AuthToken   string      `json:"authToken"`
		BookingInfo BookingInfo `json:"bookingInfo"`
	}
	if err := json.Unmarshal(recorded.Body, &body); err != nil {
		t.Fatalf("Request body was not JSON: %v", err)
	}
	if body.AuthToken != "T1" || body.BookingInfo.BookingReference != "ABC123" {
		t.Errorf("Unexpected booking details body: %+v", body)
	}
}

func TestClient_NonJSONBody_Ratelimit(t *testing.T) {
	client, _, closeFn := newFakeAPI(t, http.StatusTooManyRequests, `API rate limit exceeded.`)
	defer closeFn()

	_, err := client.UserProfile(context.Background(), "fp-1", "C1", "T1")
	if !errors.Is(err, ErrAPIRatelimit) {
		t.Errorf("Expected ErrAPIRatelimit, got %v", err)
	}
}

func TestClient_ErrorShapeInOKStatus(t *testing.T) {
	// Upstream encodes error state in 200 bodies; the client must hand the
	// body back for classification instead of failing on it.
	client, _, closeFn := newFakeAPI(t, http.StatusOK, `{"code": "Password.Wrong", "message": "Wrong password", "additionalData": [{"message": "4"}]}`)
	defer closeFn()

	raw, err := client.AccountLogin(context.Background(), "fp-1", "a@b.com", "wrong")
	if err != nil {
		t.Fatalf("Expected no transport error, got: %v", err)
	}
	if ClassifyLogin(raw).Kind != LoginPasswordWrong {
		t.Errorf("Expected body passed through for classification, got %s", raw)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	client, _, closeFn := newFakeAPI(t, http.StatusOK, `{}`)
	closeFn() // kill the server so the dial fails

	_, err := client.UserProfile(context.Background(), "fp-1", "C1", "T1")
	if !errors.Is(err, ErrCannotConnect) {
		t.Errorf("Expected ErrCannotConnect, got %v", err)
	}
}
