package ryanair

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultHost = "https://services-api.ryanair.com"

	userProfilePath    = "/usrprof/v2"
	ordersPath         = "/orders/v2"
	boardingPassPath   = "/boardingpass/v3/boardingpasses"
	bookingDetailsPath = "/bookinginfo/v1/bookingDetails"
)

// Header names required by the API. The fingerprint travels on every call;
// auth is either the access token or the remember-me token, never both.
const (
	HeaderFingerprint   = "X-DEVICE-FINGERPRINT"
	HeaderAuthToken     = "X-AUTH-TOKEN"
	HeaderRememberMe    = "X-REMEMBER-ME-TOKEN"
	headerClientVersion = "Client-Version"
	clientVersion       = "9.9.9"
	contentTypeJSON     = "application/json"
)

// BookingInfo identifies a booking for the booking-details endpoint.
type BookingInfo struct {
	BookingReference string `json:"bookingReference"`
}

// Client talks to the Ryanair private mobile-app API. It performs no retry
// or session logic; it issues single requests and returns the raw JSON body.
type Client struct {
	httpClient *http.Client
	host       string
	logger     *log.Logger
	logLevel   string
}

// New creates a client against the production API host.
func New() *Client {
	return NewWithHost(defaultHost)
}

// NewWithHost creates a client against a specific host, used by tests.
func NewWithHost(host string) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}

	return &Client{
		httpClient: httpClient,
		host:       host,
		logger:     log.New(os.Stderr, "[ryanair] ", log.LstdFlags),
		logLevel:   viper.GetString("log_level"),
	}
}

// shouldLog returns true if the given log level should be logged based on the configured log level
func (c *Client) shouldLog(level string) bool {
	levels := map[string]int{
		"trace": 0,
		"debug": 1,
		"info":  2,
		"warn":  3,
		"error": 4,
	}

	configuredLevel := c.logLevel
	if configuredLevel == "" {
		configuredLevel = "info"
	}

	return levels[level] >= levels[configuredLevel]
}

// logRequest logs the request details if log level is trace
func (c *Client) logRequest(req *http.Request, body []byte) {
	if !c.shouldLog("trace") {
		return
	}
	c.logger.Printf("Request Headers:")
	for k, v := range req.Header {
		c.logger.Printf("  %s: %s", k, strings.Join(v, ", "))
	}
	if len(body) > 0 {
		c.logger.Printf("Request Body: %s", string(body))
	}
}

// logResponse logs the response details if log level is trace
func (c *Client) logResponse(resp *http.Response, body []byte) {
	if !c.shouldLog("trace") {
		return
	}
	c.logger.Printf("Response Headers:")
	for k, v := range resp.Header {
		c.logger.Printf("  %s: %s", k, strings.Join(v, ", "))
	}
	if len(body) > 0 {
		preview := string(body)
		if len(preview) > 512 {
			preview = preview[:512]
		}
		c.logger.Printf("Response Body Preview: %s", preview)
	}
}

// doRequest performs an HTTP request with logging
func (c *Client) doRequest(req *http.Request) (*http.Response, []byte, error) {
	if c.shouldLog("debug") {
		c.logger.Printf("Request: %s %s", req.Method, req.URL)
	}

	var bodyBytes []byte
	if req.Body != nil {
		bodyBytes, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	c.logRequest(req, bodyBytes)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCannotConnect, err)
	}

	if c.shouldLog("debug") {
		c.logger.Printf("Response: %s %s", resp.Status, req.URL)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewBuffer(respBody))
	c.logResponse(resp, respBody)

	return resp, respBody, nil
}

// doJSON issues a request and returns the raw JSON body. The API encodes
// error state in 200-status bodies, so status codes are not checked here;
// classification is the caller's job. Bodies that are not JSON at all carry
// upstream's unstructured error text and are classified by substring.
func (c *Client) doJSON(ctx context.Context, method, url string, headers map[string]string, payload any) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !json.Valid(body) {
		return nil, ClassifyErrorText(string(body))
	}

	return json.RawMessage(body), nil
}

// AccountLogin performs a password login for the given device fingerprint.
func (c *Client) AccountLogin(ctx context.Context, fingerprint, email, password string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, c.host+userProfilePath+"/accountLogin",
		map[string]string{HeaderFingerprint: fingerprint},
		map[string]string{
			"email":        email,
			"password":     password,
			"policyAgreed": "true",
		})
}

// VerifyDevice submits an MFA code to verify an unknown device fingerprint.
func (c *Client) VerifyDevice(ctx context.Context, fingerprint, mfaToken, mfaCode string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPut, c.host+userProfilePath+"/accountVerifications/deviceFingerprint",
		map[string]string{HeaderFingerprint: fingerprint},
		map[string]string{
			"mfaCode":  mfaCode,
			"mfaToken": mfaToken,
		})
}

// RememberMeToken requests a long-lived remember-me token for the account.
func (c *Client) RememberMeToken(ctx context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet,
		c.host+userProfilePath+"/accounts/"+customerID+"/rememberMeToken",
		map[string]string{
			HeaderFingerprint: fingerprint,
			HeaderAuthToken:   accessToken,
		}, nil)
}

// RefreshSession exchanges a remember-me token for a fresh access token.
func (c *Client) RefreshSession(ctx context.Context, fingerprint, rememberMeToken string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet,
		c.host+userProfilePath+"/accounts/rememberMe",
		map[string]string{
			HeaderFingerprint: fingerprint,
			HeaderRememberMe:  rememberMeToken,
		}, nil)
}

// UserProfile fetches the customer profile.
func (c *Client) UserProfile(ctx context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet,
		c.host+userProfilePath+"/customers/"+customerID+"/profile",
		map[string]string{
			HeaderFingerprint: fingerprint,
			HeaderAuthToken:   accessToken,
		}, nil)
}

// Orders fetches active flight orders for the customer.
func (c *Client) Orders(ctx context.Context, fingerprint, customerID, accessToken string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet,
		c.host+ordersPath+"/orders/"+customerID+"/details?type=flight&active=true",
		map[string]string{
			HeaderFingerprint: fingerprint,
			HeaderAuthToken:   accessToken,
		}, nil)
}

// BoardingPasses fetches issued boarding passes for a booking reference.
func (c *Client) BoardingPasses(ctx context.Context, fingerprint, accessToken, email, recordLocator string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, c.host+boardingPassPath,
		map[string]string{
			HeaderFingerprint: fingerprint,
			HeaderAuthToken:   accessToken,
		},
		map[string]string{
			"email":         email,
			"recordLocator": recordLocator,
		})
}

// BookingDetails fetches the full details of a single booking.
func (c *Client) BookingDetails(ctx context.Context, fingerprint, accessToken string, info BookingInfo) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, c.host+bookingDetailsPath,
		map[string]string{
			HeaderFingerprint:   fingerprint,
			HeaderAuthToken:     accessToken,
			headerClientVersion: clientVersion,
		},
		struct {
			AuthToken   string      `json:"authToken"`
			BookingInfo BookingInfo `json:"bookingInfo"`
		}{
			AuthToken:   accessToken,
			BookingInfo: info,
		})
}
