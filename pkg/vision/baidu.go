// Package vision is a client for the Baidu AI image classification API.
// Wayfarer uses the landmark endpoint to identify the place shown in a photo
// the user uploads.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the production Baidu AI endpoint.
const DefaultBaseURL = "https://aip.baidubce.com"

// ErrNoLandmark is returned when the API recognises no landmark in the image.
var ErrNoLandmark = errors.New("vision: no landmark recognised")

// Client calls the Baidu AI REST API using the OAuth 2.0 client-credentials
// flow. Access tokens are cached until shortly before expiry.
type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Option is a functional option for [New].
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Baidu vision client with the given application credentials.
func New(apiKey, secretKey string, opts ...Option) (*Client, error) {
	if apiKey == "" || secretKey == "" {
		return nil, fmt.Errorf("vision: apiKey and secretKey must not be empty")
	}
	c := &Client{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Landmark is the recognition result for a single image.
type Landmark struct {
	// Name is the recognised landmark name (e.g., "石林"). Empty when the
	// API found nothing.
	Name string
	// LogID is the Baidu request identifier, useful for support tickets.
	LogID int64
}

// RecognizeLandmark identifies the landmark shown in a base64-encoded image.
// Returns [ErrNoLandmark] when the API responds successfully but recognises
// nothing.
func (c *Client) RecognizeLandmark(ctx context.Context, imageBase64 string) (*Landmark, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{"image": {imageBase64}}
	u := c.baseURL + "/rest/2.0/image-classify/v1/landmark?access_token=" + url.QueryEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: landmark request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vision: unexpected status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		LogID     int64  `json:"log_id"`
		ErrorCode int    `json:"error_code"`
		ErrorMsg  string `json:"error_msg"`
		Result    struct {
			Landmark string `json:"landmark"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vision: decode response: %w", err)
	}
	if out.ErrorCode != 0 {
		return nil, fmt.Errorf("vision: landmark API error %d: %s", out.ErrorCode, out.ErrorMsg)
	}
	if out.Result.Landmark == "" {
		return nil, ErrNoLandmark
	}
	return &Landmark{Name: out.Result.Landmark, LogID: out.LogID}, nil
}

// token returns a valid access token, fetching a new one through the
// client-credentials flow when the cached token is missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	q := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.apiKey},
		"client_secret": {c.secretKey},
	}
	u := c.baseURL + "/oauth/2.0/token?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("vision: build token request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision: token request: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("vision: decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("vision: obtain access token: %s %s", out.Error, out.ErrorDesc)
	}

	c.accessToken = out.AccessToken
	// Refresh one minute early to avoid using a token that expires mid-call.
	expiry := time.Duration(out.ExpiresIn) * time.Second
	if expiry > time.Minute {
		expiry -= time.Minute
	}
	c.tokenExpiry = time.Now().Add(expiry)
	return c.accessToken, nil
}
