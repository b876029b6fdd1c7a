// Package fortiedr queries a FortiEDR management console for the security
// events and threat-hunting activity produced by emulation runs.
package fortiedr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErrors "mitremenu/internal/errors"
)

const (
	defaultTimeout = 30 * time.Second
	apiRoot        = "/management-rest"
	maxErrorBody   = 512
)

// Credentials identify an API user within an organization.
type Credentials struct {
	Host         string
	User         string
	Password     string
	Organization string
}

// Validate reports which credential fields are missing.
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(c.User) == "" {
		missing = append(missing, "user")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(c.Organization) == "" {
		missing = append(missing, "organization")
	}
	if len(missing) > 0 {
		return appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("missing FortiEDR credentials: %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}

// Client is a FortiEDR REST API client.
type Client struct {
	creds      Credentials
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for the console named by creds.Host. A host
// without a scheme is reached over HTTPS.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		creds:      creds,
		baseURL:    baseURL(creds.Host),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func baseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + apiRoot
}

// username is the console's "organization\user" login form.
func (c *Client) username() string {
	return c.creds.Organization + `\` + c.creds.User
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, appErrors.New(appErrors.CodeAPIFailed, fmt.Sprintf("encode request: %v", err), err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeAPIFailed, fmt.Sprintf("build request: %v", err), err)
	}
	req.SetBasicAuth(c.username(), c.creds.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeAPIFailed, fmt.Sprintf("API request failed: %v", err), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeAPIFailed, fmt.Sprintf("read response: %v", err), err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, appErrors.New(appErrors.CodeAuthFailed, fmt.Sprintf("authentication failed: %s", resp.Status), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, appErrors.New(appErrors.CodeAPIFailed,
			fmt.Sprintf("API error: %s - %s", resp.Status, truncate(strings.TrimSpace(string(data)), maxErrorBody)), nil)
	}
	return data, nil
}

// decodeItems accepts either a bare JSON array or an object wrapping the
// array in "data".
func decodeItems(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var items []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, appErrors.New(appErrors.CodeAPIFailed, fmt.Sprintf("decode response: %v", err), err)
		}
		return items, nil
	}
	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, appErrors.New(appErrors.CodeAPIFailed, fmt.Sprintf("decode response: %v", err), err)
	}
	return wrapped.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
