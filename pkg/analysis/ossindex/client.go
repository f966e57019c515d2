package ossindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/bastionlabs/vulnsync/internal/retry"
	"github.com/bastionlabs/vulnsync/pkg/analysis"
)

const (
	reportPath       = "/api/v3/component-report"
	defaultUserAgent = "vulnsync"
)

type coordinateRequest struct {
	Coordinates []string `json:"coordinates"`
}

// Client submits coordinate batches to the component-report endpoint. All outbound
// calls run under the injected retry policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	username   string
	token      string
	policy     retry.Policy
}

type ClientConfig struct {
	BaseURL   string
	UserAgent string

	// Username and Token enable HTTP basic credentials; both empty means
	// unauthenticated access.
	Username string
	Token    string

	Retry retry.Policy
}

func NewClient(cfg ClientConfig) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		httpClient: cleanhttp.DefaultClient(),
		baseURL:    cfg.BaseURL,
		userAgent:  userAgent,
		username:   cfg.Username,
		token:      cfg.Token,
		policy:     cfg.Retry,
	}
}

// SubmitCoordinates posts one batch of normalized coordinates and parses the response.
// Network-level failures and rate-limit/overload statuses are retried under the policy;
// any other non-200 response is a permanent failure.
func (c *Client) SubmitCoordinates(coordinates []string) ([]ComponentReport, error) {
	payload, err := json.Marshal(coordinateRequest{Coordinates: coordinates})
	if err != nil {
		return nil, fmt.Errorf("unable to encode coordinate batch: %w", err)
	}

	resp, err := retry.Do(c.policy,
		func() (*http.Response, error) {
			return c.post(payload)
		},
		retry.RetryOnError[*http.Response](analysis.IsTransient),
		retry.RetryOnResult(func(resp *http.Response) bool {
			return isRetryableStatus(resp.StatusCode)
		}),
		retry.WithCleanup(drainBody),
	)
	if err != nil {
		if retry.IsExhausted(err) {
			return nil, analysis.NewTransientError("attempt budget exhausted", err)
		}
		return nil, err
	}
	defer drainBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, analysis.NewUnexpectedResponseError(resp.StatusCode)
	}

	var reports []ComponentReport
	if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
		return nil, analysis.NewPermanentError("malformed report payload", err)
	}
	return reports, nil
}

func (c *Client) post(payload []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+reportPath, bytes.NewReader(payload))
	if err != nil {
		return nil, analysis.NewPermanentError("unable to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.username != "" || c.token != "" {
		req.SetBasicAuth(c.username, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, analysis.NewTransientError("request failed", err)
	}
	return resp, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
