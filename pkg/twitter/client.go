package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"twsampler/pkg/errors"
	"twsampler/pkg/logger"
	"twsampler/pkg/period"
)

// Client is a Twitter API v2 client for full-archive search.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a search client authenticated with the given bearer
// token. The timeout bounds each individual call so a hung request
// cannot stall an unattended run.
func NewClient(bearerToken string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Authorization": "Bearer " + bearerToken,
			"Accept":        "application/json",
			"User-Agent":    "twsampler/1.0",
		},
		baseURL: BaseURL,
		logger:  log,
	}
}

// SetBaseURL overrides the API host, primarily for tests
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Search runs one full-archive search over the given window and returns
// the raw payload plus its parsed meta block. Any failure, whether
// transport, non-200 status or an unparseable body, is reported as a
// typed error; the caller decides whether to retry.
func (c *Client) Search(ctx context.Context, params SearchParams, w period.Window) (*SearchResult, error) {
	values := url.Values{}
	values.Set("query", params.Query)
	values.Set("expansions", params.Expansions)
	values.Set("tweet.fields", params.TweetFields)
	values.Set("place.fields", params.PlaceFields)
	values.Set("user.fields", params.UserFields)
	values.Set("media.fields", params.MediaFields)
	values.Set("max_results", strconv.Itoa(params.MaxResults))
	values.Set("start_time", w.StartString())
	values.Set("end_time", w.EndString())

	endpoint := c.baseURL + searchAllPath + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to build request: %v", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var parsed struct {
		Meta Meta `json:"meta"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Newf(errors.ErrorTypeParsing, "malformed search response: %v", err)
	}

	return &SearchResult{Raw: body, Meta: parsed.Meta}, nil
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.Redacted(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Newf(errors.ErrorTypeNetwork, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// statusError maps a non-200 response to a typed error
func statusError(statusCode int, body []byte) *errors.Error {
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	var t errors.ErrorType
	switch {
	case statusCode == http.StatusTooManyRequests:
		t = errors.ErrorTypeRateLimit
	case statusCode >= 500:
		t = errors.ErrorTypeServerError
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		t = errors.ErrorTypeAuth
	default:
		t = errors.ErrorTypeUnknown
	}

	return &errors.Error{
		Type:    t,
		Message: fmt.Sprintf("search returned status %d: %s", statusCode, snippet),
		Code:    statusCode,
	}
}
