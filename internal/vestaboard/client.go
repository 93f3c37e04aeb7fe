// internal/vestaboard/client.go
//
// Minimal client for the Vestaboard subscription API.
// https://docs.vestaboard.com/methods
//
//   POST {BaseURL}/subscriptions/{subscription_id}/message
//   X-Vestaboard-Api-Key:    ...
//   X-Vestaboard-Api-Secret: ...
//   {"characters": [[...],[...]]}
//
// The body is not built with encoding/json: the characters value is the
// wire string dropped in verbatim, which is the form the API accepts.

package vestaboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robalobadob/wordleboard/internal/credentials"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://platform.vestaboard.com"

// Client posts messages to the API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for baseURL. timeout 0 leaves it to the transport.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// StatusError is returned for non-2xx responses. Body holds the raw response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vestaboard: status %d: %s", e.Code, e.Body)
}

// MessageBody is the exact form the direct path sends: {"characters": <wire>}.
func MessageBody(characters string) string {
	return `{"characters": ` + characters + `}`
}

// CompactBody is the form the proxy endpoint relays: {"characters":<wire>}.
func CompactBody(characters string) string {
	return `{"characters":` + characters + `}`
}

// MessageURL returns the endpoint for a subscription.
func (c *Client) MessageURL(subscriptionID string) string {
	return c.BaseURL + "/subscriptions/" + subscriptionID + "/message"
}

// Post sends body for the given credential set and returns the raw response body.
// A non-2xx response returns the body together with a *StatusError.
func (c *Client) Post(ctx context.Context, set credentials.Set, body string) (string, error) {
	if err := set.Validate(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.MessageURL(set.SubscriptionID), strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("X-Vestaboard-Api-Key", set.APIKey)
	req.Header.Set("X-Vestaboard-Api-Secret", set.APISecret)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vestaboard: post: %w", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("vestaboard: read body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return string(b), &StatusError{Code: res.StatusCode, Body: string(b)}
	}
	return string(b), nil
}
