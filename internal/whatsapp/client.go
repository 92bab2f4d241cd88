// Package whatsapp sends text messages through the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v21.0"
)

var ErrNotConfigured = errors.New("whatsapp client not configured")

// APIError is a non-2xx response from the Cloud API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp API error: status %d: %s", e.StatusCode, e.Body)
}

// retryable covers responses where the provider did not take the message.
// A plain 500 may come after the message was accepted, so it is not retried.
func (e *APIError) retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

type Client struct {
	phoneNumberID string
	accessToken   string
	baseURL       string
	apiVersion    string
	httpClient    *http.Client
	maxRetries    uint64
	retryDelay    time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBaseURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithAPIVersion(v string) Option {
	return func(cl *Client) {
		if v != "" {
			cl.apiVersion = v
		}
	}
}

// WithRetry sets how often a rate-limited or 5xx send is retried and the
// initial delay, which doubles on each attempt.
func WithRetry(maxRetries uint64, delay time.Duration) Option {
	return func(cl *Client) {
		cl.maxRetries = maxRetries
		cl.retryDelay = delay
	}
}

func NewClient(phoneNumberID, accessToken string, opts ...Option) *Client {
	c := &Client{
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		baseURL:       DefaultBaseURL,
		apiVersion:    DefaultAPIVersion,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		maxRetries:    3,
		retryDelay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the sender id and token are set.
func (c *Client) Configured() bool {
	return c.phoneNumberID != "" && c.accessToken != ""
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// Send delivers a plain text message to the phone number.
func (c *Client) Send(ctx context.Context, to, body string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	to = NormalizePhone(to)
	if to == "" {
		return errors.New("recipient phone number is empty")
	}

	msg := textMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
	}
	msg.Text.Body = body

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.post(ctx, payload)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.retryable() {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// NormalizePhone strips formatting so only digits remain.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
