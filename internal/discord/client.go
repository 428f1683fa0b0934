package discord

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Message is the message object Discord returns for a successful send.
type Message map[string]any

// ID returns the snowflake of the created message, or "" if absent.
func (m Message) ID() string {
	id, _ := m["id"].(string)
	return id
}

// Client sends container messages with a bot token. Its configuration is
// fixed at construction, so one Client can be shared between goroutines.
type Client struct {
	token   string
	baseURL string
	http    Doer
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithLogger sets the logger used for rejected sends.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client authenticating as the bot owning token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Build is Build without sending.
func (c *Client) Build(content string, overrides Overrides) Document {
	return Build(content, overrides)
}

// BuildMany is BuildMany without sending.
func (c *Client) BuildMany(contents []string, overrides Overrides) Document {
	return BuildMany(contents, overrides)
}

// Send posts a single-text container to target.
//
// A nil Message with a nil error means Discord answered with a status other
// than 200; the status and body are logged, not returned. A non-nil error is
// a transport or decoding failure.
func (c *Client) Send(ctx context.Context, target Target, content string, overrides Overrides) (Message, error) {
	return c.post(ctx, target.ID(), Build(content, overrides))
}

// SendMany posts a container with one text display per entry of contents.
// Result semantics match Send.
func (c *Client) SendMany(ctx context.Context, target Target, contents []string, overrides Overrides) (Message, error) {
	return c.post(ctx, target.ID(), BuildMany(contents, overrides))
}

func (c *Client) post(ctx context.Context, channelID string, doc Document) (Message, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read discord response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error(fmt.Sprintf("container send failed (%d)", resp.StatusCode),
			slog.Int("status", resp.StatusCode),
			slog.String("channel_id", channelID),
			slog.String("body", string(respBody)),
		)
		return nil, nil
	}

	var msg Message
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discord response: %w", err)
	}
	return msg, nil
}

// SendContainer sends content to target with a throwaway client.
func SendContainer(ctx context.Context, token string, target Target, content string, opts ...Option) (Message, error) {
	return NewClient(token, opts...).Send(ctx, target, content, nil)
}
