// Package chat is the shopper-facing assistant: a client for the chat and
// catalog search endpoints, and a terminal chat UI on top of it.
package chat

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

	"github.com/google/uuid"
	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/logger"
)

const (
	// Greeting opens every conversation.
	Greeting = "Hi! How can I help you find today?"

	// FallbackText replaces the reply when the assistant cannot be reached.
	FallbackText = "Oops, something went wrong. Please try again."

	// Placeholder is shown in an empty input box.
	Placeholder = "Ask me for products or stores..."

	maxBody = 4 << 20
)

// Action tells the client what the reply carries.
type Action string

const (
	ActionRecommend Action = "recommend"
	ActionInform    Action = "inform"
	ActionClarify   Action = "clarify"
)

// Product is one catalog item.
type Product struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	StoreID     string  `json:"store_id"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
}

// Reply is the assistant's answer to one message. Products is set only for
// recommend replies.
type Reply struct {
	Text     string    `json:"text"`
	Action   Action    `json:"action"`
	Products []Product `json:"products,omitempty"`
}

type queryRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type queryResponse struct {
	ResponseText string          `json:"response_text"`
	Action       string          `json:"action"`
	Data         json.RawMessage `json:"data"`
}

// Client talks to the chat and catalog endpoints. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	userID  string
	session string
	timeout time.Duration
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

// WithUserID sets the shopper id sent with each message.
func WithUserID(id string) Option {
	return func(cl *Client) { cl.userID = id }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  config.DefaultConfig().Chat.UserID,
		session: uuid.NewString(),
		timeout: 10 * time.Second,
		log:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from the api and chat sections of cfg.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	base := []Option{
		WithToken(cfg.API.Token),
		WithTimeout(cfg.API.Timeout),
		WithUserID(cfg.Chat.UserID),
	}
	return New(cfg.API.BaseURL, append(base, opts...)...)
}

// UserID returns the shopper id sent with each message.
func (c *Client) UserID() string {
	return c.userID
}

// SessionID identifies this client's conversation in request headers.
func (c *Client) SessionID() string {
	return c.session
}

// Query sends one shopper message and returns the assistant's reply.
func (c *Client) Query(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, errors.New(errors.ErrChat, "Message is empty", "Type what you are looking for")
	}

	body, err := json.Marshal(queryRequest{UserID: c.userID, Text: text})
	if err != nil {
		return Reply{}, errors.WrapWithCode(err, errors.ErrChat, "Cannot encode chat message", "")
	}

	raw, err := c.do(ctx, http.MethodPost, c.baseURL+"/chat/query", body)
	if err != nil {
		return Reply{}, err
	}

	var resp queryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Reply{}, errors.WrapWithCode(err, errors.ErrSchema, "chat: reply does not match the expected shape", "")
	}

	reply := Reply{Text: resp.ResponseText, Action: Action(resp.Action)}
	if reply.Action == ActionRecommend {
		reply.Products, err = decodeProducts("chat", resp.Data)
		if err != nil {
			return Reply{}, err
		}
	}
	c.log.Debug("chat reply action=%s products=%d", reply.Action, len(reply.Products))
	return reply, nil
}

// Search runs a keyword search over the catalog.
func (c *Client) Search(ctx context.Context, q string) ([]Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.New(errors.ErrChat, "Search query is empty", "Pass a keyword, e.g. storelens search shoes")
	}

	raw, err := c.do(ctx, http.MethodGet, c.baseURL+"/catalog/search?q="+url.QueryEscape(q), nil)
	if err != nil {
		return nil, err
	}
	products, err := decodeProducts("catalog", raw)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrChat, "Cannot build chat request", "Check api.base_url")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("X-Session-ID", c.session)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrChat,
			"Can't reach the shopping assistant",
			"Check that the API is running at "+c.baseURL)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrChat, "Reading the assistant's reply failed", "")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.ErrChat,
			fmt.Sprintf("Assistant returned HTTP %d", resp.StatusCode),
			"Try again in a moment")
	}
	return raw, nil
}

// decodeProducts reads a product array. Absent data, null and {} mean no products.
func decodeProducts(what string, data json.RawMessage) ([]Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, errors.Schemaf("%s: expected a product list", what)
	}

	var products []Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSchema, what+": product list does not match the expected shape", "")
	}
	return products, nil
}
