// Package backend is the HTTP client for the question-answering service.
// It sends a single JSON POST per query and extracts the answer text.
package backend

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

	"go.uber.org/zap"
)

// DefaultEndpoint is the generate path served by the backend.
const DefaultEndpoint = "/generate"

// maxBodyBytes bounds how much of a reply is read.
const maxBodyBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL    string
	Endpoint   string
	TopK       int           // 0 leaves top_k to the server default
	Timeout    time.Duration // 0 means no client-side timeout
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client posts queries to the generate endpoint.
type Client struct {
	url        string
	topK       int
	httpClient *http.Client
	log        *zap.Logger
}

type generateRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// NewClient creates a client from options.
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		url:        strings.TrimRight(opts.BaseURL, "/") + endpoint,
		topK:       opts.TopK,
		httpClient: hc,
		log:        log,
	}
}

// URL returns the full generate URL.
func (c *Client) URL() string {
	return c.url
}

// Generate sends the query and returns the reply's response text. An empty
// string means the reply carried no usable answer. Exactly one attempt is made.
func (c *Client) Generate(ctx context.Context, query string) (string, error) {
	payload, err := json.Marshal(generateRequest{Query: query, TopK: c.topK})
	if err != nil {
		return "", c.fail("encode", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", c.fail("send", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail("send", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", c.fail("read", resp.StatusCode, err)
	}

	c.log.Debug("generate reply",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.fail("status", resp.StatusCode, fmt.Errorf("unexpected status: %s", snippet(body)))
	}

	text, err := decodeReply(body)
	if err != nil {
		return "", c.fail("decode", resp.StatusCode, err)
	}
	return text, nil
}

func (c *Client) fail(op string, status int, err error) error {
	return &RequestFailure{Op: op, URL: c.url, Status: status, Err: err}
}

// decodeReply extracts the response field the way a browser would read
// data.response from the parsed body: a null body is an error, a non-object
// body has no field, and falsy field values count as absent.
func decodeReply(body []byte) (string, error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("malformed reply: %w", err)
	}
	if data == nil {
		return "", errors.New("malformed reply: null body")
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return "", nil
	}

	switch v := obj["response"].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if !v {
			return "", nil
		}
		return "true", nil
	case float64:
		if v == 0 {
			return "", nil
		}
		raw, _ := json.Marshal(v)
		return string(raw), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", nil
		}
		return string(raw), nil
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "<empty body>"
	}
	return s
}
