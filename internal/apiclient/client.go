package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"golang.org/x/time/rate"

	"github.com/mai033/ai-chat-tool/internal/logger"
	"github.com/mai033/ai-chat-tool/pkg/api"
)

// ErrMalformedCatalog is returned when GET /models answers without a models list.
var ErrMalformedCatalog = errors.New("malformed catalog: missing models list")

const maxBodyPreview = 200

// Client is a typed HTTP client that talks to the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests at perSecond. Zero or less disables
// the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// New creates a new Client for the given backend URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListModels returns the backend model catalog.
func (c *Client) ListModels(ctx context.Context) (*api.ModelListResponse, error) {
	var result api.ModelListResponse
	if err := c.getJSON(ctx, "/models", &result); err != nil {
		return nil, err
	}
	if result.Models == nil {
		return nil, ErrMalformedCatalog
	}
	return &result, nil
}

// Chat sends one chat request. Any JSON object body is returned as a
// response regardless of the HTTP status, since the backend reports model
// errors in the body. An error means the exchange never produced a usable
// body: the request failed to send or the body was not a JSON object.
func (c *Client) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result *api.ChatResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, bodyError(resp, data, err)
	}
	if result == nil {
		return nil, fmt.Errorf("decode response: empty JSON body")
	}
	logger.Debug("chat %s answered %d", httpReq.Header.Get("X-Request-ID"), resp.StatusCode)
	return result, nil
}

// History returns the interactions the backend has recorded.
func (c *Client) History(ctx context.Context) (*api.HistoryResponse, error) {
	var result api.HistoryResponse
	if err := c.getJSON(ctx, "/history", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks that the backend is reachable and returns its banner.
func (c *Client) Ping(ctx context.Context) (*api.StatusResponse, error) {
	var result api.StatusResponse
	if err := c.getJSON(ctx, "/", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Internal helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	return httpReq, nil
}

func (c *Client) do(httpReq *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(httpReq.Context()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	httpReq, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, summarizeBody(resp.Header.Get("Content-Type"), respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func bodyError(resp *http.Response, data []byte, err error) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, summarizeBody(resp.Header.Get("Content-Type"), data))
	}
	return fmt.Errorf("decode response: %w", err)
}

// summarizeBody reduces an unexpected body to one short line. HTML error
// pages are reduced to their title.
func summarizeBody(contentType string, data []byte) string {
	text := strings.TrimSpace(string(data))
	if strings.Contains(contentType, "text/html") || strings.HasPrefix(strings.ToLower(text), "<!doctype html") {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data)); err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				text = title
			} else {
				text = strings.TrimSpace(doc.Find("body").Text())
			}
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "empty body"
	}
	return runewidth.Truncate(text, maxBodyPreview, "...")
}
