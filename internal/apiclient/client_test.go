package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mai033/ai-chat-tool/pkg/api"
)

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/models" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"id":"gpt-4o","provider":"openai"},{"id":"whisper-1","provider":"openai"}]}`))
	}))
	defer server.Close()

	resp, err := New(server.URL + "/").ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Models, 2)
	require.Equal(t, api.ModelRecord{ID: "gpt-4o", Provider: "openai"}, resp.Models[0])
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	require.Equal(t, "http://127.0.0.1:5000", New("http://127.0.0.1:5000/").BaseURL())
}

func TestListModelsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"OpenAI API Error: 401"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).ListModels(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "server returned 500")
	require.Contains(t, err.Error(), "OpenAI API Error: 401")
}

func TestListModelsMissingList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"hello"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).ListModels(context.Background())
	require.ErrorIs(t, err, ErrMalformedCatalog)
}

func TestListModelsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url).ListModels(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "send request")
}

func TestChatSendsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		want := map[string]any{"model": "gpt-4o", "system_prompt": "", "user_input": "Hi"}
		for k, v := range want {
			if raw[k] != v {
				t.Errorf("body[%q] = %v, want %v", k, raw[k], v)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Hello"}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Chat(context.Background(), &api.ChatRequest{Model: "gpt-4o", UserInput: "Hi"})
	require.NoError(t, err)
	require.Equal(t, "Hello", resp.Text())
}

func TestChatErrorBodyOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid model"}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Chat(context.Background(), &api.ChatRequest{Model: "x", UserInput: "Hi"})
	require.NoError(t, err, "a JSON error body is a response, not a transport failure")
	require.Equal(t, "Error: Invalid model", resp.Text())
}

func TestChatHTMLErrorPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<!doctype html><html><head><title>500 Internal Server Error</title></head><body><h1>Internal Server Error</h1></body></html>`))
	}))
	defer server.Close()

	_, err := New(server.URL).Chat(context.Background(), &api.ChatRequest{Model: "gpt-4o", UserInput: "Hi"})
	require.Error(t, err)
	require.Equal(t, "server returned 500: 500 Internal Server Error", err.Error())
}

func TestChatNonJSONOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := New(server.URL).Chat(context.Background(), &api.ChatRequest{Model: "gpt-4o", UserInput: "Hi"})
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "decode response"), err.Error())
}

func TestChatNullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer server.Close()

	_, err := New(server.URL).Chat(context.Background(), &api.ChatRequest{Model: "gpt-4o", UserInput: "Hi"})
	require.Error(t, err)
}

func TestChatCanceled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(server.URL).Chat(ctx, &api.ChatRequest{Model: "gpt-4o", UserInput: "Hi"})
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRateLimitWaitHonorsContext(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	c := New(server.URL, WithRateLimit(0.001))
	_, err := c.Ping(context.Background())
	require.NoError(t, err)

	// The single token is spent; the next wait exceeds the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Ping(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limit")
	require.Equal(t, 1, calls)
}

func TestHistoryAndPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`{"message":"AI Chat API is running! Use /chat to interact."}`))
		case "/history":
			w.Write([]byte(`{"history":[{"model":"gpt-4","system_prompt":"","user_input":"Hi","response":"Hello"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := New(server.URL)
	status, err := c.Ping(context.Background())
	require.NoError(t, err)
	require.Contains(t, status.Message, "running")

	hist, err := c.History(context.Background())
	require.NoError(t, err)
	require.Equal(t, []api.HistoryEntry{{Model: "gpt-4", UserInput: "Hi", Response: "Hello"}}, hist.History)
}

func TestSummarizeBody(t *testing.T) {
	require.Equal(t, "empty body", summarizeBody("text/plain", nil))
	require.Equal(t, "a b", summarizeBody("text/plain", []byte("  a\n\n b ")))
	require.Equal(t, "Oops", summarizeBody("text/html", []byte("<html><body><p>Oops</p></body></html>")))

	long := strings.Repeat("x", 500)
	got := summarizeBody("text/plain", []byte(long))
	require.True(t, strings.HasSuffix(got, "..."))
	require.LessOrEqual(t, len(got), maxBodyPreview)
}
