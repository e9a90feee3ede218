package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func completion(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("NewClient(\"\") error = %v, want ErrNoAPIKey", err)
	}
}

func TestChatRequestShape(t *testing.T) {
	var got chatRequest
	var auth string
	c := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completion("NEGATIVO")))
	})

	reply, err := c.Chat(context.Background(), "clasifica el sentimiento", "titular de prueba")
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if reply != "NEGATIVO" {
		t.Errorf("reply = %q", reply)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != DefaultModel {
		t.Errorf("model = %q, want %q", got.Model, DefaultModel)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.Temperature == nil || *got.Temperature != 0.1 {
		t.Errorf("temperature = %v, want 0.1", got.Temperature)
	}
	if got.MaxTokens == nil || *got.MaxTokens != 300 {
		t.Errorf("max_tokens = %v, want 300", got.MaxTokens)
	}
}

func TestChatZeroTemperatureIsSent(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completion("NEUTRAL")))
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL), WithTemperature(0))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Chat(context.Background(), "s", "u"); err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if got.Temperature == nil || *got.Temperature != 0 {
		t.Errorf("temperature = %v, want an explicit 0 on the wire", got.Temperature)
	}
}

func TestChatTrimsReply(t *testing.T) {
	c := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completion("  POSITIVO\n")))
	})
	reply, err := c.Chat(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if reply != "POSITIVO" {
		t.Errorf("reply = %q, want trimmed", reply)
	}
}

func TestChatErrorMapping(t *testing.T) {
	apiError := func(msg string) string {
		data, _ := json.Marshal(map[string]any{"error": map[string]any{"message": msg, "type": "test"}})
		return string(data)
	}
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, apiError("bad key"), ErrNoAPIKey},
		{"rate limited", http.StatusTooManyRequests, apiError("slow down"), ErrRateLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			if _, err := c.Chat(context.Background(), "s", "u"); !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestChatGenericAPIError(t *testing.T) {
	c := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"contexto demasiado largo","type":"invalid_request_error"}}`))
	})
	_, err := c.Chat(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error for HTTP 400")
	}
	for _, sentinel := range []error{ErrNoAPIKey, ErrRateLimit, ErrProviderDown} {
		if errors.Is(err, sentinel) {
			t.Errorf("400 should not map to %v", sentinel)
		}
	}
}

func TestChatEmptyReply(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices":[]}`},
		{"blank content", completion("   ")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			if _, err := c.Chat(context.Background(), "s", "u"); !errors.Is(err, ErrEmptyReply) {
				t.Errorf("error = %v, want ErrEmptyReply", err)
			}
		})
	}
}

func TestChatProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Chat(context.Background(), "s", "u"); !errors.Is(err, ErrProviderDown) {
		t.Errorf("error = %v, want ErrProviderDown", err)
	}
}

func TestPing(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"ok", http.StatusOK, nil},
		{"bad key", http.StatusUnauthorized, ErrNoAPIKey},
		{"outage", http.StatusServiceUnavailable, ErrProviderDown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tc.status)
			})
			err := c.Ping(context.Background())
			if tc.want == nil {
				if err != nil {
					t.Errorf("Ping() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Ping() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	c, err := NewClient("k",
		WithBaseURL("https://proxy.example.com/v1/"),
		WithModel("deepseek-reasoner"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if c.baseURL != "https://proxy.example.com/v1" {
		t.Errorf("baseURL trailing slash not trimmed: %q", c.baseURL)
	}
	if c.Model() != "deepseek-reasoner" {
		t.Errorf("Model() = %q", c.Model())
	}
}
