package automation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeWebDriver speaks just enough of the wire protocol for the client
func fakeWebDriver(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	var requests []string

	mux := http.NewServeMux()

	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, "POST /session")
		json.NewEncoder(w).Encode(map[string]any{
			"value": map[string]any{"sessionId": "sess-1"},
		})
	})

	mux.HandleFunc("POST /session/sess-1/url", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, "navigate")
		json.NewEncoder(w).Encode(map[string]any{"value": nil})
	})

	mux.HandleFunc("POST /session/sess-1/element", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Value string `json:"value"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		requests = append(requests, "find "+body.Value)

		if body.Value == ".missing" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"value": map[string]any{
					"error":   "no such element",
					"message": "no element matches",
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"value": map[string]string{webElementKey: "elem-1"},
		})
	})

	mux.HandleFunc("POST /session/sess-1/element/elem-1/click", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, "click")
		json.NewEncoder(w).Encode(map[string]any{"value": nil})
	})

	mux.HandleFunc("POST /session/sess-1/element/elem-1/value", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		requests = append(requests, "type "+body.Text)
		json.NewEncoder(w).Encode(map[string]any{"value": nil})
	})

	mux.HandleFunc("GET /session/sess-1/element/elem-1/text", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, "text")
		json.NewEncoder(w).Encode(map[string]any{"value": "hello"})
	})

	mux.HandleFunc("DELETE /session/sess-1", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, "close")
		json.NewEncoder(w).Encode(map[string]any{"value": nil})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &requests
}

func TestRemoteDriverFlow(t *testing.T) {
	server, requests := fakeWebDriver(t)
	driver := NewRemoteDriver(server.URL)
	ctx := context.Background()

	sess, err := driver.OpenSession(ctx, true)
	if err != nil {
		t.Fatalf("opening session: %v", err)
	}

	if err := sess.Navigate(ctx, "https://example.com/login"); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	elem, err := sess.Find(ctx, "input")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := elem.TypeText(ctx, "alice"); err != nil {
		t.Fatalf("type: %v", err)
	}
	if err := elem.Click(ctx); err != nil {
		t.Fatalf("click: %v", err)
	}
	text, err := elem.ReadText(ctx)
	if err != nil {
		t.Fatalf("read text: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q, want %q", text, "hello")
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := []string{"POST /session", "navigate", "find input", "type alice", "click", "text", "close"}
	if len(*requests) != len(want) {
		t.Fatalf("requests = %v, want %v", *requests, want)
	}
	for i, r := range want {
		if (*requests)[i] != r {
			t.Errorf("request %d = %q, want %q", i, (*requests)[i], r)
		}
	}
}

func TestRemoteDriverMissingElement(t *testing.T) {
	server, _ := fakeWebDriver(t)
	driver := NewRemoteDriver(server.URL)
	ctx := context.Background()

	sess, err := driver.OpenSession(ctx, true)
	if err != nil {
		t.Fatalf("opening session: %v", err)
	}
	defer sess.Close()

	_, err = sess.Find(ctx, ".missing")
	if !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}
