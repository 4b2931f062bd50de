package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"vision-voice/internal/infra/pushover"
)

func TestClient_Notify(t *testing.T) {
	var got url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		got = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("tok", "user", server.URL)

	if err := client.Notify(context.Background(), "analysis complete"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if got.Get("message") != "analysis complete" {
		t.Errorf("message: got %q", got.Get("message"))
	}
	if got.Get("priority") != "" {
		t.Errorf("normal notice should carry no priority, got %q", got.Get("priority"))
	}
}

func TestClient_NotifyUrgent(t *testing.T) {
	var got url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("tok", "user", server.URL)

	if err := client.NotifyUrgent(context.Background(), "emergency assistance requested"); err != nil {
		t.Fatalf("NotifyUrgent: %v", err)
	}

	if got.Get("priority") != "2" {
		t.Errorf("urgent priority: got %q, want 2", got.Get("priority"))
	}
	if got.Get("retry") == "" || got.Get("expire") == "" {
		t.Error("emergency priority requires retry and expire parameters")
	}
}

// Without credentials the client stays silent instead of failing every
// notification.
func TestClient_UnconfiguredIsNoop(t *testing.T) {
	client := pushover.NewClientWithURL("", "", "http://127.0.0.1:1")

	if err := client.Notify(context.Background(), "hello"); err != nil {
		t.Errorf("unconfigured Notify should be a no-op, got %v", err)
	}
}
