package inference_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vision-voice/internal/domain"
	"vision-voice/internal/infra/inference"
)

func TestClient_AnalyzeImage(t *testing.T) {
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze-image" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"analysis": "a table with two chairs"})
	}))
	defer server.Close()

	client := inference.NewClient(server.URL)

	analysis, err := client.AnalyzeImage(context.Background(), "aGVsbG8=", "describe the scene")
	if err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}

	if analysis != "a table with two chairs" {
		t.Errorf("analysis: got %q", analysis)
	}
	if gotBody["image"] != "aGVsbG8=" {
		t.Errorf("image payload: got %q", gotBody["image"])
	}
	if gotBody["prompt"] != "describe the scene" {
		t.Errorf("prompt: got %q", gotBody["prompt"])
	}
}

func TestClient_AnalyzeImageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "model overloaded"})
	}))
	defer server.Close()

	client := inference.NewClient(server.URL)

	_, err := client.AnalyzeImage(context.Background(), "aGVsbG8=", "prompt")
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("error should carry the server message, got %q", err)
	}
}

func TestClient_AnalyzeImageGenericErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := inference.NewClient(server.URL)

	_, err := client.AnalyzeImage(context.Background(), "aGVsbG8=", "prompt")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("generic error should name the status code, got %q", err)
	}
}

func TestClient_Chat(t *testing.T) {
	var gotMessages []domain.Message

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var body struct {
			Messages []domain.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		gotMessages = body.Messages
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": "happy to help"})
	}))
	defer server.Close()

	client := inference.NewClient(server.URL)

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleUser, Content: "help me"},
	}

	reply, err := client.Chat(context.Background(), history)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if reply != "happy to help" {
		t.Errorf("reply: got %q", reply)
	}
	if len(gotMessages) != 3 {
		t.Fatalf("history length: got %d, want 3", len(gotMessages))
	}
	if gotMessages[2].Content != "help me" {
		t.Errorf("newest message: got %+v", gotMessages[2])
	}
}
