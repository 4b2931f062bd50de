package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vision-voice/internal/domain"
)

// Client talks to the external inference service: POST /api/analyze-image
// and POST /api/chat. It does not retry; the pipeline owns that policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 30*time.Second)
}

func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

type analyzeResponse struct {
	Analysis string `json:"analysis"`
}

type chatRequest struct {
	Messages []domain.Message `json:"messages"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// apiError is the failure body: either field may carry the server's message.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AnalyzeImage submits a base64 image (no data-URL prefix) with a prompt and
// returns the free-text description.
func (c *Client) AnalyzeImage(ctx context.Context, image string, prompt string) (string, error) {
	var result analyzeResponse
	if err := c.post(ctx, "/api/analyze-image", analyzeRequest{Image: image, Prompt: prompt}, &result); err != nil {
		return "", err
	}

	if result.Analysis == "" {
		return "", fmt.Errorf("empty analysis in response")
	}
	return result.Analysis, nil
}

// Chat submits the full ordered message history and returns the assistant's
// reply.
func (c *Client) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	var result chatResponse
	if err := c.post(ctx, "/api/chat", chatRequest{Messages: messages}, &result); err != nil {
		return "", err
	}

	if result.Response == "" {
		return "", fmt.Errorf("empty response body")
	}
	return result.Response, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %s", path, serverMessage(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// serverMessage prefers the server-reported error text, falling back to a
// generic message with the status code.
func serverMessage(resp *http.Response) string {
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
		if apiErr.Error != "" {
			return apiErr.Error
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return fmt.Sprintf("inference service error %d", resp.StatusCode)
}
