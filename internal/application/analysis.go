package application

import (
	"context"

	"vision-voice/internal/domain"
)

// AnalysisService is the external inference surface: one endpoint that
// describes an image, one that answers a chat history. Image is raw base64
// without a data-URL prefix. Implementations do not retry; the pipeline
// owns the retry policy.
type AnalysisService interface {
	AnalyzeImage(ctx context.Context, image string, prompt string) (string, error)
	Chat(ctx context.Context, messages []domain.Message) (string, error)
}
