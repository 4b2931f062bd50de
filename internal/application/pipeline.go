package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vision-voice/internal/domain"
	"vision-voice/internal/infra"
)

// DefaultScenePrompt is sent when the user captures a frame without asking
// anything specific.
const DefaultScenePrompt = "Describe this scene for a visually impaired person. Focus on obstacles, people, and potential hazards."

// ErrNoFrame means the capture produced no image payload. Checked before
// any network call is made.
var ErrNoFrame = errors.New("no image payload to analyze")

// Pipeline submits analysis and chat requests with a fixed retry policy.
// Retry state is a value local to one call, never ambient: each request gets
// its own id and context, and starting a new request cancels the pending
// retry wait of the previous one, so a stale retry can never overwrite a
// fresh result.
type Pipeline struct {
	svc     AnalysisService
	offline *OfflineResponder
	logger  *slog.Logger

	maxRetries int
	delay      time.Duration
	onRetry    func(attempt, max int)

	mu     sync.Mutex
	active string
	cancel context.CancelFunc
}

func NewPipeline(svc AnalysisService, offline *OfflineResponder, logger *slog.Logger) *Pipeline {
	cfg := infra.DefaultRetryConfig()
	return &Pipeline{
		svc:        svc,
		offline:    offline,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		delay:      cfg.Delay,
	}
}

// SetRetryPolicy overrides the default of 3 retries spaced 1s apart.
func (p *Pipeline) SetRetryPolicy(maxRetries int, delay time.Duration) {
	p.maxRetries = maxRetries
	p.delay = delay
}

// OnRetry registers a callback invoked with the retry count before each
// delay, used for the user-visible "retrying (n/3)" notice.
func (p *Pipeline) OnRetry(fn func(attempt, max int)) {
	p.onRetry = fn
}

// AnalyzeImage describes a captured frame, asking the given question or the
// default scene prompt. A frame with no payload fails fast. When the
// endpoint stays unreachable after all retries the responder fabricates an
// offline description instead of failing, unless the request was superseded.
func (p *Pipeline) AnalyzeImage(ctx context.Context, frame domain.CapturedFrame, question string) (domain.AnalysisResult, error) {
	if frame.Empty() {
		return domain.AnalysisResult{}, ErrNoFrame
	}

	prompt := question
	if prompt == "" {
		prompt = DefaultScenePrompt
	}

	reqCtx, id, release := p.begin(ctx)
	defer release()

	image := frame.Base64()

	var text string
	err := infra.WithRetry(reqCtx, p.retryConfig(), func() error {
		var err error
		text, err = p.svc.AnalyzeImage(reqCtx, image, prompt)
		return err
	})
	if err != nil {
		if reqCtx.Err() != nil {
			return domain.AnalysisResult{}, fmt.Errorf("analysis request %s superseded: %w", id, err)
		}
		p.logger.Warn("image analysis failed, switching to offline description",
			"request_id", id, "error", err)
		return domain.AnalysisResult{
			Text:     p.offline.Describe(question),
			Question: question,
			Offline:  true,
		}, nil
	}

	return domain.AnalysisResult{Text: text, Question: question}, nil
}

// Chat answers the full ordered message history. Unlike the image path
// there is no synthetic fallback: exhausted retries surface the error and
// the chat controller appends its apology message.
func (p *Pipeline) Chat(ctx context.Context, history []domain.Message) (string, error) {
	reqCtx, id, release := p.begin(ctx)
	defer release()

	var reply string
	err := infra.WithRetry(reqCtx, p.retryConfig(), func() error {
		var err error
		reply, err = p.svc.Chat(reqCtx, history)
		return err
	})
	if err != nil {
		if reqCtx.Err() != nil {
			return "", fmt.Errorf("chat request %s superseded: %w", id, err)
		}
		return "", fmt.Errorf("chat request %s: %w", id, err)
	}

	return reply, nil
}

func (p *Pipeline) retryConfig() infra.RetryConfig {
	return infra.RetryConfig{
		MaxRetries: p.maxRetries,
		Delay:      p.delay,
		OnRetry:    p.onRetry,
	}
}

// begin registers a new in-flight request, cancelling whatever the previous
// one was still waiting on. The release func only clears the slot if this
// request still owns it.
func (p *Pipeline) begin(ctx context.Context) (context.Context, string, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	reqCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	p.active = id
	p.cancel = cancel

	release := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		cancel()
		if p.active == id {
			p.active = ""
			p.cancel = nil
		}
	}
	return reqCtx, id, release
}
