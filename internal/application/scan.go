package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"vision-voice/internal/domain"
)

// Spoken confirmations and hints for the scan page. Confirmations are spoken
// before the action runs so the user knows the command landed.
const (
	sayStartingCamera    = "Starting camera."
	sayStoppingCamera    = "Stopping camera."
	sayTakingPicture     = "Taking a picture to analyze."
	sayCheckingQuestion  = "Let me take a look."
	sayCameraUnavailable = "The camera is unavailable. Please check camera permissions."
	sayCameraInactive    = "The camera is not active. Say start camera first."
	sayScanHelp          = "You can say start camera, take picture, go to assistant, or go back home."
)

// ScanController owns the scene-description page: camera state, the busy
// flag, and the last analysis result. Single writer; all state behind mu.
type ScanController struct {
	camera   Camera
	pipeline *Pipeline
	speech   SpeechSynthesizer
	notifier Notifier
	haptics  Haptics
	logger   *slog.Logger

	voiceFeedback bool

	mu         sync.Mutex
	processing bool
	seq        uint64
	lastResult domain.AnalysisResult
}

func NewScanController(
	camera Camera,
	pipeline *Pipeline,
	speech SpeechSynthesizer,
	notifier Notifier,
	haptics Haptics,
	voiceFeedback bool,
	logger *slog.Logger,
) *ScanController {
	return &ScanController{
		camera:        camera,
		pipeline:      pipeline,
		speech:        speech,
		notifier:      notifier,
		haptics:       haptics,
		voiceFeedback: voiceFeedback,
		logger:        logger,
	}
}

// Handle executes one interpreted intent on this page.
func (c *ScanController) Handle(ctx context.Context, intent domain.Intent) error {
	switch intent.Kind {
	case domain.IntentStartCamera:
		return c.startCamera(ctx)
	case domain.IntentStopCamera:
		return c.stopCamera(ctx)
	case domain.IntentCapture:
		c.say(ctx, sayTakingPicture)
		return c.Analyze(ctx, "")
	case domain.IntentQuestion:
		c.say(ctx, sayCheckingQuestion)
		return c.Analyze(ctx, intent.Query)
	case domain.IntentUnrecognized:
		c.say(ctx, sayScanHelp)
		return nil
	default:
		return fmt.Errorf("scan page cannot handle intent %s", intent.Kind)
	}
}

func (c *ScanController) startCamera(ctx context.Context) error {
	c.say(ctx, sayStartingCamera)

	if err := c.camera.Start(ctx); err != nil {
		c.say(ctx, sayCameraUnavailable)
		c.notify(ctx, "Camera unavailable")
		return fmt.Errorf("starting camera: %w", err)
	}

	c.haptics.Vibrate(ctx)
	c.notify(ctx, "Camera started")
	return nil
}

// stopCamera is a no-op when the camera is already off: no error, no
// duplicate notification.
func (c *ScanController) stopCamera(ctx context.Context) error {
	if !c.camera.Active() {
		return nil
	}

	c.say(ctx, sayStoppingCamera)

	if err := c.camera.Stop(); err != nil {
		return fmt.Errorf("stopping camera: %w", err)
	}

	c.notify(ctx, "Camera stopped")
	return nil
}

// Analyze captures the current frame and submits it, with the user's
// question or the default scene prompt. A capture failure aborts before the
// pipeline is touched, so retry state stays with the request that owns it.
func (c *ScanController) Analyze(ctx context.Context, question string) error {
	frame, err := c.camera.Capture(ctx)
	if err != nil {
		if errors.Is(err, ErrCameraInactive) {
			c.say(ctx, sayCameraInactive)
			c.notify(ctx, "Camera is not active")
		} else {
			c.notify(ctx, "Could not capture a picture")
		}
		return fmt.Errorf("capturing frame: %w", err)
	}

	seq := c.beginProcessing()
	defer c.endProcessing(seq)

	result, err := c.pipeline.AnalyzeImage(ctx, frame, question)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("analysis superseded by a newer request")
			return nil
		}
		c.notify(ctx, "Analysis failed")
		return fmt.Errorf("analyzing frame: %w", err)
	}

	c.mu.Lock()
	c.lastResult = result
	c.mu.Unlock()

	if result.Offline {
		c.notify(ctx, "Analysis service unreachable, offline description shown")
	} else {
		c.notify(ctx, "Analysis complete")
	}

	if c.voiceFeedback {
		c.say(ctx, result.Text)
	}
	return nil
}

// beginProcessing raises the busy flag and hands back a sequence number so
// that only the request that set the flag can clear it. A superseded request
// settling late must not drop the flag of its successor.
func (c *ScanController) beginProcessing() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.processing = true
	return c.seq
}

func (c *ScanController) endProcessing(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq == seq {
		c.processing = false
	}
}

func (c *ScanController) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

func (c *ScanController) CameraActive() bool {
	return c.camera.Active()
}

// LastResult returns the most recent analysis, replaced wholesale on every
// completed request.
func (c *ScanController) LastResult() domain.AnalysisResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

func (c *ScanController) say(ctx context.Context, text string) {
	if err := c.speech.Speak(ctx, text); err != nil {
		c.logger.Error("speaking", "error", err)
	}
}

func (c *ScanController) notify(ctx context.Context, message string) {
	if err := c.notifier.Notify(ctx, message); err != nil {
		c.logger.Error("notifying", "error", err)
	}
}
