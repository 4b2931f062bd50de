package browser

import (
	"context"
	"fmt"
	"time"

	"vision-voice/internal/application"
	"vision-voice/internal/domain"
	"vision-voice/internal/infra/imaging"
)

// The bridge backs all five capability interfaces, but the lifecycle verbs
// collide (the bridge's own Start runs the HTTP server), so each capability
// is handed out as a thin facade over the shared session.

func (b *Bridge) Recognizer() application.SpeechRecognizer { return recognizer{b} }

func (b *Bridge) Synthesizer() application.SpeechSynthesizer { return synthesizer{b} }

// Camera returns the capture capability with the given downscale factor and
// JPEG quality applied to every frame.
func (b *Bridge) Camera(scale float64, quality int) application.Camera {
	return &camera{b: b, scale: scale, quality: quality}
}

func (b *Bridge) Haptics() application.Haptics { return haptics{b} }

func (b *Bridge) Navigator() application.Navigator { return navigator{b} }

type recognizer struct{ b *Bridge }

func (r recognizer) Start(ctx context.Context) error {
	_, err := r.b.request(ctx, command{Cmd: cmdListen, Lang: r.b.lang}, 10*time.Second)
	if err != nil {
		return fmt.Errorf("starting recognition: %w", err)
	}

	r.b.mu.Lock()
	r.b.listening = true
	r.b.recErr = nil
	// Drop a stale session-down notice from a previous session.
	select {
	case <-r.b.recDown:
	default:
	}
	r.b.mu.Unlock()
	return nil
}

func (r recognizer) Stop() error {
	err := r.b.send(command{Cmd: cmdStopListen})
	r.b.mu.Lock()
	r.b.listening = false
	r.b.mu.Unlock()
	return err
}

func (r recognizer) Reset() {
	r.b.mu.Lock()
	r.b.partial = make(map[int]string)
	r.b.mu.Unlock()
}

func (r recognizer) NextUtterance(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-r.b.recDown:
		return "", err
	case text, ok := <-r.b.utterances:
		if !ok {
			return "", fmt.Errorf("bridge stopped")
		}
		return text, nil
	}
}

func (r recognizer) Listening() bool {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	return r.b.listening
}

func (r recognizer) Err() error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	return r.b.recErr
}

type synthesizer struct{ b *Bridge }

func (s synthesizer) Speak(ctx context.Context, text string) error {
	if err := s.b.send(command{Cmd: cmdSpeak, Text: text}); err != nil {
		return fmt.Errorf("speaking: %w", err)
	}
	s.b.mu.Lock()
	s.b.speaking = true
	s.b.mu.Unlock()
	return nil
}

func (s synthesizer) Stop() error {
	err := s.b.send(command{Cmd: cmdStopSpeak})
	s.b.mu.Lock()
	s.b.speaking = false
	s.b.mu.Unlock()
	return err
}

func (s synthesizer) Speaking() bool {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.b.speaking
}

type camera struct {
	b       *Bridge
	scale   float64
	quality int
}

func (c *camera) Start(ctx context.Context) error {
	// Permission prompts can sit open for a while.
	ev, err := c.b.request(ctx, command{Cmd: cmdCameraStart}, 30*time.Second)
	if err != nil {
		return fmt.Errorf("%w: %v", application.ErrCameraUnavailable, err)
	}
	if ev.State != stateActive {
		return fmt.Errorf("%w: browser reported state %q", application.ErrCameraUnavailable, ev.State)
	}

	c.b.mu.Lock()
	c.b.cameraActive = true
	c.b.mu.Unlock()
	return nil
}

func (c *camera) Stop() error {
	if !c.Active() {
		return nil
	}
	err := c.b.send(command{Cmd: cmdCameraStop})
	c.b.mu.Lock()
	c.b.cameraActive = false
	c.b.mu.Unlock()
	return err
}

func (c *camera) Active() bool {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	return c.b.cameraActive
}

func (c *camera) Capture(ctx context.Context) (domain.CapturedFrame, error) {
	if !c.Active() {
		return domain.CapturedFrame{}, application.ErrCameraInactive
	}

	ev, err := c.b.request(ctx, command{Cmd: cmdCapture}, 10*time.Second)
	if err != nil {
		return domain.CapturedFrame{}, fmt.Errorf("requesting frame: %w", err)
	}

	raw, err := imaging.DecodeDataURL(ev.Data)
	if err != nil {
		return domain.CapturedFrame{}, err
	}

	return imaging.Compress(raw, c.scale, c.quality)
}

type haptics struct{ b *Bridge }

func (h haptics) Vibrate(_ context.Context) {
	if err := h.b.send(command{Cmd: cmdVibrate, Millis: 200}); err != nil {
		h.b.logger.Debug("vibrate skipped", "error", err)
	}
}

// Notifier surfaces notices as toasts in the connected UI. A missing
// session is not an error: there is nobody to toast at.
func (b *Bridge) Notifier() application.Notifier { return toaster{b} }

type toaster struct{ b *Bridge }

func (t toaster) Notify(_ context.Context, message string) error {
	if err := t.b.send(command{Cmd: cmdNotify, Text: message}); err != nil {
		t.b.logger.Debug("toast skipped", "error", err)
	}
	return nil
}

func (t toaster) NotifyUrgent(_ context.Context, message string) error {
	if err := t.b.send(command{Cmd: cmdNotify, Text: message, Urgent: true}); err != nil {
		t.b.logger.Debug("toast skipped", "error", err)
	}
	return nil
}

type navigator struct{ b *Bridge }

func (n navigator) Navigate(_ context.Context, page domain.Page) error {
	if err := n.b.send(command{Cmd: cmdNavigate, Page: string(page)}); err != nil {
		return fmt.Errorf("navigating to %s: %w", page, err)
	}
	return nil
}
