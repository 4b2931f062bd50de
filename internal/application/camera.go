package application

import (
	"context"
	"errors"

	"vision-voice/internal/domain"
)

var (
	// ErrCameraUnavailable means the device or permission could not be
	// acquired. Surfaced to the user, never retried.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrCameraInactive means capture was requested before the camera was
	// started.
	ErrCameraInactive = errors.New("camera not active")
)

// Camera is the live-capture capability. Start acquires a rear-facing (or
// best available) stream and attaches the live preview; on permission or
// device failure it returns ErrCameraUnavailable and Active stays false.
// Stop releases all stream tracks and is a no-op when already inactive.
// Capture requires an active camera (ErrCameraInactive otherwise) and
// returns the current frame downscaled and compressed, self-contained.
type Camera interface {
	Start(ctx context.Context) error
	Stop() error
	Active() bool
	Capture(ctx context.Context) (domain.CapturedFrame, error)
}
