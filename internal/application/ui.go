package application

import (
	"context"

	"vision-voice/internal/domain"
)

// Navigator asks the front-end router to switch pages. The router reports
// the page it landed on back through the capability bridge; the assistant
// mirrors that instead of assuming the navigation succeeded.
type Navigator interface {
	Navigate(ctx context.Context, page domain.Page) error
}

// Haptics triggers a short vibration on user-facing transitions (listening
// started, camera started). Best effort, failures are ignored.
type Haptics interface {
	Vibrate(ctx context.Context)
}

type NoopHaptics struct{}

func (n *NoopHaptics) Vibrate(_ context.Context) {}
