package application

import "context"

// Notifier surfaces user-visible notices (the web UI shows these as toasts).
// NotifyUrgent is for emergency alerts and may fan out to external channels.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error       { return nil }
func (n *NoopNotifier) NotifyUrgent(_ context.Context, _ string) error { return nil }

// MultiNotifier fans a notice out to every channel, returning the first
// error after all have been tried.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, message string) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m MultiNotifier) NotifyUrgent(ctx context.Context, message string) error {
	var firstErr error
	for _, n := range m {
		if err := n.NotifyUrgent(ctx, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
