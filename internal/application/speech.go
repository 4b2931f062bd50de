package application

import "context"

// SpeechRecognizer is the continuous speech-to-text capability. Start begins
// a listening session and clears any prior error; Stop ends it. Each
// recognition result replaces the current utterance (implementations keep
// only the newest segment for the engine's reported result index, never a
// running concatenation). A session that errors or ends naturally is not
// restarted automatically: Listening turns false and a new Start is required.
type SpeechRecognizer interface {
	Start(ctx context.Context) error
	Stop() error

	// Reset discards the current partial utterance without stopping the
	// session.
	Reset()

	// NextUtterance blocks until a finalized utterance is available, the
	// session fails, or ctx is done.
	NextUtterance(ctx context.Context) (string, error)

	Listening() bool

	// Err reports the last recognition error, nil while the session is
	// healthy. Cleared by Start.
	Err() error
}

// SpeechSynthesizer is the text-to-speech capability. Speak plays the text
// aloud; Stop cancels playback immediately. The only observable state is
// whether speech is in progress.
type SpeechSynthesizer interface {
	Speak(ctx context.Context, text string) error
	Stop() error
	Speaking() bool
}

// NoopSynthesizer discards speech.
type NoopSynthesizer struct{}

func (n *NoopSynthesizer) Speak(_ context.Context, _ string) error { return nil }
func (n *NoopSynthesizer) Stop() error                             { return nil }
func (n *NoopSynthesizer) Speaking() bool                          { return false }
