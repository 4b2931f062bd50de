package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"vision-voice/internal/domain"
)

const (
	sayGoingHome      = "Going back home."
	sayOpeningChat    = "Opening the assistant."
	sayOpeningScan    = "Opening the video analyzer."
	sayEmergency      = "Emergency alert activated. Requesting assistance."
	saySpeechUnusable = "Speech recognition is not available on this device."
)

// Assistant routes finalized utterances to the controller of the page the
// user is on. The front-end router owns navigation; the assistant mirrors
// the active page from the bridge's page reports rather than assuming its
// Navigate calls succeeded.
type Assistant struct {
	recognizer SpeechRecognizer
	speech     SpeechSynthesizer
	navigator  Navigator
	haptics    Haptics
	notifier   Notifier
	scan       *ScanController
	chat       *ChatController
	logger     *slog.Logger

	mu   sync.Mutex
	page domain.Page
}

func NewAssistant(
	recognizer SpeechRecognizer,
	speech SpeechSynthesizer,
	navigator Navigator,
	haptics Haptics,
	notifier Notifier,
	scan *ScanController,
	chat *ChatController,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		recognizer: recognizer,
		speech:     speech,
		navigator:  navigator,
		haptics:    haptics,
		notifier:   notifier,
		scan:       scan,
		chat:       chat,
		logger:     logger,
		page:       domain.PageScan,
	}
}

// SetPage records the page the front-end router reports as active.
func (a *Assistant) SetPage(page domain.Page) {
	a.mu.Lock()
	a.page = page
	a.mu.Unlock()
	a.logger.Info("active page changed", "page", page)
}

func (a *Assistant) Page() domain.Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

func (a *Assistant) Run(ctx context.Context) error {
	if err := a.recognizer.Start(ctx); err != nil {
		a.say(ctx, saySpeechUnusable)
		a.notify(ctx, "Speech recognition unavailable")
		return fmt.Errorf("starting speech recognition: %w", err)
	}
	defer a.recognizer.Stop()

	a.haptics.Vibrate(ctx)
	a.logger.Info("assistant ready, listening for speech")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := a.processOneUtterance(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.logger.Error("processing utterance", "error", err)
			}
			// A recognition session that died is not restarted behind the
			// user's back; surface it and stop.
			if !a.recognizer.Listening() {
				if recErr := a.recognizer.Err(); recErr != nil {
					a.say(ctx, saySpeechUnusable)
					return fmt.Errorf("speech recognition session ended: %w", recErr)
				}
				return nil
			}
		}
	}
}

func (a *Assistant) processOneUtterance(ctx context.Context) error {
	text, err := a.recognizer.NextUtterance(ctx)
	if err != nil {
		return fmt.Errorf("awaiting utterance: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}

	a.logger.Info("utterance", "text", text, "page", a.Page())
	return a.Dispatch(ctx, text)
}

// Dispatch interprets one utterance against the active page and executes
// the resulting intent. The bridge's typed-text endpoint funnels through the
// same path as recognized speech.
func (a *Assistant) Dispatch(ctx context.Context, text string) error {
	page := a.Page()
	if page == domain.PageHome {
		// The home screen's own buttons handle navigation; voice routing
		// only applies on the two assistant pages.
		a.logger.Debug("ignoring utterance on home page", "text", text)
		return nil
	}

	intent := Interpret(page, text, a.scan.CameraActive())
	a.logger.Info("interpreted intent", "kind", intent.Kind)

	switch intent.Kind {
	case domain.IntentNavigateHome:
		a.say(ctx, sayGoingHome)
		return a.navigator.Navigate(ctx, domain.PageHome)

	case domain.IntentNavigateChat:
		a.say(ctx, sayOpeningChat)
		return a.navigator.Navigate(ctx, domain.PageChat)

	case domain.IntentNavigateScan:
		a.say(ctx, sayOpeningScan)
		return a.navigator.Navigate(ctx, domain.PageScan)

	case domain.IntentEmergency:
		a.say(ctx, sayEmergency)
		if err := a.notifier.NotifyUrgent(ctx, "Emergency assistance requested"); err != nil {
			return fmt.Errorf("sending emergency alert: %w", err)
		}
		return nil

	case domain.IntentChatMessage:
		return a.chat.Send(ctx, intent.Query)

	case domain.IntentUnrecognized:
		// Help hint, then drop the transcript so it is not resubmitted.
		err := a.scan.Handle(ctx, intent)
		a.recognizer.Reset()
		return err

	default:
		return a.scan.Handle(ctx, intent)
	}
}

func (a *Assistant) say(ctx context.Context, text string) {
	if err := a.speech.Speak(ctx, text); err != nil {
		a.logger.Error("speaking", "error", err)
	}
}

func (a *Assistant) notify(ctx context.Context, message string) {
	if err := a.notifier.Notify(ctx, message); err != nil {
		a.logger.Error("notifying", "error", err)
	}
}
