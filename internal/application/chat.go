package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"vision-voice/internal/domain"
)

// apologyMessage is appended to the log when the chat endpoint stays
// unreachable. The chat path never fabricates an answer.
const apologyMessage = "I'm sorry, I encountered an error. Please try again."

// ChatController owns the conversational page: an append-only, in-memory
// message log and the busy flag. The log never outlives the process.
type ChatController struct {
	pipeline *Pipeline
	speech   SpeechSynthesizer
	notifier Notifier
	logger   *slog.Logger

	voiceFeedback bool

	mu         sync.Mutex
	messages   []domain.Message
	processing bool
	seq        uint64
}

func NewChatController(
	pipeline *Pipeline,
	speech SpeechSynthesizer,
	notifier Notifier,
	voiceFeedback bool,
	logger *slog.Logger,
) *ChatController {
	return &ChatController{
		pipeline:      pipeline,
		speech:        speech,
		notifier:      notifier,
		voiceFeedback: voiceFeedback,
		logger:        logger,
	}
}

// Send appends the user's message and submits the whole history. On failure
// exactly one apology message is appended; a superseded request appends
// nothing at all.
func (c *ChatController) Send(ctx context.Context, text string) error {
	c.mu.Lock()
	c.messages = append(c.messages, domain.Message{Role: domain.RoleUser, Content: text})
	history := make([]domain.Message, len(c.messages))
	copy(history, c.messages)
	c.seq++
	seq := c.seq
	c.processing = true
	c.mu.Unlock()

	defer c.endProcessing(seq)

	reply, err := c.pipeline.Chat(ctx, history)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("chat request superseded by a newer message")
			return nil
		}

		c.mu.Lock()
		c.messages = append(c.messages, domain.Message{Role: domain.RoleAssistant, Content: apologyMessage})
		c.mu.Unlock()

		c.notify(ctx, "Could not reach the assistant")
		c.say(ctx, apologyMessage)
		return fmt.Errorf("sending chat message: %w", err)
	}

	c.mu.Lock()
	c.messages = append(c.messages, domain.Message{Role: domain.RoleAssistant, Content: reply})
	c.mu.Unlock()

	if c.voiceFeedback {
		c.say(ctx, reply)
	}
	return nil
}

func (c *ChatController) endProcessing(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq == seq {
		c.processing = false
	}
}

func (c *ChatController) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Messages returns a copy of the session log in order.
func (c *ChatController) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *ChatController) say(ctx context.Context, text string) {
	if err := c.speech.Speak(ctx, text); err != nil {
		c.logger.Error("speaking", "error", err)
	}
}

func (c *ChatController) notify(ctx context.Context, message string) {
	if err := c.notifier.Notify(ctx, message); err != nil {
		c.logger.Error("notifying", "error", err)
	}
}
