package story

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrCompletion is returned when the chat-completion backend fails.
var ErrCompletion = errors.New("completion failed")

// Completer sends the whole conversation to a chat-completion backend and
// returns the assistant reply.
type Completer interface {
	Complete(ctx context.Context, history History) (string, error)
}

// Recorder receives the full history after every committed turn.
type Recorder interface {
	Record(history History) error
}

type Engine struct {
	completer     Completer
	initialPrompt string
	recorder      Recorder
}

func NewEngine(completer Completer, initialPrompt string, recorder Recorder) *Engine {
	return &Engine{
		completer:     completer,
		initialPrompt: initialPrompt,
		recorder:      recorder,
	}
}

// Continue advances the story by one turn. An empty history is seeded with
// the system instruction first. On error the input history is returned as is.
func (e *Engine) Continue(ctx context.Context, text string, history History) (string, History, error) {
	if len(history) == 0 {
		history = NewHistory(e.initialPrompt)
	}

	updated := history.Append(Turn{Role: RoleUser, Content: text})
	if ev := log.Debug(); ev.Enabled() {
		ev.Int("turns", len(updated)).RawJSON("messages", []byte(updated.ToJson())).Msg("Messages sent to completion")
	}

	reply, err := e.completer.Complete(ctx, updated)
	if err != nil {
		return "", history, fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	updated = updated.Append(Turn{Role: RoleAssistant, Content: reply})

	if e.recorder != nil {
		if err := e.recorder.Record(updated); err != nil {
			log.Warn().Err(err).Msg("Failed to write transcript")
		}
	}

	return reply, updated, nil
}
