package tts

import (
	"context"

	"github.com/vocaltales/storyteller/pkg/tts/handlers"
)

// ElevenLabs narrates with a pinned ElevenLabs voice. The voice label chosen
// in the UI does not apply.
type ElevenLabs struct {
	handler    *handlers.TTS
	outputPath string
}

func NewElevenLabs(handler *handlers.TTS, outputPath string) *ElevenLabs {
	return &ElevenLabs{handler: handler, outputPath: outputPath}
}

func (e *ElevenLabs) Narrate(ctx context.Context, text, _ string) (string, error) {
	if err := ensureDir(e.outputPath); err != nil {
		return "", synthesisError(err)
	}
	if err := e.handler.Convert(ctx, text, e.outputPath); err != nil {
		return "", synthesisError(err)
	}
	return e.outputPath, nil
}
