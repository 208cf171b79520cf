package tts

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vocaltales/storyteller/pkg/ai"
	"github.com/vocaltales/storyteller/pkg/config"
	"github.com/vocaltales/storyteller/pkg/tts/handlers"
)

// ErrSpeechSynthesis is returned when a speech backend fails.
var ErrSpeechSynthesis = errors.New("speech synthesis failed")

// Narrator reads story text aloud. Backends that produce a file return its
// path; the disabled and local OS voice backends return "".
type Narrator interface {
	Narrate(ctx context.Context, text, voiceLabel string) (string, error)
}

func synthesisError(err error) error {
	return fmt.Errorf("%w: %w", ErrSpeechSynthesis, err)
}

// New builds the narrator selected by cfg.SpeechMethod.
func New(cfg *config.Config, openAI *ai.OpenAI, client *http.Client) (Narrator, error) {
	var narrator Narrator

	switch cfg.SpeechMethod {
	case config.SpeechNone:
		return Disabled{}, nil
	case config.SpeechMac:
		narrator = NewSay(cfg.SayCommand)
	case config.SpeechGCP:
		narrator = NewGoogle(cfg.Voices, cfg.VoiceDefault, cfg.SpeechPath, nil)
	case config.SpeechElevenIO:
		narrator = NewElevenLabs(&handlers.TTS{
			BaseURL:         cfg.ElevenIOBaseURL,
			VoiceID:         cfg.ElevenIOVoiceID,
			APIKey:          cfg.ElevenIOAPIKey,
			Stability:       handlers.DefaultStability,
			SimilarityBoost: handlers.DefaultSimilarityBoost,
			Client:          client,
		}, cfg.SpeechPath)
	case config.SpeechOpenAI:
		narrator = NewOpenAI(openAI, cfg.SpeechPath)
	case config.SpeechDeepgram:
		narrator = NewDeepgram(cfg.DeepgramAPIKey, cfg.SpeechPath)
	default:
		return nil, fmt.Errorf("%w: unknown speech method %q", config.ErrConfiguration, cfg.SpeechMethod)
	}

	if cfg.CleanSpeechText {
		narrator = Cleaning{Narrator: narrator}
	}
	return narrator, nil
}

// Disabled produces no audio and no playback.
type Disabled struct{}

func (Disabled) Narrate(context.Context, string, string) (string, error) {
	return "", nil
}
