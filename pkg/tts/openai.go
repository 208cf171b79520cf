package tts

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"github.com/vocaltales/storyteller/pkg/utils"
)

// Speaker is the OpenAI speech endpoint.
type Speaker interface {
	Speech(ctx context.Context, voice, text string, speed float64) ([]byte, error)
}

// OpenAI narrates with an OpenAI voice. Long text is split at sentence
// boundaries and the mp3 parts are joined.
type OpenAI struct {
	speaker    Speaker
	outputPath string
	Voice      string
	Speed      float64
	ChunkSize  int
}

func NewOpenAI(speaker Speaker, outputPath string) *OpenAI {
	return &OpenAI{
		speaker:    speaker,
		outputPath: outputPath,
		Voice:      string(openai.VoiceShimmer),
		Speed:      0.9,
		ChunkSize:  DefaultChunkSize,
	}
}

func (o *OpenAI) Narrate(ctx context.Context, text, _ string) (string, error) {
	err := writeChunked(ctx, o.outputPath, chunkText(text, o.ChunkSize), func(ctx context.Context, chunk, file string) error {
		audio, err := o.speaker.Speech(ctx, o.Voice, chunk, o.Speed)
		if err != nil {
			return err
		}
		return utils.WriteArtifact(file, audio)
	})
	if err != nil {
		return "", synthesisError(err)
	}
	return o.outputPath, nil
}
