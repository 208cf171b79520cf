package tts

import (
	"context"
	"sync"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/rest"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

const deepgramModel = "aura-hera-en"

var deepgramInit sync.Once

// Deepgram narrates with a Deepgram Aura voice through the speak REST API.
type Deepgram struct {
	apiKey     string
	outputPath string
	Model      string
	ChunkSize  int
}

func NewDeepgram(apiKey, outputPath string) *Deepgram {
	return &Deepgram{
		apiKey:     apiKey,
		outputPath: outputPath,
		Model:      deepgramModel,
		ChunkSize:  DefaultChunkSize,
	}
}

func (d *Deepgram) Narrate(ctx context.Context, text, _ string) (string, error) {
	deepgramInit.Do(client.InitWithDefault)

	options := &interfaces.SpeakOptions{
		Model: d.Model,
	}

	c := client.NewREST(d.apiKey, &interfaces.ClientOptions{})
	dg := api.New(c)

	err := writeChunked(ctx, d.outputPath, chunkText(text, d.ChunkSize), func(ctx context.Context, chunk, file string) error {
		_, err := dg.ToSave(ctx, file, chunk, options)
		return err
	})
	if err != nil {
		return "", synthesisError(err)
	}
	return d.outputPath, nil
}
