package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/vocaltales/storyteller/pkg/utils"
)

// ErrImageGeneration is returned when the image cannot be generated or downloaded.
var ErrImageGeneration = errors.New("image generation failed")

// Generator is a remote image-generation service returning the URL of one image.
type Generator interface {
	GenerateImage(ctx context.Context, prompt, size string) (string, error)
}

type Config struct {
	Resolution   string
	PromptMaxLen int
	ImagePath    string
}

type Illustrator struct {
	generator Generator
	client    *http.Client
	config    Config
}

func NewIllustrator(generator Generator, client *http.Client, config Config) *Illustrator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Illustrator{
		generator: generator,
		client:    client,
		config:    config,
	}
}

// Illustrate draws the story text and writes the image to the configured path,
// replacing the previous image. The returned path is the same on every call.
func (i *Illustrator) Illustrate(ctx context.Context, text string) (string, error) {
	prompt := Truncate(text, i.config.PromptMaxLen)

	log.Debug().Int("prompt_len", len([]rune(prompt))).Str("size", i.config.Resolution).Msg("Generating image")
	url, err := i.generator.GenerateImage(ctx, prompt, i.config.Resolution)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrImageGeneration, err)
	}

	data, err := utils.Download(ctx, i.client, url)
	if err != nil {
		return "", fmt.Errorf("%w: download: %w", ErrImageGeneration, err)
	}

	if err := utils.WriteArtifact(i.config.ImagePath, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrImageGeneration, err)
	}
	return i.config.ImagePath, nil
}

// Truncate keeps the first maxLen characters of text. It does not look for
// word boundaries.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}
