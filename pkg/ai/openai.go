package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"github.com/vocaltales/storyteller/pkg/story"
)

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	HTTPClient *http.Client
}

// OpenAI wraps the transcription, chat, image and speech endpoints.
type OpenAI struct {
	client    *openai.Client
	chatModel string
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	model := cfg.ChatModel
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	log.Info().Str("model", model).Msg("Using OpenAI chat completion")

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientConfig),
		chatModel: model,
	}
}

// Transcribe sends the audio file at path to Whisper.
func (a *OpenAI) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: path,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (a *OpenAI) Complete(ctx context.Context, history story.History) (string, error) {
	messages := make([]openai.ChatCompletionMessage, len(history))
	for i, turn := range history {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.chatModel,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage requests a single image of the given size and returns its URL.
func (a *OpenAI) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	resp, err := a.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		N:              1,
		Size:           size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("image generation returned no image url")
	}
	return resp.Data[0].URL, nil
}

// Speech synthesizes mp3 audio for text.
func (a *OpenAI) Speech(ctx context.Context, voice, text string, speed float64) ([]byte, error) {
	request := openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Voice:          openai.SpeechVoice(voice),
		Input:          text,
		Speed:          speed,
	}

	resp, err := a.client.CreateSpeech(ctx, request)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	buf, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}
	return buf, nil
}
