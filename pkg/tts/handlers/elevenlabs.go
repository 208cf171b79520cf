package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"github.com/vocaltales/storyteller/pkg/utils"
)

const (
	DefaultStability       = 0.65
	DefaultSimilarityBoost = 0.85
)

// TTS posts text to the ElevenLabs REST text-to-speech endpoint.
type TTS struct {
	BaseURL         string
	VoiceID         string
	APIKey          string
	Stability       float64
	SimilarityBoost float64
	Client          *http.Client
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Convert writes the MP3 returned for text to fileName, replacing it.
func (o *TTS) Convert(ctx context.Context, text, fileName string) error {
	reqBodyBytes, err := sonic.Marshal(speechRequest{
		Text: text,
		VoiceSettings: voiceSettings{
			Stability:       o.Stability,
			SimilarityBoost: o.SimilarityBoost,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/%s", o.BaseURL, o.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("xi-api-key", o.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if err := utils.CheckResponse(resp); err != nil {
		log.Warn().Int("status", resp.StatusCode).Err(err).Msg("ElevenLabs request failed")
		return err
	}

	audioFile, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("failed to create audio file %q: %w", fileName, err)
	}

	bytesCopied, err := io.Copy(audioFile, resp.Body)
	if closeErr := audioFile.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close audio file %q: %w", fileName, closeErr)
	}
	if err != nil {
		_ = os.Remove(fileName)
		return fmt.Errorf("failed to write audio data to file %q: %w", fileName, err)
	}
	log.Debug().Int64("bytes", bytesCopied).Str("file", fileName).Msg("Copied speech audio")

	return nil
}
