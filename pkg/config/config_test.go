package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(map[string]any{"OPENAI_API_KEY": "sk-test"}))
	require.NoError(t, err)

	assert.Equal(t, SpeechGCP, cfg.SpeechMethod)
	assert.Equal(t, Resolution512, cfg.Resolution)
	assert.Equal(t, 1000, cfg.PromptMaxLen)
	assert.Equal(t, "generated_image.jpg", cfg.ImagePath)
	assert.Equal(t, "generated_speech.mp3", cfg.SpeechPath)
	assert.Equal(t, 5*time.Second, cfg.SpeechDelay)
	assert.Equal(t, "US Female", cfg.VoiceDefault)
	assert.Equal(t, "gpt-3.5-turbo", cfg.ChatModel)
	assert.Equal(t, InitialPrompt, cfg.InitialPrompt)
	assert.Len(t, cfg.Voices, 6)
}

func TestLoadMissingOpenAIKey(t *testing.T) {
	_, err := Load(newViper(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadSpeechCredentials(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{
			name:    "elevenio without key",
			values:  map[string]any{"STORYTELLER_SPEECH_METHOD": "elevenio"},
			wantErr: true,
		},
		{
			name:   "elevenio with key",
			values: map[string]any{"STORYTELLER_SPEECH_METHOD": "elevenio", "ELEVENIO_API_KEY": "xi"},
		},
		{
			name:    "deepgram without key",
			values:  map[string]any{"STORYTELLER_SPEECH_METHOD": "deepgram"},
			wantErr: true,
		},
		{
			name:   "mac needs nothing",
			values: map[string]any{"STORYTELLER_SPEECH_METHOD": "MAC"},
		},
		{
			name:    "unknown method",
			values:  map[string]any{"STORYTELLER_SPEECH_METHOD": "carrier-pigeon"},
			wantErr: true,
		},
		{
			name:    "bad resolution",
			values:  map[string]any{"STORYTELLER_RESOLUTION": "640x480"},
			wantErr: true,
		},
		{
			name:    "unknown default voice",
			values:  map[string]any{"STORYTELLER_VOICE_DEFAULT": "Moon Voice"},
			wantErr: true,
		},
		{
			name:    "gollm provider without key",
			values:  map[string]any{"STORYTELLER_LLM_PROVIDER": "anthropic", "STORYTELLER_LLM_MODEL": "claude-3-5-haiku-latest"},
			wantErr: true,
		},
		{
			name: "gollm provider with key",
			values: map[string]any{
				"STORYTELLER_LLM_PROVIDER": "anthropic",
				"STORYTELLER_LLM_MODEL":    "claude-3-5-haiku-latest",
				"ANTHROPIC_API_KEY":        "sk-ant",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]any{"OPENAI_API_KEY": "sk-test"}
			for k, v := range tt.values {
				values[k] = v
			}
			_, err := Load(newViper(values))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVoiceResolve(t *testing.T) {
	voices := DefaultVoices()

	p := voices.Resolve("US Female", "GB Male")
	assert.Equal(t, "en-US-Neural2-C", p.VoiceID)
	assert.Equal(t, "en-US", p.LanguageCode)

	p = voices.Resolve("", "GB Male")
	assert.Equal(t, "en-GB-Neural2-D", p.VoiceID)
	assert.Equal(t, "en-GB", p.LanguageCode)

	p = voices.Resolve("Pirate", "AU Male")
	assert.Equal(t, "en-AU-Neural2-B", p.VoiceID)
}

func TestLanguageCode(t *testing.T) {
	assert.Equal(t, "en-AU", LanguageCode("en-AU-Neural2-C"))
	assert.Equal(t, "fr", LanguageCode("fr"))
}
