package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrConfiguration marks a startup failure: a required credential or setting is missing.
var ErrConfiguration = errors.New("configuration error")

type SpeechMethod string

const (
	SpeechNone     SpeechMethod = "none"
	SpeechGCP      SpeechMethod = "gcp"
	SpeechMac      SpeechMethod = "mac"
	SpeechElevenIO SpeechMethod = "elevenio"
	SpeechOpenAI   SpeechMethod = "openai"
	SpeechDeepgram SpeechMethod = "deepgram"
)

// Resolution is one of the square sizes the image backend accepts.
type Resolution string

const (
	Resolution256  Resolution = "256x256"
	Resolution512  Resolution = "512x512"
	Resolution1024 Resolution = "1024x1024"
)

const InitialPrompt = `You are a creative childrens storyteller. You provide exciting and
engaging stories with unique details that capture a child's imagination.
You will be developing a story that the maintains the theme that the reader
requests in the first prompt.
Provide responses between three and six sentences long.
You create stories in the form of a 'Choose your own adventure novel'. At the end
of each chapter first pause for a moment. Then ask the reader a single question
that chooses the path for their next chapter in their story.`

type Config struct {
	OpenAIAPIKey   string
	ElevenIOAPIKey string
	DeepgramAPIKey string
	LLMAPIKey      string

	SpeechMethod  SpeechMethod
	Resolution    Resolution
	PromptMaxLen  int
	ImagePath     string
	SpeechPath    string
	SpeechDelay   time.Duration
	VoiceDefault  string
	Voices        Voices
	InitialPrompt string

	ChatModel   string
	LLMProvider string
	LLMModel    string

	ElevenIOVoiceID string
	ElevenIOBaseURL string
	CleanSpeechText bool
	SayCommand      string

	Transcript    bool
	TranscriptDir string
	SessionDB     string
	HTTPTimeout   time.Duration
	LogLevel      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORYTELLER_SPEECH_METHOD", string(SpeechGCP))
	v.SetDefault("STORYTELLER_RESOLUTION", string(Resolution512))
	v.SetDefault("STORYTELLER_PROMPT_MAX_LEN", 1000)
	v.SetDefault("STORYTELLER_IMAGE_PATH", "generated_image.jpg")
	v.SetDefault("STORYTELLER_SPEECH_PATH", "generated_speech.mp3")
	v.SetDefault("STORYTELLER_SPEECH_DELAY", "5s")
	v.SetDefault("STORYTELLER_VOICE_DEFAULT", "US Female")
	v.SetDefault("STORYTELLER_INITIAL_PROMPT", InitialPrompt)
	v.SetDefault("STORYTELLER_CHAT_MODEL", "gpt-3.5-turbo")
	v.SetDefault("STORYTELLER_LLM_PROVIDER", "openai")
	v.SetDefault("STORYTELLER_ELEVENIO_VOICE_ID", "21m00Tcm4TlvDq8ikWAM")
	v.SetDefault("STORYTELLER_ELEVENIO_BASE_URL", "https://api.elevenlabs.io/v1/text-to-speech")
	v.SetDefault("STORYTELLER_SAY_COMMAND", "say")
	v.SetDefault("STORYTELLER_TRANSCRIPT_DIR", ".")
	v.SetDefault("STORYTELLER_HTTP_TIMEOUT", "2m")
	v.SetDefault("STORYTELLER_LOG_LEVEL", "info")
}

// Load reads the configuration from v (usually viper.GetViper()) and validates it.
// A missing required credential is reported as ErrConfiguration.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		OpenAIAPIKey:   v.GetString("OPENAI_API_KEY"),
		ElevenIOAPIKey: v.GetString("ELEVENIO_API_KEY"),
		DeepgramAPIKey: v.GetString("DEEPGRAM_API_KEY"),

		SpeechMethod:  SpeechMethod(strings.ToLower(v.GetString("STORYTELLER_SPEECH_METHOD"))),
		Resolution:    Resolution(v.GetString("STORYTELLER_RESOLUTION")),
		PromptMaxLen:  v.GetInt("STORYTELLER_PROMPT_MAX_LEN"),
		ImagePath:     v.GetString("STORYTELLER_IMAGE_PATH"),
		SpeechPath:    v.GetString("STORYTELLER_SPEECH_PATH"),
		SpeechDelay:   v.GetDuration("STORYTELLER_SPEECH_DELAY"),
		VoiceDefault:  v.GetString("STORYTELLER_VOICE_DEFAULT"),
		Voices:        DefaultVoices(),
		InitialPrompt: v.GetString("STORYTELLER_INITIAL_PROMPT"),

		ChatModel:   v.GetString("STORYTELLER_CHAT_MODEL"),
		LLMProvider: strings.ToLower(v.GetString("STORYTELLER_LLM_PROVIDER")),
		LLMModel:    v.GetString("STORYTELLER_LLM_MODEL"),

		ElevenIOVoiceID: v.GetString("STORYTELLER_ELEVENIO_VOICE_ID"),
		ElevenIOBaseURL: strings.TrimRight(v.GetString("STORYTELLER_ELEVENIO_BASE_URL"), "/"),
		CleanSpeechText: v.GetBool("STORYTELLER_TTS_CLEAN_TEXT"),
		SayCommand:      v.GetString("STORYTELLER_SAY_COMMAND"),

		Transcript:    v.GetBool("STORYTELLER_TRANSCRIPT"),
		TranscriptDir: v.GetString("STORYTELLER_TRANSCRIPT_DIR"),
		SessionDB:     v.GetString("STORYTELLER_SESSION_DB"),
		HTTPTimeout:   v.GetDuration("STORYTELLER_HTTP_TIMEOUT"),
		LogLevel:      v.GetString("STORYTELLER_LOG_LEVEL"),
	}

	if cfg.LLMProvider != "openai" {
		// gollm providers read their key from <PROVIDER>_API_KEY, e.g. ANTHROPIC_API_KEY.
		cfg.LLMAPIKey = v.GetString(strings.ToUpper(cfg.LLMProvider) + "_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks credentials and enumerated settings.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OpenAI API Key not set as environment variable OPENAI_API_KEY", ErrConfiguration)
	}

	switch c.SpeechMethod {
	case SpeechNone, SpeechGCP, SpeechMac, SpeechOpenAI:
	case SpeechElevenIO:
		if c.ElevenIOAPIKey == "" {
			return fmt.Errorf("%w: Eleven.io API Key not set as environment variable ELEVENIO_API_KEY", ErrConfiguration)
		}
	case SpeechDeepgram:
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("%w: Deepgram API Key not set as environment variable DEEPGRAM_API_KEY", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown speech method %q", ErrConfiguration, c.SpeechMethod)
	}

	switch c.Resolution {
	case Resolution256, Resolution512, Resolution1024:
	default:
		return fmt.Errorf("%w: resolution must be one of 256x256, 512x512, 1024x1024, got %q", ErrConfiguration, c.Resolution)
	}

	if c.PromptMaxLen <= 0 {
		return fmt.Errorf("%w: STORYTELLER_PROMPT_MAX_LEN must be > 0", ErrConfiguration)
	}
	if c.ImagePath == "" || c.SpeechPath == "" {
		return fmt.Errorf("%w: artifact paths cannot be empty", ErrConfiguration)
	}
	if _, ok := c.Voices.Find(c.VoiceDefault); !ok {
		return fmt.Errorf("%w: default voice %q is not a known voice label", ErrConfiguration, c.VoiceDefault)
	}
	if strings.TrimSpace(c.InitialPrompt) == "" {
		return fmt.Errorf("%w: initial prompt cannot be empty", ErrConfiguration)
	}
	if c.LLMProvider != "openai" {
		if c.LLMModel == "" {
			return fmt.Errorf("%w: STORYTELLER_LLM_MODEL is required for provider %q", ErrConfiguration, c.LLMProvider)
		}
		if c.LLMAPIKey == "" {
			return fmt.Errorf("%w: %s_API_KEY not set for provider %q", ErrConfiguration, strings.ToUpper(c.LLMProvider), c.LLMProvider)
		}
	}
	return nil
}
