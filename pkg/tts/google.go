package tts

import (
	"context"
	"errors"
	"sync"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog/log"
	"github.com/vocaltales/storyteller/pkg/config"
	"github.com/vocaltales/storyteller/pkg/utils"
)

const googleSampleRateHertz = 16000

type synthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

// Google uses Cloud Text-to-Speech with application default credentials
// (gcloud login or GOOGLE_APPLICATION_CREDENTIALS).
//
// Audio is requested as LINEAR16 at 16 kHz and written as raw PCM to the
// configured speech path, which is named ".mp3" by default. The mismatch is
// known and kept.
type Google struct {
	voices       config.Voices
	defaultVoice string
	outputPath   string

	newClient func(ctx context.Context) (synthesizer, error)
	mu        sync.Mutex
	client    synthesizer
}

// NewGoogle creates the narrator. newClient may be nil, in which case the
// Cloud client is created on first use.
func NewGoogle(voices config.Voices, defaultVoice, outputPath string, newClient func(ctx context.Context) (synthesizer, error)) *Google {
	if newClient == nil {
		newClient = func(ctx context.Context) (synthesizer, error) {
			return texttospeech.NewClient(ctx)
		}
	}
	return &Google{
		voices:       voices,
		defaultVoice: defaultVoice,
		outputPath:   outputPath,
		newClient:    newClient,
	}
}

func (g *Google) getClient(ctx context.Context) (synthesizer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	c, err := g.newClient(ctx)
	if err != nil {
		return nil, err
	}
	g.client = c
	return c, nil
}

func (g *Google) Narrate(ctx context.Context, text, voiceLabel string) (string, error) {
	voice := g.voices.Resolve(voiceLabel, g.defaultVoice)
	log.Debug().Str("voice", voice.VoiceID).Str("language", voice.LanguageCode).Msg("Convert text to speech")

	c, err := g.getClient(ctx)
	if err != nil {
		return "", synthesisError(err)
	}

	resp, err := c.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.VoiceID,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: googleSampleRateHertz,
		},
	})
	if err != nil {
		return "", synthesisError(err)
	}
	if len(resp.GetAudioContent()) == 0 {
		return "", synthesisError(errors.New("empty audio content"))
	}

	if err := utils.WriteArtifact(g.outputPath, resp.GetAudioContent()); err != nil {
		return "", synthesisError(err)
	}
	return g.outputPath, nil
}
