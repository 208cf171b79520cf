// Package pipeline runs one storytelling turn: transcribe, continue the
// story, illustrate it and read it aloud.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vocaltales/storyteller/pkg/image"
	"github.com/vocaltales/storyteller/pkg/session"
	"github.com/vocaltales/storyteller/pkg/story"
	"github.com/vocaltales/storyteller/pkg/stt"
	"github.com/vocaltales/storyteller/pkg/tts"
)

type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageStory      Stage = "story"
	StageImage      Stage = "image"
	StageSpeech     Stage = "speech"
	StageUnknown    Stage = ""
)

type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

type StoryEngine interface {
	Continue(ctx context.Context, text string, history story.History) (string, story.History, error)
}

type Illustrator interface {
	Illustrate(ctx context.Context, text string) (string, error)
}

// Result is what a turn produced. Paths are the fixed artifact locations and
// SpeechPath is empty when the backend plays audio itself or is disabled.
type Result struct {
	Transcript string `json:"transcript"`
	Story      string `json:"story"`
	ImagePath  string `json:"image_path"`
	SpeechPath string `json:"speech_path"`
}

type Pipeline struct {
	transcriber Transcriber
	engine      StoryEngine
	illustrator Illustrator
	narrator    tts.Narrator

	transcriptDir     string
	transcriptStarted time.Time

	// artifacts are written to process-wide paths, one turn at a time
	mu sync.Mutex
}

func New(transcriber Transcriber, engine StoryEngine, illustrator Illustrator, narrator tts.Narrator) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		engine:      engine,
		illustrator: illustrator,
		narrator:    narrator,
	}
}

// WithTranscripts writes a transcript per session into dir after every
// story turn, named after startedAt and the session id.
func (p *Pipeline) WithTranscripts(dir string, startedAt time.Time) *Pipeline {
	p.transcriptDir = dir
	p.transcriptStarted = startedAt
	return p
}

// Turn runs a full turn from a recorded audio clip.
func (p *Pipeline) Turn(ctx context.Context, sess *session.Session, audioPath string) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger := log.With().Str("session", sess.ID).Logger()

	start := time.Now()
	logger.Info().Str("stage", string(StageTranscribe)).Msg("Transcribing audio")
	text, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return Result{}, err
	}
	logger.Info().Str("stage", string(StageTranscribe)).Dur("took", time.Since(start)).Msg("Transcribed")

	result, err := p.tell(ctx, sess, text)
	result.Transcript = text
	return result, err
}

// Tell runs a turn from text the user typed, skipping transcription.
func (p *Pipeline) Tell(ctx context.Context, sess *session.Session, text string) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result, err := p.tell(ctx, sess, text)
	result.Transcript = text
	return result, err
}

func (p *Pipeline) tell(ctx context.Context, sess *session.Session, text string) (Result, error) {
	logger := log.With().Str("session", sess.ID).Logger()
	var result Result

	start := time.Now()
	logger.Info().Str("stage", string(StageStory)).Msg("Continuing story")
	reply, history, err := p.engine.Continue(ctx, text, sess.History)
	if err != nil {
		return result, err
	}
	sess.History = history
	result.Story = reply
	if p.transcriptDir != "" {
		transcript := story.NewTranscript(p.transcriptDir, p.transcriptStarted, sess.ID)
		if err := transcript.Record(history); err != nil {
			logger.Warn().Err(err).Msg("Failed to write transcript")
		}
	}
	logger.Info().Str("stage", string(StageStory)).Int("turns", len(history)).Dur("took", time.Since(start)).Msg("Story continued")

	start = time.Now()
	logger.Info().Str("stage", string(StageImage)).Msg("Illustrating")
	imagePath, err := p.illustrator.Illustrate(ctx, reply)
	if err != nil {
		return result, err
	}
	result.ImagePath = imagePath
	logger.Info().Str("stage", string(StageImage)).Str("path", imagePath).Dur("took", time.Since(start)).Msg("Illustrated")

	start = time.Now()
	logger.Info().Str("stage", string(StageSpeech)).Str("voice", sess.Voice).Msg("Narrating")
	speechPath, err := p.narrator.Narrate(ctx, reply, sess.Voice)
	if err != nil {
		return result, err
	}
	result.SpeechPath = speechPath
	logger.Info().Str("stage", string(StageSpeech)).Str("path", speechPath).Dur("took", time.Since(start)).Msg("Narrated")

	return result, nil
}

// StageOf reports which stage produced err.
func StageOf(err error) Stage {
	switch {
	case errors.Is(err, stt.ErrTranscription):
		return StageTranscribe
	case errors.Is(err, story.ErrCompletion):
		return StageStory
	case errors.Is(err, image.ErrImageGeneration):
		return StageImage
	case errors.Is(err, tts.ErrSpeechSynthesis):
		return StageSpeech
	default:
		return StageUnknown
	}
}
