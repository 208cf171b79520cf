package stt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrTranscription is returned when a clip cannot be read or transcribed.
var ErrTranscription = errors.New("transcription failed")

// DefaultExtension is appended to clips whose extension Whisper does not accept.
const DefaultExtension = ".wav"

var acceptedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".m4a":  true,
	".webm": true,
	".ogg":  true,
	".flac": true,
}

// Backend is a remote speech-to-text service.
type Backend interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

type Transcriber struct {
	backend Backend
}

func NewTranscriber(backend Backend) *Transcriber {
	return &Transcriber{backend: backend}
}

// Transcribe returns the text spoken in the clip at path. Clips with an
// unaccepted extension are renamed (not re-encoded) to path+".wav" first.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	audioFile, err := EnsureAcceptedExtension(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	log.Debug().Str("file", audioFile).Msg("Transcribing audio")
	text, err := t.backend.Transcribe(ctx, audioFile)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}
	return text, nil
}

// EnsureAcceptedExtension renames path when its extension is not accepted and
// returns the path that should be submitted.
func EnsureAcceptedExtension(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("audio clip %q is not readable: %w", path, err)
	}
	if acceptedExtensions[strings.ToLower(filepath.Ext(path))] {
		return path, nil
	}

	renamed := path + DefaultExtension
	if err := os.Rename(path, renamed); err != nil {
		return "", fmt.Errorf("failed to rename %q: %w", path, err)
	}
	return renamed, nil
}
