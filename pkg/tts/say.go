package tts

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Say speaks through the operating system voice (`say` on macOS).
//
// It is fire-and-forget: the subprocess is started and detached, Narrate
// returns immediately with no file and no error, and the outcome of the
// subprocess is never reported to the caller.
type Say struct {
	Command string
	start   func(cmd *exec.Cmd) error
}

func NewSay(command string) *Say {
	if command == "" {
		command = "say"
	}
	return &Say{Command: command, start: startDetached}
}

func (s *Say) Narrate(_ context.Context, text, _ string) (string, error) {
	// The request context is not used: the voice keeps talking after the turn ends.
	cmd := exec.Command(s.Command, text)
	if err := s.start(cmd); err != nil {
		log.Debug().Err(err).Str("command", s.Command).Msg("Local voice did not start")
	}
	return "", nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		// reap the process; its exit status is deliberately ignored
		_ = cmd.Wait()
	}()
	return nil
}
