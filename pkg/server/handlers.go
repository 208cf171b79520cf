package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"github.com/vocaltales/storyteller/pkg/pipeline"
	"github.com/vocaltales/storyteller/pkg/session"
	"github.com/vocaltales/storyteller/pkg/stt"
)

type voicesResponse struct {
	Voices  []string `json:"voices"`
	Default string   `json:"default"`
}

type tellRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type turnResponse struct {
	SessionID     string `json:"session_id"`
	Transcript    string `json:"transcript"`
	Story         string `json:"story"`
	ImageURL      string `json:"image_url"`
	SpeechURL     string `json:"speech_url,omitempty"`
	SpeechDelayMS int64  `json:"speech_delay_ms"`
}

func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, voicesResponse{
		Voices:  s.opts.Voices.Labels(),
		Default: s.opts.DefaultVoice,
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	voice := r.FormValue("voice")
	if !s.validVoice(w, voice) {
		return
	}

	audioPath, err := saveUpload(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	defer func() {
		_ = os.Remove(audioPath)
		_ = os.Remove(audioPath + stt.DefaultExtension)
	}()

	defer s.locks.lock(sessionID(r))()
	sess, err := s.session(w, r)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	useVoice(sess, voice)

	result, err := s.runner.Turn(r.Context(), sess, audioPath)
	s.finish(w, r, sess, result, err)
}

func (s *Server) handleTell(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req tellRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		Error(w, http.StatusBadRequest, "text is required")
		return
	}

	if !s.validVoice(w, req.Voice) {
		return
	}

	defer s.locks.lock(sessionID(r))()
	sess, err := s.session(w, r)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	useVoice(sess, req.Voice)

	result, err := s.runner.Tell(r.Context(), sess, req.Text)
	s.finish(w, r, sess, result, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	defer s.locks.lock(sessionID(r))()

	voice := s.opts.DefaultVoice
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if old, err := s.store.Get(r.Context(), cookie.Value); err == nil {
			voice = old.Voice
		}
		if err := s.store.Delete(r.Context(), cookie.Value); err != nil {
			log.Warn().Err(err).Str("session", cookie.Value).Msg("Failed to delete session")
		}
	}

	sess := session.New(voice)
	if err := s.store.Save(r.Context(), sess); err != nil {
		Error(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	setSessionCookie(w, sess.ID)
	log.Info().Str("session", sess.ID).Msg("New story started")

	JSON(w, http.StatusOK, map[string]string{"session_id": sess.ID})
}

func (s *Server) serveArtifact(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(path); err != nil {
			Error(w, http.StatusNotFound, "not generated yet")
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, path)
	}
}

// finish stores the session whatever happened, since a turn that failed after
// the story stage has already advanced the history.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, sess *session.Session, result pipeline.Result, turnErr error) {
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("Failed to save session")
	}

	if turnErr != nil {
		stageError(w, r, turnErr)
		return
	}

	version := time.Now().UnixNano()
	resp := turnResponse{
		SessionID:     sess.ID,
		Transcript:    result.Transcript,
		Story:         result.Story,
		ImageURL:      fmt.Sprintf("/artifacts/image?v=%d", version),
		SpeechDelayMS: s.opts.SpeechDelay.Milliseconds(),
	}
	if result.SpeechPath != "" {
		resp.SpeechURL = fmt.Sprintf("/artifacts/speech?v=%d", version)
	}
	JSON(w, http.StatusOK, resp)
}

// session returns the caller's session, creating one when the cookie is
// missing or points nowhere.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		sess, err := s.store.Get(r.Context(), cookie.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	sess := session.New(s.opts.DefaultVoice)
	setSessionCookie(w, sess.ID)
	log.Info().Str("session", sess.ID).Msg("New session")
	return sess, nil
}

// validVoice rejects an unknown label before any session is touched. An empty
// label keeps the session's voice.
func (s *Server) validVoice(w http.ResponseWriter, voice string) bool {
	if voice == "" {
		return true
	}
	if _, ok := s.opts.Voices.Find(voice); !ok {
		Error(w, http.StatusBadRequest, fmt.Sprintf("unknown voice %q", voice))
		return false
	}
	return true
}

func useVoice(sess *session.Session, voice string) {
	if voice != "" {
		sess.Voice = voice
	}
}

func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionCookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func saveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		return "", errors.New("audio file is required")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp("", "vocaltales-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return tmp.Name(), nil
}
