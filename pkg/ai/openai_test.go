package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocaltales/storyteller/pkg/story"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAI(OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL + "/v1",
		HTTPClient: server.Client(),
	})
}

func TestCompleteSendsWholeHistory(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"Once upon a time..."}}]}`)
	})

	history := story.NewHistory("prompt").Append(story.Turn{Role: story.RoleUser, Content: "a dragon in a cave"})
	reply, err := client.Complete(context.Background(), history)
	require.NoError(t, err)

	assert.Equal(t, "Once upon a time...", reply)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "a dragon in a cave", got.Messages[1].Content)
}

func TestCompleteRemoteError(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	_, err := client.Complete(context.Background(), story.NewHistory("prompt"))
	require.Error(t, err)
}

func TestGenerateImage(t *testing.T) {
	var got map[string]any
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created":1,"data":[{"url":"https://images.example/1.png"}]}`)
	})

	url, err := client.GenerateImage(context.Background(), "a cave", "512x512")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/1.png", url)
	assert.Equal(t, "a cave", got["prompt"])
	assert.Equal(t, "512x512", got["size"])
	assert.EqualValues(t, 1, got["n"])
}

func TestGenerateImageEmpty(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created":1,"data":[]}`)
	})

	_, err := client.GenerateImage(context.Background(), "a cave", "512x512")
	assert.Error(t, err)
}

func TestTranscribe(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"a dragon in a cave"}`)
	})

	clip := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(clip, []byte("RIFF"), 0644))

	text, err := client.Transcribe(context.Background(), clip)
	require.NoError(t, err)
	assert.Equal(t, "a dragon in a cave", text)
}

func TestTranscribeMissingFile(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestSpeech(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3"))
	})

	audio, err := client.Speech(context.Background(), "shimmer", "hello", 0.9)
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3mp3"), audio)
}

func TestSplitHistory(t *testing.T) {
	history := story.NewHistory("  be creative  ").
		Append(story.Turn{Role: story.RoleUser, Content: "a dragon"}).
		Append(story.Turn{Role: story.RoleAssistant, Content: "Once upon a time..."}).
		Append(story.Turn{Role: story.RoleUser, Content: "fly away"})

	system, conversation, latest := splitHistory(history)
	assert.Equal(t, "be creative", system)
	assert.Equal(t, "user: a dragon\n\nassistant: Once upon a time...", conversation)
	assert.Equal(t, "fly away", latest)

	_, conversation, latest = splitHistory(story.NewHistory("x").Append(story.Turn{Role: story.RoleUser, Content: "start"}))
	assert.Equal(t, "(the story has not started yet)", conversation)
	assert.Equal(t, "start", latest)
}
