package story

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	err   error
	seen  []History
}

func (f *fakeCompleter) Complete(_ context.Context, history History) (string, error) {
	f.seen = append(f.seen, history)
	return f.reply, f.err
}

func TestContinueSeedsEmptyHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "Once upon a time..."}
	engine := NewEngine(completer, "You are a storyteller.", nil)

	reply, history, err := engine.Continue(context.Background(), "a dragon in a cave", nil)
	require.NoError(t, err)

	assert.Equal(t, "Once upon a time...", reply)
	assert.Equal(t, []Role{RoleSystem, RoleUser, RoleAssistant}, history.Roles())
	assert.Equal(t, "You are a storyteller.", history[0].Content)
	assert.Equal(t, "a dragon in a cave", history[1].Content)
	assert.Equal(t, "Once upon a time...", history[2].Content)

	require.Len(t, completer.seen, 1)
	assert.Equal(t, []Role{RoleSystem, RoleUser}, completer.seen[0].Roles())
}

func TestContinueAlternatesRoles(t *testing.T) {
	completer := &fakeCompleter{reply: "and then..."}
	engine := NewEngine(completer, "prompt", nil)

	var history History
	var err error
	for i := 0; i < 3; i++ {
		_, history, err = engine.Continue(context.Background(), "next", history)
		require.NoError(t, err)
	}

	require.Len(t, history, 7)
	assert.Equal(t, RoleSystem, history[0].Role)
	for i := 1; i < len(history); i++ {
		assert.NotEqual(t, history[i-1].Role, history[i].Role)
	}
	last, ok := history.Last()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)
}

func TestContinueDoesNotTruncateInput(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	engine := NewEngine(completer, "prompt", nil)

	long := strings.Repeat("dragon ", 2000)
	_, history, err := engine.Continue(context.Background(), long, nil)
	require.NoError(t, err)
	assert.Equal(t, long, history[1].Content)
}

func TestContinueCompletionError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("503 service unavailable")}
	engine := NewEngine(completer, "prompt", nil)

	start := NewHistory("prompt")
	_, history, err := engine.Continue(context.Background(), "hello", start)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompletion)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, start, history)
}

func TestContinueDoesNotMutateCallerHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "reply"}
	engine := NewEngine(completer, "prompt", nil)

	start := make(History, 1, 10)
	start[0] = Turn{Role: RoleSystem, Content: "prompt"}

	_, _, err := engine.Continue(context.Background(), "first", start)
	require.NoError(t, err)
	_, second, err := engine.Continue(context.Background(), "second", start)
	require.NoError(t, err)

	assert.Len(t, start, 1)
	assert.Equal(t, "second", second[1].Content)
}

func TestTranscriptRewrittenEveryTurn(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2024, 3, 1, 20, 15, 0, 0, time.UTC)
	transcript := NewTranscript(dir, started, "")
	assert.Equal(t, dir+"/transcript_2024-03-01_20-15-00.txt", transcript.Path())

	completer := &fakeCompleter{reply: "Once upon a time..."}
	engine := NewEngine(completer, "prompt", transcript)

	_, history, err := engine.Continue(context.Background(), "a dragon", nil)
	require.NoError(t, err)
	completer.reply = "The dragon sneezed."
	_, _, err = engine.Continue(context.Background(), "what next", history)
	require.NoError(t, err)

	data, err := os.ReadFile(transcript.Path())
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, 1, strings.Count(text, "system: prompt"))
	assert.Contains(t, text, "user: a dragon")
	assert.Contains(t, text, "assistant: The dragon sneezed.")
}

func TestTranscriptNameIncludesSession(t *testing.T) {
	started := time.Date(2024, 3, 1, 20, 15, 0, 0, time.UTC)
	transcript := NewTranscript("logs", started, "abc123")
	assert.Equal(t, "logs/transcript_2024-03-01_20-15-00_abc123.txt", transcript.Path())
}
