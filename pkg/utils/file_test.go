package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_dragon_in_a_cave", SanitizeFilename(`a "dragon" in a cave`))
	assert.Equal(t, "transcript_2024-01-02_10-11-12", SanitizeFilename("transcript_2024-01-02_10-11-12"))
	assert.Equal(t, "v1_2", SanitizeFilename("v1.2"))
}

func TestWriteArtifactOverwrites(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "generated_image.jpg")

	require.NoError(t, WriteArtifact(target, []byte("first")))
	require.NoError(t, WriteArtifact(target, []byte("second")))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestSaveTextToFile(t *testing.T) {
	dir := t.TempDir()

	name, err := SaveTextToFile(dir, "my story", "txt", "hello")
	require.NoError(t, err)
	assert.Equal(t, "my_story.txt", name)
	assert.Equal(t, filepath.Join(dir, "my_story.txt"), FilePath(dir, "my story", "txt"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
