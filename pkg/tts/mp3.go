package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hyacinthus/mp3join"
	"github.com/rs/zerolog/log"
)

func Remove(files []string) error {
	for _, file := range files {
		err := os.Remove(file)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("file", file).Err(err).Msg("Error deleting the file")
			return err
		}
	}
	return nil
}

func ensureDir(file string) error {
	dir := filepath.Dir(file)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func JoinMp3Files(files []string, output string) error {
	joiner := mp3join.New()

	for i, file := range files {
		log.Debug().Int("part", i).Str("file", file).Msg("Appending mp3 part")
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = joiner.Append(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to append %q: %w", file, err)
		}
	}

	if err := ensureDir(output); err != nil {
		return err
	}

	outFile, err := os.Create(output)
	if err != nil {
		return err
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, joiner.Reader())
	return err
}

type chunkWriter func(ctx context.Context, chunk, file string) error

// writeChunked synthesizes each chunk into its own numbered file next to
// output and joins them into output. A single chunk is written to output
// directly.
func writeChunked(ctx context.Context, output string, chunks []string, write chunkWriter) error {
	if len(chunks) == 0 {
		return errors.New("nothing to synthesize")
	}
	if err := ensureDir(output); err != nil {
		return err
	}
	if len(chunks) == 1 {
		return write(ctx, chunks[0], output)
	}

	dir, base := filepath.Split(output)
	files := make([]string, 0, len(chunks))
	defer func() {
		_ = Remove(files)
	}()

	for i, chunk := range chunks {
		file := filepath.Join(dir, strconv.Itoa(i)+"_"+base)
		files = append(files, file)
		if err := write(ctx, chunk, file); err != nil {
			return fmt.Errorf("chunk %d processing failed: %w", i, err)
		}
	}

	log.Debug().Int("parts", len(files)).Msg("Joining audio segments")
	if err := JoinMp3Files(files, output); err != nil {
		return fmt.Errorf("failed to join MP3 files: %w", err)
	}
	return nil
}
