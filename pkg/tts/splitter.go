package tts

import (
	"strings"
	"unicode"
)

// DefaultChunkSize keeps each request well below the speech APIs' input limits.
const DefaultChunkSize = 2000

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isClosingQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '”' || r == '’'
}

// chunkText splits text into chunks of at most chunkSize runes, preferring to
// split after a sentence (including closing quotes), then at whitespace, and
// only as a last resort in the middle of a word.
func chunkText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return nil
	}

	var chunks []string
	runes := []rune(text)
	length := len(runes)
	startIndex := 0

	for startIndex < length {
		endIndex := min(startIndex+chunkSize, length)

		if endIndex == length {
			if trimmed := strings.TrimSpace(string(runes[startIndex:])); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			break
		}

		splitPoint := endIndex
		whitespaceSplit := -1

		for k := endIndex - 1; k > startIndex; k-- {
			if isSentenceEnd(runes[k]) {
				scanIdx := k + 1
				for scanIdx < endIndex && isClosingQuote(runes[scanIdx]) {
					scanIdx++
				}
				splitPoint = scanIdx
				whitespaceSplit = -1
				break
			}
			if whitespaceSplit == -1 && unicode.IsSpace(runes[k]) {
				whitespaceSplit = k + 1
			}
		}
		if whitespaceSplit != -1 {
			splitPoint = whitespaceSplit
		}

		if trimmed := strings.TrimSpace(string(runes[startIndex:splitPoint])); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		startIndex = splitPoint
	}

	return chunks
}
