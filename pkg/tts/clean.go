package tts

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

var (
	emojiRegex     = regexp.MustCompile(`[\x{1F600}-\x{1F64F}]|[\x{1F300}-\x{1F5FF}]|[\x{1F680}-\x{1F6FF}]|[\x{1F1E0}-\x{1F1FF}]|[\x{2600}-\x{26FF}]|[\x{2700}-\x{27BF}]`)
	symbolRegex    = regexp.MustCompile(`[\x{1F900}-\x{1F9FF}]|[\x{1FA70}-\x{1FAFF}]|[\x{1F004}-\x{1F0CF}]`)
	variationRegex = regexp.MustCompile(`[\x{FE00}-\x{FE0F}]`)
	zeroWidth      = strings.NewReplacer("\u200B", " ", "\u200C", " ", "\u200D", " ", "\uFEFF", " ")
	markdownChars  = strings.NewReplacer("*", "", "#", "")
)

// CleanText strips emojis, zero-width characters and markdown emphasis that
// speech backends read out literally, and collapses whitespace.
func CleanText(text string) string {
	cleaned := emojiRegex.ReplaceAllString(text, "")
	cleaned = symbolRegex.ReplaceAllString(cleaned, "")
	cleaned = variationRegex.ReplaceAllString(cleaned, "")
	cleaned = zeroWidth.Replace(cleaned)
	cleaned = markdownChars.Replace(cleaned)

	var result strings.Builder
	result.Grow(len(cleaned))

	inWhitespace := false
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			if !inWhitespace {
				result.WriteRune(' ')
				inWhitespace = true
			}
			continue
		}
		result.WriteRune(r)
		inWhitespace = false
	}

	return strings.TrimSpace(result.String())
}

// Cleaning runs CleanText over the text before handing it to the wrapped narrator.
type Cleaning struct {
	Narrator Narrator
}

func (c Cleaning) Narrate(ctx context.Context, text, voiceLabel string) (string, error) {
	return c.Narrator.Narrate(ctx, CleanText(text), voiceLabel)
}
