package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/teilomillet/gollm"
	"github.com/vocaltales/storyteller/pkg/story"
)

// Gollm continues the story through any provider gollm supports
// (anthropic, groq, ollama, ...).
type Gollm struct {
	client gollm.LLM
}

func NewGollm(provider, model, apiKey string) (*Gollm, error) {
	conn, err := gollm.NewLLM(
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetAPIKey(apiKey),
		gollm.SetMaxRetries(0),
		gollm.SetRetryDelay(time.Second*5),
		gollm.SetLogLevel(gollm.LogLevelInfo),
		gollm.SetMaxTokens(1024),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}

	log.Info().Str("provider", provider).Str("model", model).Msg("Using gollm chat completion")

	return &Gollm{client: conn}, nil
}

func (a *Gollm) Complete(ctx context.Context, history story.History) (string, error) {
	system, conversation, latest := splitHistory(history)

	templatePrompt := gollm.NewPromptTemplate(
		"StoryTurn",
		"Continue an interactive story by one chapter.",
		"Story so far:\n```\n{{.Conversation}}\n```\n\n"+
			"The reader now says: {{.Latest}}",
		gollm.WithPromptOptions(
			gollm.WithContext(system),
			gollm.WithOutput("Answer only with the next chapter of the story."),
		),
	)

	prompt, err := templatePrompt.Execute(map[string]interface{}{
		"Conversation": conversation,
		"Latest":       latest,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return a.client.Generate(ctx, prompt)
}

// splitHistory separates the system instruction, the rendered conversation
// before the latest user turn and the latest user turn itself.
func splitHistory(history story.History) (string, string, string) {
	var system string
	var latest string
	turns := make(story.History, 0, len(history))

	for i, turn := range history {
		switch {
		case turn.Role == story.RoleSystem:
			system = strings.TrimSpace(turn.Content)
		case i == len(history)-1 && turn.Role == story.RoleUser:
			latest = turn.Content
		default:
			turns = append(turns, turn)
		}
	}

	conversation := turns.String()
	if conversation == "" {
		conversation = "(the story has not started yet)"
	}
	return system, conversation, latest
}
