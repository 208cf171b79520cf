package pkg

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vocaltales/storyteller/pkg/ai"
	"github.com/vocaltales/storyteller/pkg/config"
	"github.com/vocaltales/storyteller/pkg/image"
	"github.com/vocaltales/storyteller/pkg/pipeline"
	"github.com/vocaltales/storyteller/pkg/server"
	"github.com/vocaltales/storyteller/pkg/session"
	"github.com/vocaltales/storyteller/pkg/story"
	"github.com/vocaltales/storyteller/pkg/stt"
	"github.com/vocaltales/storyteller/pkg/tts"
)

func NewCommands() []*cobra.Command {
	return []*cobra.Command{
		newServeCommand(),
		newTurnCommand(),
		newTellCommand(),
		newVoicesCommand(),
	}
}

func newServeCommand() *cobra.Command {
	var address, port, username, password string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storyteller web UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg, nil)
			if err != nil {
				return err
			}
			if cfg.Transcript {
				p.WithTranscripts(cfg.TranscriptDir, time.Now())
			}

			store, err := newStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(p, store, server.Options{
				Voices:       cfg.Voices,
				DefaultVoice: cfg.VoiceDefault,
				ImagePath:    cfg.ImagePath,
				SpeechPath:   cfg.SpeechPath,
				SpeechDelay:  cfg.SpeechDelay,
				Username:     username,
				Password:     password,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx, net.JoinHostPort(address, port))
		},
	}

	cmd.Flags().StringVar(&address, "address", "127.0.0.1", "address to listen on")
	cmd.Flags().StringVar(&port, "port", "7860", "port to listen on")
	cmd.Flags().StringVar(&username, "username", "", "basic auth username")
	cmd.Flags().StringVar(&password, "password", "", "basic auth password")

	return cmd
}

func newTurnCommand() *cobra.Command {
	var voice string

	cmd := &cobra.Command{
		Use:   "turn <audio-file>",
		Short: "Run one story turn from a recorded clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			sess, err := newCLISession(cfg, voice)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg, transcriptRecorder(cfg))
			if err != nil {
				return err
			}

			result, err := p.Turn(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&voice, "voice", "", "voice label (see voices)")
	return cmd
}

func newTellCommand() *cobra.Command {
	var voice string

	cmd := &cobra.Command{
		Use:   "tell <words...>",
		Short: "Tell a story from typed text; every further line on stdin is another turn",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			sess, err := newCLISession(cfg, voice)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg, transcriptRecorder(cfg))
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				result, err := p.Tell(cmd.Context(), sess, text)
				if err != nil {
					return err
				}
				printResult(result)

				fmt.Print("> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				text = strings.TrimSpace(scanner.Text())
				if text == "" {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&voice, "voice", "", "voice label (see voices)")
	return cmd
}

func newVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List voice labels",
		Run: func(_ *cobra.Command, _ []string) {
			for _, v := range config.DefaultVoices() {
				fmt.Printf("%-10s %s\n", v.Label, v.VoiceID)
			}
		},
	}
}

func newPipeline(cfg *config.Config, recorder story.Recorder) (*pipeline.Pipeline, error) {
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	openAI := ai.NewOpenAI(ai.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		ChatModel:  cfg.ChatModel,
		HTTPClient: client,
	})

	var completer story.Completer = openAI
	if cfg.LLMProvider != "openai" {
		llm, err := ai.NewGollm(cfg.LLMProvider, cfg.LLMModel, cfg.LLMAPIKey)
		if err != nil {
			return nil, err
		}
		completer = llm
	}

	narrator, err := tts.New(cfg, openAI, client)
	if err != nil {
		return nil, err
	}
	log.Info().Str("method", string(cfg.SpeechMethod)).Msg("Speech backend")

	illustrator := image.NewIllustrator(openAI, client, image.Config{
		Resolution:   string(cfg.Resolution),
		PromptMaxLen: cfg.PromptMaxLen,
		ImagePath:    cfg.ImagePath,
	})

	return pipeline.New(
		stt.NewTranscriber(openAI),
		story.NewEngine(completer, cfg.InitialPrompt, recorder),
		illustrator,
		narrator,
	), nil
}

func newStore(cfg *config.Config) (session.Store, error) {
	if cfg.SessionDB == "" {
		return session.NewMemoryStore(), nil
	}
	log.Info().Str("db", cfg.SessionDB).Msg("Using SQLite session store")
	return session.NewSQLiteStore(cfg.SessionDB)
}

func transcriptRecorder(cfg *config.Config) story.Recorder {
	if !cfg.Transcript {
		return nil
	}
	transcript := story.NewTranscript(cfg.TranscriptDir, time.Now(), "")
	log.Info().Str("file", transcript.Path()).Msg("Writing transcript")
	return transcript
}

func newCLISession(cfg *config.Config, voice string) (*session.Session, error) {
	if voice == "" {
		voice = cfg.VoiceDefault
	}
	if _, ok := cfg.Voices.Find(voice); !ok {
		return nil, fmt.Errorf("unknown voice %q, see the voices command", voice)
	}
	return session.New(voice), nil
}

func printResult(result pipeline.Result) {
	if result.Transcript != "" {
		fmt.Printf("You: %s\n\n", result.Transcript)
	}
	fmt.Printf("%s\n\n", result.Story)
	fmt.Printf("Image: %s\n", result.ImagePath)
	if result.SpeechPath != "" {
		fmt.Printf("Speech: %s\n", result.SpeechPath)
	}
	fmt.Println()
}
