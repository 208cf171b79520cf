package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vocaltales/storyteller/pkg"
)

func main() {
	initLogger()
	initConfig()
	setLogLevel()

	rootCmd := &cobra.Command{
		Use:          "storyteller",
		Short:        "VocalTales: Audio Storyteller",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(pkg.NewCommands()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("storyteller failed")
		stop()
		os.Exit(1)
	}
}

func initLogger() {
	log.Logger = newLogger(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// newLogger writes human readable lines to a terminal and JSON otherwise.
func newLogger(out io.Writer, terminal bool) zerolog.Logger {
	if terminal {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func initConfig() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Error reading .env file")
	}

	viper.SetConfigName("app")
	viper.SetConfigType("env")

	// First, look in the current directory
	viper.AddConfigPath(".")

	// Fallback to the user's home directory
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("Error getting user home directory")
	} else {
		viper.AddConfigPath(home)
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Msg("Config file not found in current directory or home directory")
		} else {
			log.Warn().Err(err).Msg("Error reading config file")
		}
	}
}

func setLogLevel() {
	name := viper.GetString("STORYTELLER_LOG_LEVEL")
	if name == "" {
		return
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		log.Warn().Str("level", name).Msg("Unknown log level, using info")
		return
	}
	zerolog.SetGlobalLevel(level)
}
