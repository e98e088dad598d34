// Package main provides the medgate CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medscan-ai/medgate/config"
	"github.com/medscan-ai/medgate/gateway"
)

var version = "0.1.0"

var (
	cfg     config.Config
	logger  zerolog.Logger
	verbose bool
)

func newGateway() *gateway.Gateway {
	return gateway.New(cfg, gateway.WithLogger(logger))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "medgate",
		Short: "Unified gateway to LLM providers for medical image analysis",
		Long: `medgate talks to OpenAI, Anthropic, Gemini, Groq, Cohere,
OpenRouter, Azure OpenAI, Hugging Face and custom OpenAI-compatible
endpoints through one request shape, with usage and cost reporting.

Credentials come from <PROVIDER>_API_KEY environment variables or a
.env file in the working directory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()

			cfg = config.Load()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		generateCmd(),
		providersCmd(),
		modelsCmd(),
		mockServerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
