package main

import (
	"github.com/spf13/cobra"

	"github.com/medscan-ai/medgate/run/mockserver"
)

func mockServerCmd() *cobra.Command {
	var (
		port      int
		provider  string
		reply     string
		failFirst int
	)

	cmd := &cobra.Command{
		Use:    "mock-server",
		Short:  "Run a local mock of the upstream provider APIs",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mockserver.Start(mockserver.Config{
				Port:      port,
				Provider:  provider,
				Reply:     reply,
				FailFirst: failFirst,
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().StringVar(&provider, "api", "all", "API dialect to serve (openai, anthropic, gemini, cohere, huggingface, all)")
	cmd.Flags().StringVar(&reply, "reply", "", "fixed reply text")
	cmd.Flags().IntVar(&failFirst, "fail-first", 0, "fail the first N requests with HTTP 500")
	return cmd
}
