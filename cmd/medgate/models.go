package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medscan-ai/medgate/providers"
)

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models <provider>",
		Short: "List models for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := newGateway()
			id := providers.Provider(args[0])
			models, err := g.Models(id)
			if err != nil {
				return err
			}
			adapter, err := g.Create(id)
			if err != nil {
				return err
			}
			for _, model := range models {
				caps := adapter.Capabilities(model)
				flags := ""
				if caps.Vision {
					flags += " vision"
				}
				if caps.Streaming {
					flags += " streaming"
				}
				price := "unpriced"
				if caps.Priced() {
					price = fmt.Sprintf("$%s/$%s per 1K", caps.InputUSDPer1K, caps.OutputUSDPer1K)
				}
				fmt.Printf("%-44s max %5d%s  %s\n", model, caps.MaxTokens, flags, price)
			}
			return nil
		},
	}
	return cmd
}
