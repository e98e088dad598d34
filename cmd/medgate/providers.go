package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func providersCmd() *cobra.Command {
	var onlyAvailable bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List registered providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := newGateway()
			infos := g.Providers()
			if onlyAvailable {
				infos = g.AvailableProviders()
			}
			for _, info := range infos {
				status := "no credential"
				if info.Usable {
					status = "ready"
				}
				fmt.Printf("%-16s %-24s %-12s default: %s\n", info.ID, info.DisplayName, status, info.DefaultModel)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&onlyAvailable, "available", "a", false, "only show providers with a configured credential")
	return cmd
}
