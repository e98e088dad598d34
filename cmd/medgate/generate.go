package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/medscan-ai/medgate/internal/markdown"
	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/types"
)

var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

func loadImage(path string) (types.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Image{}, fmt.Errorf("read image: %w", err)
	}
	mime, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return types.Image{}, fmt.Errorf("unsupported image type: %s", path)
	}
	return types.Image{Data: data, MIME: mime}, nil
}

// promptForKey asks for a credential interactively when stdin is a
// terminal. Returns empty when it is not.
func promptForKey(provider providers.Provider) string {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return ""
	}
	fmt.Fprintf(os.Stderr, "Enter API key for %s: ", provider)
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(key))
}

func generateCmd() *cobra.Command {
	var (
		providerID  string
		model       string
		images      []string
		system      string
		temperature float64
		maxTokens   int
		raw         bool
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a response from a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.Request{
				Prompt:       args[0],
				SystemPrompt: system,
				Temperature:  temperature,
				MaxTokens:    maxTokens,
				Model:        model,
			}
			for _, path := range images {
				img, err := loadImage(path)
				if err != nil {
					return err
				}
				req.Images = append(req.Images, img)
			}

			g := newGateway()
			id := providers.Provider(providerID)
			if id == "" {
				id = g.DefaultProvider()
			}

			resp, err := g.Generate(cmd.Context(), id, req)
			if errors.Is(err, types.ErrMissingCredential) {
				key := promptForKey(id)
				if key == "" {
					return err
				}
				cfg.Keys[string(id)] = key
				resp, err = newGateway().Generate(cmd.Context(), id, req)
			}
			if err != nil {
				return err
			}

			if raw {
				fmt.Println(resp.Text)
			} else {
				markdown.Fprint(os.Stdout, resp.Text)
			}

			usage := fmt.Sprintf("%s/%s: %d in + %d out tokens", resp.Provider, resp.Model, resp.Usage.Input, resp.Usage.Output)
			if resp.EstimatedUsage {
				usage += " (estimated)"
			}
			if resp.Cost != nil {
				usage += fmt.Sprintf(", $%s", resp.Cost.TotalUSD)
			}
			fmt.Fprintf(os.Stderr, "%s, %s\n", usage, resp.Latency.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "provider id (default: configured or first available)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model name (default: provider default)")
	cmd.Flags().StringArrayVarP(&images, "image", "i", nil, "image file to attach (repeatable)")
	cmd.Flags().StringVarP(&system, "system", "s", "", "system prompt")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0.1, "sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "max output tokens (default: provider default)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print plain text instead of rendered markdown")
	return cmd
}
