package markdown

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	styles "github.com/charmbracelet/glamour/styles"
)

// Render formats markdown for terminal display. Falls back to the
// no-TTY style so output stays readable when piped.
func Render(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.NoTTYStyleConfig),
		glamour.WithWordWrap(120),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

// Fprint renders markdown and writes it to w. On render failure the
// raw markdown is written instead, so model output is never lost.
func Fprint(w io.Writer, markdown string) {
	out, err := Render(markdown)
	if err != nil {
		fmt.Fprintln(w, markdown)
		return
	}
	fmt.Fprint(w, out)
}
