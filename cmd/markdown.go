package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// renderMarkdown styles markdown for the terminal. Output that is not a
// terminal gets the raw markdown.
func renderMarkdown(md string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return md
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// printMarkdown prints markdown to the standard output.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}
