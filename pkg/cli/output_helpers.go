package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
	outputHTML = "html"
)

func validateOutputFormat(output string) error {
	switch output {
	case outputText, outputJSON, outputHTML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q: use 'text', 'json' or 'html'", output)
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isStdinTTY reports whether stdin is an interactive terminal.
func isStdinTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
}
