package deploy

import (
	"fmt"
	"strings"
)

// Summary is the human-readable report of one invocation.
type Summary struct {
	Text    string
	IsError bool
}

// Summarize composes the report: created fields, failed fields, then the
// permission block verbatim. IsError is set exactly when a field failed;
// permission failures never set it.
func Summarize(succeeded, failed []string, permissions string) Summary {
	var blocks []string

	if len(succeeded) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Successfully created %d field(s):", len(succeeded))
		for _, name := range succeeded {
			fmt.Fprintf(&b, "\n  %s %s", SuccessMarker, name)
		}
		blocks = append(blocks, b.String())
	}

	if len(failed) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Failed to create %d field(s):", len(failed))
		for _, line := range failed {
			fmt.Fprintf(&b, "\n  %s %s", FailureMarker, line)
		}
		blocks = append(blocks, b.String())
	}

	if permissions != "" {
		blocks = append(blocks, "Permission assignments:\n"+permissions)
	}

	return Summary{
		Text:    strings.Join(blocks, "\n\n"),
		IsError: len(failed) > 0,
	}
}
