package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.output == outputJSON {
				return printJSON(os.Stdout, map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "fieldkit version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
