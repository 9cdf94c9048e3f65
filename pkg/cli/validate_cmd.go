package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fieldkit/internal/fielddef"
)

func newFieldsValidateCmd(a *app) *cobra.Command {
	var (
		file   string
		grants grantList
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a definition file offline",
		Long:  "Reads a definition file and checks it for errors without contacting an org.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			doc, err := fielddef.LoadFile(file)
			if err != nil {
				return fmt.Errorf("load definition: %w", err)
			}
			doc.Permissions = append(doc.Permissions, grants...)

			validationErrs := fielddef.ValidateDocument(doc)
			if a.output == outputJSON {
				errMsgs := make([]string, len(validationErrs))
				for i, ve := range validationErrs {
					errMsgs[i] = ve.Error()
				}
				if err := printJSON(os.Stdout, map[string]interface{}{
					"valid":  len(validationErrs) == 0,
					"fields": len(doc.Fields),
					"errors": errMsgs,
				}); err != nil {
					return err
				}
				if len(validationErrs) > 0 {
					return errReported
				}
				return nil
			}

			if len(validationErrs) > 0 {
				fmt.Fprintf(os.Stderr, "Definition has %d validation error(s):\n", len(validationErrs))
				for _, ve := range validationErrs {
					fmt.Fprintf(os.Stderr, "  - %s\n", ve.Error())
				}
				return errReported
			}
			_, _ = fmt.Fprintf(os.Stdout, "Definition is valid: %d field(s), %d grantee(s).\n", len(doc.Fields), len(doc.Permissions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Definition file (YAML or JSON)")
	cmd.Flags().Var(&grants, "grant", "Grant to validate along with the file, NAME=r or NAME=rw (repeatable)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
