package cli

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fieldkit/internal/deploy"
	"fieldkit/internal/fielddef"
	"fieldkit/internal/metadata"
	"fieldkit/internal/report"
)

const metadataNS = "http://soap.sforce.com/2006/04/metadata"

func newFieldsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Create and inspect custom fields",
	}

	cmd.AddCommand(newFieldsCreateCmd(a))
	cmd.AddCommand(newFieldsBuildCmd())
	cmd.AddCommand(newFieldsValidateCmd(a))
	cmd.AddCommand(newFieldsTypesCmd(a))

	return cmd
}

// loadDefinition reads and validates a definition file, appending extra
// grants after the file's own. Validation problems go to stderr.
func loadDefinition(path string, extra grantList) (*fielddef.Document, error) {
	doc, err := fielddef.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load definition: %w", err)
	}
	doc.Permissions = append(doc.Permissions, extra...)

	if validationErrs := fielddef.ValidateDocument(doc); len(validationErrs) > 0 {
		fmt.Fprintf(os.Stderr, "Definition has %d validation error(s):\n", len(validationErrs))
		for _, ve := range validationErrs {
			fmt.Fprintf(os.Stderr, "  - %s\n", ve.Error())
		}
		return nil, fmt.Errorf("%s: %d validation error(s)", path, len(validationErrs))
	}
	return doc, nil
}

func newFieldsCreateCmd(a *app) *cobra.Command {
	var (
		file   string
		grants grantList
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create custom fields and grant access to them",
		Long: "Submits every field of the definition file in one Metadata API batch, then grants " +
			"field-level security on the fields that were created to each grantee. A grantee is " +
			"tried as a permission set first and as a profile second.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDefinition(file, grants)
			if err != nil {
				return err
			}

			if a.targetOrg != "" && !yes {
				if !isStdinTTY() {
					return fmt.Errorf("confirmation required but stdin is not a terminal; use --yes")
				}
				ok, err := confirm(os.Stdin, os.Stdout, a.targetOrg, doc)
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(os.Stdout, "Cancelled.")
					return nil
				}
			}

			svc := deploy.NewService(a.resolver(), a.logger)
			res := svc.CreateFields(cmd.Context(), deploy.Request{
				Fields:      doc.Fields,
				Permissions: doc.Permissions,
				TargetOrg:   a.targetOrg,
				WorkDir:     a.workDir,
			})

			if err := writeResult(os.Stdout, a, res); err != nil {
				return err
			}
			if res.IsError {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Definition file (YAML or JSON)")
	cmd.Flags().Var(&grants, "grant", "Grant access to a permission set or profile, NAME=r or NAME=rw (repeatable)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip interactive confirmation prompt")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// confirm lists what is about to be deployed and asks for approval.
func confirm(in io.Reader, out io.Writer, targetOrg string, doc *fielddef.Document) (bool, error) {
	_, _ = fmt.Fprintf(out, "About to create %d field(s) in %q:\n", len(doc.Fields), targetOrg)
	for _, f := range doc.Fields {
		_, _ = fmt.Fprintf(out, "  + %s (%s)\n", f.FullName(), f.Type)
	}
	for _, p := range doc.Permissions {
		access := "read"
		if p.Editable {
			access = "read/edit"
		}
		_, _ = fmt.Fprintf(out, "  grant %s to %s\n", access, p.Grantee)
	}
	_, _ = fmt.Fprint(out, "\nProceed? [y/N] ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

func writeResult(w io.Writer, a *app, res deploy.Result) error {
	switch a.output {
	case outputJSON:
		return printJSON(w, res)
	case outputHTML:
		return report.Render(w, res, report.Meta{TargetOrg: a.targetOrg, GeneratedAt: time.Now()})
	default:
		_, err := fmt.Fprintln(w, res.Report)
		return err
	}
}

func newFieldsBuildCmd() *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Print the metadata components a definition file produces",
		Long:  "Builds the CustomField components without contacting an org.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			doc, err := loadDefinition(file, nil)
			if err != nil {
				return err
			}
			components := deploy.BuildComponents(doc.Fields)

			switch format {
			case "json":
				return printJSON(os.Stdout, components)
			case "xml":
				return writeComponentsXML(os.Stdout, components)
			default:
				return fmt.Errorf("unsupported format %q: use 'json' or 'xml'", format)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Definition file (YAML or JSON)")
	cmd.Flags().StringVar(&format, "format", "xml", "Payload format (xml, json)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// writeComponentsXML writes each component as a CustomField document.
func writeComponentsXML(w io.Writer, components []*metadata.CustomField) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	for _, c := range components {
		start := xml.StartElement{Name: xml.Name{Space: metadataNS, Local: string(metadata.KindCustomField)}}
		if err := enc.EncodeElement(c, start); err != nil {
			return fmt.Errorf("encode %s: %w", c.FullName, err)
		}
		if err := enc.Flush(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

type fieldTypeInfo struct {
	Type       metadata.FieldType `json:"type"`
	RemoteType string             `json:"remote_type"`
	Options    []string           `json:"options,omitempty"`
}

func newFieldsTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported field types",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			infos := make([]fieldTypeInfo, 0, len(metadata.FieldTypes))
			for _, t := range metadata.FieldTypes {
				infos = append(infos, fieldTypeInfo{Type: t, RemoteType: metadata.RemoteType(t), Options: t.Options()})
			}
			if a.output == outputJSON {
				return printJSON(os.Stdout, infos)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TYPE\tREMOTE TYPE\tOPTIONS")
			for _, info := range infos {
				opts := strings.Join(info.Options, ", ")
				if opts == "" {
					opts = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Type, info.RemoteType, opts)
			}
			return tw.Flush()
		},
	}
}
