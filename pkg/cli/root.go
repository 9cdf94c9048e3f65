// Package cli implements the fieldkit command tree.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fieldkit/internal/config"
	"fieldkit/internal/deploy"
	"fieldkit/internal/sfapi"
)

var (
	version = "dev"
	commit  = "none"
)

// errReported signals a failure whose details were already written to
// stdout as part of a report.
var errReported = errors.New("reported")

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errReported) {
			return 1
		}
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{
				"error": err.Error(),
			}
			var apiErr *sfapi.APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
				errObj["code"] = apiErr.Code
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// app carries the settings resolved once per invocation.
type app struct {
	targetOrg string
	output    string
	workDir   string
	logLevel  string

	cfg            *config.Config
	logger         *slog.Logger
	userConfigPath string
}

// resolver returns the org resolver for this invocation.
func (a *app) resolver() deploy.Resolver {
	return &sfapi.Resolver{
		UserConfigPath: a.userConfigPath,
		Config:         a.cfg,
		Logger:         a.logger,
	}
}

func newRootCmd() *cobra.Command {
	cmd, _ := newRootApp()
	return cmd
}

func newRootApp() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "fieldkit",
		Short:         "Create custom fields in an org",
		Long:          "Creates custom fields in one Metadata API batch and grants field-level security on the fields that were created.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.targetOrg, "target-org", "t", "", "Org alias (profile) to deploy to")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "Output format (text, json, html)")
	rootCmd.PersistentFlags().StringVar(&a.workDir, "dir", "", "Project directory holding .env and .fieldkit/ (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newFieldsCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd, a
}

// resolve applies precedence flag > env (.env included) > profile > default
// and builds the logger.
func (a *app) resolve(cmd *cobra.Command) error {
	if a.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("working directory: %w", err)
		}
		a.workDir = wd
	}
	abs, err := filepath.Abs(a.workDir)
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	a.workDir = abs

	dotenv, err := config.ReadDotEnv(filepath.Join(a.workDir, ".env"))
	if err != nil {
		return err
	}
	getenv := config.LookupChain(dotenv)
	cfg, err := config.Load(getenv)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(os.Stderr)
	for _, w := range cfg.Warnings {
		a.logger.Warn(w)
	}

	a.userConfigPath = config.UserConfigPath()
	profiles, err := config.LoadMerged(a.userConfigPath, a.workDir)
	if err != nil {
		a.logger.Warn("ignoring unreadable config", "error", err)
		profiles = &config.UserConfig{Profiles: map[string]config.Profile{}}
	}

	if !cmd.Flags().Changed("target-org") {
		if cfg.TargetOrg != "" {
			a.targetOrg = cfg.TargetOrg
		} else {
			a.targetOrg = profiles.CurrentProfile
		}
	}
	if !cmd.Flags().Changed("output") {
		if v := getenv("FIELDKIT_OUTPUT"); v != "" {
			a.output = v
		} else if p, err := profiles.ActiveProfile(a.targetOrg); err == nil && p.Output != "" {
			a.output = p.Output
		}
	}
	if err := validateOutputFormat(a.output); err != nil {
		return err
	}

	a.logger.Debug("configuration resolved",
		"target_org", a.targetOrg,
		"work_dir", a.workDir,
		"output", a.output,
		"api_version", cfg.APIVersion)
	return nil
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
