package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fieldkit/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage org profiles",
	}

	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigSetProfileCmd(a))
	cmd.AddCommand(newConfigUseProfileCmd(a))

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display profiles (user config merged with the project config)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadMerged(config.UserConfigPath(), a.workDir)
			if err != nil {
				return err
			}
			if len(cfg.Profiles) == 0 {
				_, _ = fmt.Fprintf(os.Stderr, "No profiles found in %s or %s\n",
					config.UserConfigPath(), config.ProjectConfigPath(a.workDir))
			}
			if !reveal {
				cfg = maskConfig(cfg)
			}
			if a.output == outputJSON {
				return printJSON(os.Stdout, cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprint(os.Stdout, string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show sensitive values unmasked")

	return cmd
}

// maskConfig returns a copy of the config with sensitive fields masked.
func maskConfig(cfg *config.UserConfig) *config.UserConfig {
	masked := &config.UserConfig{
		CurrentProfile: cfg.CurrentProfile,
		Profiles:       make(map[string]config.Profile, len(cfg.Profiles)),
	}
	for name, p := range cfg.Profiles {
		p.AccessToken = maskSecret(p.AccessToken)
		masked.Profiles[name] = p
	}
	return masked
}

// maskSecret masks a sensitive string, showing first 4 and last 4 chars.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 10 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func newConfigSetProfileCmd(a *app) *cobra.Command {
	var (
		name string
		p    config.Profile
	)

	cmd := &cobra.Command{
		Use:   "set-profile",
		Short: "Create or update an org profile in the user config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if cmd.Flags().Changed("default-output") {
				if err := validateOutputFormat(p.Output); err != nil {
					return err
				}
			}

			path := config.UserConfigPath()
			cfg, err := config.LoadOptionalUserConfig(path)
			if err != nil {
				return err
			}

			existing := cfg.Profiles[name]
			set := func(flag string, dst *string, v string) {
				if cmd.Flags().Changed(flag) {
					*dst = v
				}
			}
			set("instance-url", &existing.InstanceURL, p.InstanceURL)
			set("access-token", &existing.AccessToken, p.AccessToken)
			set("api-version", &existing.APIVersion, p.APIVersion)
			set("login-url", &existing.LoginURL, p.LoginURL)
			set("client-id", &existing.ClientID, p.ClientID)
			set("username", &existing.Username, p.Username)
			set("private-key-file", &existing.PrivateKeyFile, p.PrivateKeyFile)
			set("default-output", &existing.Output, p.Output)
			cfg.Profiles[name] = existing
			if cfg.CurrentProfile == "" {
				cfg.CurrentProfile = name
			}

			if err := config.SaveUserConfig(path, cfg); err != nil {
				return err
			}
			if a.output == outputJSON {
				return printJSON(os.Stdout, map[string]string{
					"status":  "ok",
					"profile": name,
					"path":    path,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Profile %q saved to %s\n", name, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name, used as the org alias (required)")
	cmd.Flags().StringVar(&p.InstanceURL, "instance-url", "", "Org base URL, e.g. https://acme.my.salesforce.com")
	cmd.Flags().StringVar(&p.AccessToken, "access-token", "", "Session ID / OAuth access token")
	cmd.Flags().StringVar(&p.APIVersion, "api-version", "", "Metadata API version for this org")
	cmd.Flags().StringVar(&p.LoginURL, "login-url", "", "OAuth login URL for the JWT bearer flow")
	cmd.Flags().StringVar(&p.ClientID, "client-id", "", "Connected app consumer key for the JWT bearer flow")
	cmd.Flags().StringVar(&p.Username, "username", "", "Username for the JWT bearer flow")
	cmd.Flags().StringVar(&p.PrivateKeyFile, "private-key-file", "", "PEM private key for the JWT bearer flow")
	cmd.Flags().StringVar(&p.Output, "default-output", "", "Default output format for this org")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the default org profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := config.UserConfigPath()
			cfg, err := config.LoadUserConfig(path)
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, err := cfg.ActiveProfile(name); err != nil {
				return err
			}
			cfg.CurrentProfile = name
			if err := config.SaveUserConfig(path, cfg); err != nil {
				return err
			}
			if a.output == outputJSON {
				return printJSON(os.Stdout, map[string]string{
					"status":         "ok",
					"active_profile": name,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Active profile set to %q\n", name)
			return nil
		},
	}
}
