package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DirName is the directory holding config files, under $HOME and under a
// project working directory.
const DirName = ".fieldkit"

// UserConfig represents a config.yaml file: named org profiles plus the
// profile used when no alias is given.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile,omitempty" json:"current_profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles" json:"profiles"`
}

// Profile describes how to reach one org. Either AccessToken or the JWT
// bearer settings (LoginURL, ClientID, Username, PrivateKeyFile) must be set.
type Profile struct {
	InstanceURL    string `yaml:"instance-url,omitempty" json:"instance_url,omitempty"`
	AccessToken    string `yaml:"access-token,omitempty" json:"access_token,omitempty"`
	APIVersion     string `yaml:"api-version,omitempty" json:"api_version,omitempty"`
	LoginURL       string `yaml:"login-url,omitempty" json:"login_url,omitempty"`
	ClientID       string `yaml:"client-id,omitempty" json:"client_id,omitempty"`
	Username       string `yaml:"username,omitempty" json:"username,omitempty"`
	PrivateKeyFile string `yaml:"private-key-file,omitempty" json:"private_key_file,omitempty"`
	Output         string `yaml:"output,omitempty" json:"output,omitempty"`
}

// UsesJWT reports whether p authenticates through the JWT bearer flow.
func (p Profile) UsesJWT() bool {
	return p.AccessToken == "" && p.ClientID != "" && p.Username != "" && p.PrivateKeyFile != ""
}

// ActiveProfile returns the profile named override, or the current profile
// when override is empty.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	name := c.CurrentProfile
	if override != "" {
		name = override
	}
	if p, ok := c.Profiles[name]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("profile %q not found", name)
}

// Merge returns a copy of c with other's profiles layered on top. other's
// current profile wins when set.
func (c *UserConfig) Merge(other *UserConfig) *UserConfig {
	merged := &UserConfig{
		CurrentProfile: c.CurrentProfile,
		Profiles:       make(map[string]Profile, len(c.Profiles)),
	}
	for name, p := range c.Profiles {
		merged.Profiles[name] = p
	}
	if other == nil {
		return merged
	}
	if other.CurrentProfile != "" {
		merged.CurrentProfile = other.CurrentProfile
	}
	for name, p := range other.Profiles {
		merged.Profiles[name] = p
	}
	return merged
}

// UserConfigDir returns the path to ~/.fieldkit/.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DirName)
}

// UserConfigPath returns the path to ~/.fieldkit/config.yaml.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// ProjectConfigPath returns the path to <workDir>/.fieldkit/config.yaml.
func ProjectConfigPath(workDir string) string {
	return filepath.Join(workDir, DirName, "config.yaml")
}

// LoadUserConfig reads a config file.
func LoadUserConfig(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// LoadOptionalUserConfig reads a config file, returning an empty config if
// it does not exist.
func LoadOptionalUserConfig(path string) (*UserConfig, error) {
	cfg, err := LoadUserConfig(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return &UserConfig{Profiles: map[string]Profile{}}, nil
	}
	return nil, err
}

// LoadMerged reads the user config and the project config under workDir and
// layers the project on top. Both files are optional.
func LoadMerged(userPath, workDir string) (*UserConfig, error) {
	user, err := LoadOptionalUserConfig(userPath)
	if err != nil {
		return nil, err
	}
	if workDir == "" {
		return user, nil
	}
	project, err := LoadOptionalUserConfig(ProjectConfigPath(workDir))
	if err != nil {
		return nil, err
	}
	return user.Merge(project), nil
}

// SaveUserConfig writes cfg to path, creating the directory if needed.
func SaveUserConfig(path string, cfg *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
