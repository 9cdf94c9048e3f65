package sfapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"fieldkit/internal/config"
	"fieldkit/internal/deploy"
)

var _ deploy.Resolver = (*Resolver)(nil)

// Resolver maps org aliases to authenticated Clients using the profiles of
// the user config merged with the project config of the working directory.
type Resolver struct {
	UserConfigPath string
	Config         *config.Config // API version, rate limit; nil uses defaults
	HTTPClient     *http.Client
	Logger         *slog.Logger

	now func() time.Time
}

// Resolve implements deploy.Resolver.
func (r *Resolver) Resolve(ctx context.Context, alias, workDir string) (deploy.Connection, error) {
	c, err := r.ResolveClient(ctx, alias, workDir)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ResolveClient returns a Client for the profile named alias. Relative
// private key paths are read from workDir.
func (r *Resolver) ResolveClient(ctx context.Context, alias, workDir string) (*Client, error) {
	if workDir != "" {
		info, err := os.Stat(workDir)
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("working directory: %s is not a directory", workDir)
		}
	}

	cfgs, err := config.LoadMerged(r.UserConfigPath, workDir)
	if err != nil {
		return nil, err
	}
	profile, ok := cfgs.Profiles[alias]
	if !ok {
		return nil, &ResolutionError{Alias: alias}
	}

	opts := r.clientOptions(profile)
	logger := opts.Logger.With("target_org", alias)

	switch {
	case profile.AccessToken != "":
		if profile.InstanceURL == "" {
			return nil, fmt.Errorf("profile %q: access-token requires instance-url", alias)
		}
		logger.Debug("using stored access token")
		return NewClient(profile.InstanceURL, profile.AccessToken, opts), nil

	case profile.UsesJWT():
		keyPath := profile.PrivateKeyFile
		if !filepath.IsAbs(keyPath) && workDir != "" {
			keyPath = filepath.Join(workDir, keyPath)
		}
		pemBytes, err := os.ReadFile(keyPath) //nolint:gosec // path comes from the user's profile
		if err != nil {
			return nil, fmt.Errorf("profile %q: read private key: %w", alias, err)
		}
		tok, err := FetchJWTToken(ctx, opts.HTTPClient, JWTConfig{
			LoginURL:      profile.LoginURL,
			ClientID:      profile.ClientID,
			Username:      profile.Username,
			PrivateKeyPEM: pemBytes,
		}, r.clock())
		if err != nil {
			return nil, fmt.Errorf("profile %q: jwt login: %w", alias, err)
		}
		logger.Debug("obtained access token via jwt bearer flow", "instance_url", tok.InstanceURL)
		instanceURL := tok.InstanceURL
		if profile.InstanceURL != "" {
			instanceURL = profile.InstanceURL
		}
		return NewClient(instanceURL, tok.AccessToken, opts), nil

	default:
		return nil, fmt.Errorf("profile %q has no credentials: set access-token or client-id, username and private-key-file", alias)
	}
}

func (r *Resolver) clientOptions(p config.Profile) Options {
	opts := Options{
		APIVersion: p.APIVersion,
		HTTPClient: r.HTTPClient,
		Logger:     r.Logger,
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if r.Config != nil {
		if opts.APIVersion == "" {
			opts.APIVersion = r.Config.APIVersion
		}
		opts.RateLimitRPS = r.Config.RateLimitRPS
		opts.RateLimitBurst = r.Config.RateLimitBurst
		if opts.HTTPClient == nil && r.Config.HTTPTimeout > 0 {
			opts.HTTPClient = &http.Client{Timeout: r.Config.HTTPTimeout}
		}
	}
	return opts
}

func (r *Resolver) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}
