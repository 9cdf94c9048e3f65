package sfapi

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldkit/internal/config"
)

func writeUserConfig(t *testing.T, profiles map[string]config.Profile, current string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DirName, "config.yaml")
	require.NoError(t, config.SaveUserConfig(path, &config.UserConfig{CurrentProfile: current, Profiles: profiles}))
	return path
}

func TestResolver_AccessToken(t *testing.T) {
	path := writeUserConfig(t, map[string]config.Profile{
		"dev": {InstanceURL: "https://dev.my.salesforce.com/", AccessToken: "00D!dev"},
	}, "dev")
	r := &Resolver{UserConfigPath: path, Config: &config.Config{APIVersion: "59.0", RateLimitRPS: 10, RateLimitBurst: 5}}

	c, err := r.ResolveClient(context.Background(), "dev", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://dev.my.salesforce.com", c.InstanceURL())
	assert.Equal(t, "https://dev.my.salesforce.com/services/Soap/m/59.0", c.Endpoint())
	assert.Equal(t, "00D!dev", c.accessToken)
	require.NotNil(t, c.limiter)
	assert.Equal(t, 5, c.limiter.Burst())
}

func TestResolver_ProfileAPIVersionWins(t *testing.T) {
	path := writeUserConfig(t, map[string]config.Profile{
		"dev": {InstanceURL: "https://dev.example.com", AccessToken: "tok", APIVersion: "58.0"},
	}, "")
	r := &Resolver{UserConfigPath: path, Config: &config.Config{APIVersion: "60.0"}}

	c, err := r.ResolveClient(context.Background(), "dev", "")
	require.NoError(t, err)
	assert.Equal(t, "https://dev.example.com/services/Soap/m/58.0", c.Endpoint())
}

func TestResolver_UnknownAlias(t *testing.T) {
	path := writeUserConfig(t, map[string]config.Profile{"dev": {AccessToken: "tok", InstanceURL: "https://x"}}, "dev")
	r := &Resolver{UserConfigPath: path}

	conn, err := r.Resolve(context.Background(), "prod", "")
	assert.Nil(t, conn)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "prod", resErr.Alias)
	assert.EqualError(t, err, `no org found for alias "prod"`)
}

func TestResolver_ProjectProfiles(t *testing.T) {
	path := writeUserConfig(t, map[string]config.Profile{
		"uat": {InstanceURL: "https://user-uat.example.com", AccessToken: "user"},
	}, "")
	work := t.TempDir()
	require.NoError(t, config.SaveUserConfig(config.ProjectConfigPath(work), &config.UserConfig{
		Profiles: map[string]config.Profile{
			"uat": {InstanceURL: "https://project-uat.example.com", AccessToken: "project"},
		},
	}))
	r := &Resolver{UserConfigPath: path}

	c, err := r.ResolveClient(context.Background(), "uat", work)
	require.NoError(t, err)
	assert.Equal(t, "https://project-uat.example.com", c.InstanceURL())

	c, err = r.ResolveClient(context.Background(), "uat", "")
	require.NoError(t, err)
	assert.Equal(t, "https://user-uat.example.com", c.InstanceURL())
}

func TestResolver_WorkDirErrors(t *testing.T) {
	path := writeUserConfig(t, map[string]config.Profile{}, "")
	r := &Resolver{UserConfigPath: path}

	_, err := r.ResolveClient(context.Background(), "dev", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = r.ResolveClient(context.Background(), "dev", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestResolver_Credentials(t *testing.T) {
	path := writeUserConfig(t, map[string]config.Profile{
		"bare":    {InstanceURL: "https://bare.example.com"},
		"nourl":   {AccessToken: "tok"},
		"partial": {ClientID: "cid", Username: "u@example.com"},
	}, "")
	r := &Resolver{UserConfigPath: path}

	_, err := r.ResolveClient(context.Background(), "bare", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no credentials")

	_, err = r.ResolveClient(context.Background(), "nourl", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires instance-url")

	_, err = r.ResolveClient(context.Background(), "partial", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no credentials")
}

func TestResolver_JWT(t *testing.T) {
	key, pemBytes := newRSAKey(t)
	tokenSrv := newTokenServer(t, &key.PublicKey, "https://acme.my.salesforce.com")

	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "server.key"), pemBytes, 0o600))

	path := writeUserConfig(t, map[string]config.Profile{
		"ci": {
			LoginURL:       tokenSrv.URL,
			ClientID:       "connected-app-id",
			Username:       "ops@acme.example",
			PrivateKeyFile: "server.key",
		},
	}, "ci")
	fixed := time.Now()
	r := &Resolver{UserConfigPath: path, HTTPClient: tokenSrv.Client(), now: func() time.Time { return fixed }}

	c, err := r.ResolveClient(context.Background(), "ci", work)
	require.NoError(t, err)
	assert.Equal(t, "https://acme.my.salesforce.com", c.InstanceURL())
	assert.Equal(t, "00D!jwt-session", c.accessToken)
}

func TestResolver_JWTMissingKey(t *testing.T) {
	path := writeUserConfig(t, map[string]config.Profile{
		"ci": {ClientID: "cid", Username: "u", PrivateKeyFile: "nope.key"},
	}, "")
	r := &Resolver{UserConfigPath: path}

	_, err := r.ResolveClient(context.Background(), "ci", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "ci": read private key`)
}
