package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fieldkit/internal/config"
)

// captureStdout redirects os.Stdout to a pipe and returns a function
// that restores stdout and returns the captured output.
// Uses a goroutine to read concurrently, avoiding pipe buffer deadlocks.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	return func() string {
		_ = w.Close()
		<-done
		os.Stdout = old
		return buf.String()
	}
}

// isolateEnv points HOME at a temp dir and clears FIELDKIT_* variables so no
// real config leaks into a test. It returns the new HOME.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"FIELDKIT_TARGET_ORG", "FIELDKIT_OUTPUT", "FIELDKIT_LOG_LEVEL", "FIELDKIT_LOG_FORMAT",
		"FIELDKIT_API_VERSION", "FIELDKIT_HTTP_TIMEOUT", "FIELDKIT_RATE_LIMIT_RPS", "FIELDKIT_RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
	return home
}

// saveProfiles writes the user config under the isolated HOME.
func saveProfiles(t *testing.T, current string, profiles map[string]config.Profile) {
	t.Helper()
	require.NoError(t, config.SaveUserConfig(config.UserConfigPath(), &config.UserConfig{
		CurrentProfile: current,
		Profiles:       profiles,
	}))
}

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const accountDefinition = `apiVersion: fieldkit/v1
kind: FieldDeployment
fields:
  - object: Account
    name: Tier
    label: Tier
    type: Picklist
    picklistValues:
      - value: Gold
        default: true
      - value: Silver
  - object: Account
    name: Score
    label: Score
    type: Number
    precision: 40
permissions:
  - grantee: Sales_Ops
    readable: true
    editable: true
`
