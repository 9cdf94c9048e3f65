package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsValidate(t *testing.T) {
	isolateEnv(t)
	work := t.TempDir()
	def := writeFile(t, work, "fields.yaml", accountDefinition)

	out, err := runCmd(t, "fields", "validate", "-f", def, "--grant", "Support=r", "--dir", work)
	require.NoError(t, err)
	assert.Equal(t, "Definition is valid: 2 field(s), 2 grantee(s).\n", out)
}

func TestFieldsValidate_JSONErrors(t *testing.T) {
	isolateEnv(t)
	work := t.TempDir()
	def := writeFile(t, work, "fields.yaml", `apiVersion: fieldkit/v1
kind: FieldDeployment
fields:
  - object: Account
    name: Tier
    label: Tier
    type: Picklist
`)

	out, err := runCmd(t, "fields", "validate", "-f", def, "-o", "json", "--dir", work)
	require.ErrorIs(t, err, errReported)

	var got struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Valid)
	assert.Equal(t, []string{"fields[Account.Tier__c]: picklistValues must not be empty"}, got.Errors)
}

func TestFieldsValidate_UnknownKey(t *testing.T) {
	isolateEnv(t)
	work := t.TempDir()
	def := writeFile(t, work, "fields.yaml", "apiVersion: fieldkit/v1\nkind: FieldDeployment\nfeilds: []\n")

	_, err := runCmd(t, "fields", "validate", "-f", def, "--dir", work)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field feilds not found")
}
