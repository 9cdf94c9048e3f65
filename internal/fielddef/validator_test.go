package fielddef

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldkit/internal/deploy"
	"fieldkit/internal/metadata"
)

func intPtr(v int) *int { return &v }

func validText() metadata.FieldSpec {
	return metadata.FieldSpec{Object: "Account", Name: "Code", Label: "Code", Type: metadata.FieldTypeText}
}

func messages(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	fields := []metadata.FieldSpec{
		validText(),
		{
			Object: "Account", Name: "Tier", Label: "Tier", Type: metadata.FieldTypePicklist,
			PicklistValues: []metadata.PicklistValue{{Value: "Gold"}, {Value: "Silver"}},
		},
		{Object: "Contact", Name: "Owner_Account", Label: "Owner", Type: metadata.FieldTypeMasterDetail, ReferenceTo: "Account"},
	}
	errs := Validate(fields, []deploy.PermissionRequest{{Grantee: "Sales", Readable: true}})
	assert.Empty(t, errs)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name        string
		fields      []metadata.FieldSpec
		permissions []deploy.PermissionRequest
		want        string
	}{
		{
			name: "no fields",
			want: "fields: at least one field is required",
		},
		{
			name:   "missing object",
			fields: []metadata.FieldSpec{{Name: "X", Label: "X", Type: metadata.FieldTypeText}},
			want:   "fields[0]: object is required",
		},
		{
			name:   "missing label",
			fields: []metadata.FieldSpec{{Object: "Account", Name: "X", Type: metadata.FieldTypeText}},
			want:   "fields[Account.X__c]: label is required",
		},
		{
			name:   "unknown type",
			fields: []metadata.FieldSpec{{Object: "Account", Name: "X", Label: "X", Type: "Geolocation"}},
			want:   `fields[Account.X__c]: unknown type "Geolocation"`,
		},
		{
			name:   "empty picklist",
			fields: []metadata.FieldSpec{{Object: "Account", Name: "X", Label: "X", Type: metadata.FieldTypeMultiselectPicklist}},
			want:   "picklistValues must not be empty",
		},
		{
			name: "duplicate picklist value",
			fields: []metadata.FieldSpec{{
				Object: "Account", Name: "X", Label: "X", Type: metadata.FieldTypePicklist,
				PicklistValues: []metadata.PicklistValue{{Value: "A"}, {Value: "A"}},
			}},
			want: `duplicate picklist value "A"`,
		},
		{
			name:   "lookup without target",
			fields: []metadata.FieldSpec{{Object: "Contact", Name: "X", Label: "X", Type: metadata.FieldTypeLookup}},
			want:   "referenceTo is required for Lookup fields",
		},
		{
			name:   "negative length",
			fields: []metadata.FieldSpec{{Object: "Account", Name: "X", Label: "X", Type: metadata.FieldTypeText, Length: intPtr(-1)}},
			want:   "length must not be negative",
		},
		{
			name:   "duplicate field",
			fields: []metadata.FieldSpec{validText(), {Object: "Account", Name: "Code__c", Label: "Again", Type: metadata.FieldTypeText}},
			want:   "fields[Account.Code__c]: duplicate field",
		},
		{
			name:        "blank grantee",
			fields:      []metadata.FieldSpec{validText()},
			permissions: []deploy.PermissionRequest{{Grantee: "Sales"}, {Grantee: "  "}},
			want:        "permissions[1]: grantee is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.fields, tt.permissions)
			require.NotEmpty(t, errs)
			found := false
			for _, msg := range messages(errs) {
				if strings.Contains(msg, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "want %q in %v", tt.want, messages(errs))
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	errs := Validate([]metadata.FieldSpec{{}}, []deploy.PermissionRequest{{}})
	// object, name, label, type, grantee
	assert.Len(t, errs, 5)
}

func TestValidationError_NoPath(t *testing.T) {
	assert.Equal(t, "boom", ValidationError{Message: "boom"}.Error())
}
