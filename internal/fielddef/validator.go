package fielddef

import (
	"fmt"
	"strings"

	"fieldkit/internal/deploy"
	"fieldkit/internal/metadata"
)

// ValidationError represents a single validation problem.
type ValidationError struct {
	Path    string // e.g. "fields[Account.Tier__c]" or "permissions[0]"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Validate checks the shape of the fields and permission requests and
// returns every problem found. Remote-side rules (name clashes, type changes
// on existing fields) are left to the Metadata API.
func Validate(fields []metadata.FieldSpec, permissions []deploy.PermissionRequest) []ValidationError {
	var errs []ValidationError

	if len(fields) == 0 {
		addErr(&errs, "fields", "at least one field is required")
	}
	validateFields(fields, &errs)
	validatePermissions(permissions, &errs)
	return errs
}

// ValidateDocument validates a loaded definition file.
func ValidateDocument(doc *Document) []ValidationError {
	return Validate(doc.Fields, doc.Permissions)
}

func addErr(errs *[]ValidationError, path, msg string, args ...any) {
	*errs = append(*errs, ValidationError{
		Path:    path,
		Message: fmt.Sprintf(msg, args...),
	})
}

func validateFields(fields []metadata.FieldSpec, errs *[]ValidationError) {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		path := fmt.Sprintf("fields[%d]", i)
		if f.Object != "" && f.Name != "" {
			path = fmt.Sprintf("fields[%s]", f.FullName())
			if seen[f.FullName()] {
				addErr(errs, path, "duplicate field")
			}
			seen[f.FullName()] = true
		}

		if f.Object == "" {
			addErr(errs, path, "object is required")
		}
		if f.Name == "" {
			addErr(errs, path, "name is required")
		}
		if f.Label == "" {
			addErr(errs, path, "label is required")
		}
		if !f.Type.IsValid() {
			addErr(errs, path, "unknown type %q (expected one of %s)", f.Type, typeList())
			continue
		}

		if f.Type.IsPicklist() {
			validatePicklist(path, f.PicklistValues, errs)
		}
		if f.Type.IsRelationship() && f.ReferenceTo == "" {
			addErr(errs, path, "referenceTo is required for %s fields", f.Type)
		}
		for _, opt := range []struct {
			name  string
			value *int
		}{
			{"length", f.Length},
			{"precision", f.Precision},
			{"scale", f.Scale},
			{"visibleLines", f.VisibleLines},
		} {
			if opt.value != nil && *opt.value < 0 {
				addErr(errs, path, "%s must not be negative", opt.name)
			}
		}
	}
}

func validatePicklist(path string, values []metadata.PicklistValue, errs *[]ValidationError) {
	if len(values) == 0 {
		addErr(errs, path, "picklistValues must not be empty")
		return
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if strings.TrimSpace(v.Value) == "" {
			addErr(errs, path, "picklist value must not be blank")
			continue
		}
		if seen[v.Value] {
			addErr(errs, path, "duplicate picklist value %q", v.Value)
		}
		seen[v.Value] = true
	}
}

func validatePermissions(permissions []deploy.PermissionRequest, errs *[]ValidationError) {
	for i, p := range permissions {
		if strings.TrimSpace(p.Grantee) == "" {
			addErr(errs, fmt.Sprintf("permissions[%d]", i), "grantee is required")
		}
	}
}

func typeList() string {
	names := make([]string, len(metadata.FieldTypes))
	for i, t := range metadata.FieldTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
