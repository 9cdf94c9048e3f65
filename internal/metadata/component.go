package metadata

import "strings"

// Kind is the Metadata API type tag sent as xsi:type.
type Kind string

const (
	KindCustomField   Kind = "CustomField"
	KindPermissionSet Kind = "PermissionSet"
	KindProfile       Kind = "Profile"
)

// CustomFieldSuffix marks custom fields in fully-qualified names.
const CustomFieldSuffix = "__c"

// Component is a metadata item that can be submitted to the Metadata API.
type Component interface {
	ComponentName() string
}

// FieldSpec describes one custom field to create. Only the options relevant
// to Type are read by BuildField.
type FieldSpec struct {
	Object      string    `yaml:"object" json:"object"`
	Name        string    `yaml:"name" json:"name"`
	Label       string    `yaml:"label" json:"label"`
	Type        FieldType `yaml:"type" json:"type"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	HelpText    string    `yaml:"helpText,omitempty" json:"helpText,omitempty"`
	Required    bool      `yaml:"required,omitempty" json:"required,omitempty"`
	Unique      bool      `yaml:"unique,omitempty" json:"unique,omitempty"`
	ExternalID  bool      `yaml:"externalId,omitempty" json:"externalId,omitempty"`

	Length            *int            `yaml:"length,omitempty" json:"length,omitempty"`
	Precision         *int            `yaml:"precision,omitempty" json:"precision,omitempty"`
	Scale             *int            `yaml:"scale,omitempty" json:"scale,omitempty"`
	VisibleLines      *int            `yaml:"visibleLines,omitempty" json:"visibleLines,omitempty"`
	PicklistValues    []PicklistValue `yaml:"picklistValues,omitempty" json:"picklistValues,omitempty"`
	ReferenceTo       string          `yaml:"referenceTo,omitempty" json:"referenceTo,omitempty"`
	RelationshipName  string          `yaml:"relationshipName,omitempty" json:"relationshipName,omitempty"`
	RelationshipLabel string          `yaml:"relationshipLabel,omitempty" json:"relationshipLabel,omitempty"`
	DeleteConstraint  string          `yaml:"deleteConstraint,omitempty" json:"deleteConstraint,omitempty"`
}

// FullName returns the fully-qualified field name, e.g. "Account.Tier__c".
func (s FieldSpec) FullName() string {
	return FullName(s.Object, s.Name)
}

// PicklistValue is one entry of a picklist's value set.
type PicklistValue struct {
	Value     string `yaml:"value" json:"value"`
	IsDefault bool   `yaml:"default,omitempty" json:"default,omitempty"`
}

// FullName joins object and field, appending the custom suffix when the
// field name does not already carry it.
func FullName(object, field string) string {
	if !strings.HasSuffix(field, CustomFieldSuffix) {
		field += CustomFieldSuffix
	}
	return object + "." + field
}

// CustomField is the CustomField metadata component. Optional attributes are
// pointers or omitempty strings so absent values are never serialized.
// Elements follow the WSDL order.
type CustomField struct {
	FullName          string    `xml:"fullName" json:"fullName"`
	DeleteConstraint  string    `xml:"deleteConstraint,omitempty" json:"deleteConstraint,omitempty"`
	Description       string    `xml:"description,omitempty" json:"description,omitempty"`
	ExternalID        bool      `xml:"externalId" json:"externalId"`
	InlineHelpText    string    `xml:"inlineHelpText,omitempty" json:"inlineHelpText,omitempty"`
	Label             string    `xml:"label" json:"label"`
	Length            *int      `xml:"length,omitempty" json:"length,omitempty"`
	Precision         *int      `xml:"precision,omitempty" json:"precision,omitempty"`
	ReferenceTo       string    `xml:"referenceTo,omitempty" json:"referenceTo,omitempty"`
	RelationshipLabel string    `xml:"relationshipLabel,omitempty" json:"relationshipLabel,omitempty"`
	RelationshipName  string    `xml:"relationshipName,omitempty" json:"relationshipName,omitempty"`
	Required          bool      `xml:"required" json:"required"`
	Scale             *int      `xml:"scale,omitempty" json:"scale,omitempty"`
	Type              string    `xml:"type" json:"type"`
	Unique            bool      `xml:"unique" json:"unique"`
	ValueSet          *ValueSet `xml:"valueSet,omitempty" json:"valueSet,omitempty"`
	VisibleLines      *int      `xml:"visibleLines,omitempty" json:"visibleLines,omitempty"`
}

// ComponentName implements Component.
func (f *CustomField) ComponentName() string { return f.FullName }

// ValueSet is a picklist value set.
type ValueSet struct {
	Restricted         bool               `xml:"restricted" json:"restricted"`
	ValueSetDefinition ValueSetDefinition `xml:"valueSetDefinition" json:"valueSetDefinition"`
}

// ValueSetDefinition holds the ordered picklist values.
type ValueSetDefinition struct {
	Sorted bool          `xml:"sorted" json:"sorted"`
	Value  []CustomValue `xml:"value" json:"value"`
}

// CustomValue is a single picklist entry.
type CustomValue struct {
	FullName string `xml:"fullName" json:"fullName"`
	Default  bool   `xml:"default" json:"default"`
	Label    string `xml:"label" json:"label"`
}

// FieldPermission grants read/edit access on one field.
type FieldPermission struct {
	Editable bool   `xml:"editable" json:"editable"`
	Field    string `xml:"field" json:"field"`
	Readable bool   `xml:"readable" json:"readable"`
}

// PermissionGrant is the partial PermissionSet or Profile sent to update.
// The same shape is valid for both kinds.
type PermissionGrant struct {
	FullName         string            `xml:"fullName" json:"fullName"`
	FieldPermissions []FieldPermission `xml:"fieldPermissions" json:"fieldPermissions"`
}

// ComponentName implements Component.
func (g *PermissionGrant) ComponentName() string { return g.FullName }

// SaveResult is the per-item outcome of a create or update call.
type SaveResult struct {
	FullName string      `xml:"fullName" json:"fullName"`
	Success  bool        `xml:"success" json:"success"`
	Errors   []SaveError `xml:"errors" json:"errors,omitempty"`
}

// SaveError is one error reported for a SaveResult.
type SaveError struct {
	Message    string   `xml:"message" json:"message"`
	StatusCode string   `xml:"statusCode" json:"statusCode,omitempty"`
	Fields     []string `xml:"fields" json:"fields,omitempty"`
}

// ErrorMessage joins all error messages of r with ", ".
func (r SaveResult) ErrorMessage() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, ", ")
}
