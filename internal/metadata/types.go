// Package metadata translates field definitions into Metadata API components.
package metadata

// FieldType is the logical type of a custom field as users write it.
type FieldType string

const (
	FieldTypeText                FieldType = "Text"
	FieldTypeTextArea            FieldType = "TextArea"
	FieldTypeLongTextArea        FieldType = "LongTextArea"
	FieldTypeRichTextArea        FieldType = "RichTextArea"
	FieldTypeNumber              FieldType = "Number"
	FieldTypeCurrency            FieldType = "Currency"
	FieldTypePercent             FieldType = "Percent"
	FieldTypeCheckbox            FieldType = "Checkbox"
	FieldTypeDate                FieldType = "Date"
	FieldTypeDateTime            FieldType = "DateTime"
	FieldTypeEmail               FieldType = "Email"
	FieldTypePhone               FieldType = "Phone"
	FieldTypeURL                 FieldType = "Url"
	FieldTypePicklist            FieldType = "Picklist"
	FieldTypeMultiselectPicklist FieldType = "MultiselectPicklist"
	FieldTypeLookup              FieldType = "Lookup"
	FieldTypeMasterDetail        FieldType = "MasterDetail"
)

// FieldTypes lists every supported logical type in catalogue order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextArea,
	FieldTypeLongTextArea,
	FieldTypeRichTextArea,
	FieldTypeNumber,
	FieldTypeCurrency,
	FieldTypePercent,
	FieldTypeCheckbox,
	FieldTypeDate,
	FieldTypeDateTime,
	FieldTypeEmail,
	FieldTypePhone,
	FieldTypeURL,
	FieldTypePicklist,
	FieldTypeMultiselectPicklist,
	FieldTypeLookup,
	FieldTypeMasterDetail,
}

// remoteTypes holds the entries whose remote schema name differs from the
// logical one. Everything else maps to itself.
var remoteTypes = map[FieldType]string{
	FieldTypeRichTextArea: "Html",
}

// RemoteType returns the Metadata API type name for t. Unknown types pass
// through unchanged.
func RemoteType(t FieldType) string {
	if r, ok := remoteTypes[t]; ok {
		return r
	}
	return string(t)
}

// IsValid reports whether t is one of the supported logical types.
func (t FieldType) IsValid() bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// IsRelationship reports whether t needs a referenceTo target.
func (t FieldType) IsRelationship() bool {
	return t == FieldTypeLookup || t == FieldTypeMasterDetail
}

// IsPicklist reports whether t carries a value set.
func (t FieldType) IsPicklist() bool {
	return t == FieldTypePicklist || t == FieldTypeMultiselectPicklist
}

// Options returns the FieldSpec options the builder consults for t, in the
// order they appear in the built component.
func (t FieldType) Options() []string {
	switch t {
	case FieldTypeText, FieldTypeTextArea:
		return []string{"length"}
	case FieldTypeNumber, FieldTypeCurrency, FieldTypePercent:
		return []string{"precision", "scale"}
	case FieldTypeLongTextArea, FieldTypeRichTextArea:
		return []string{"length", "visibleLines"}
	case FieldTypePicklist:
		return []string{"picklistValues"}
	case FieldTypeMultiselectPicklist:
		return []string{"picklistValues", "visibleLines"}
	case FieldTypeLookup:
		return []string{"referenceTo", "relationshipName", "relationshipLabel", "deleteConstraint"}
	case FieldTypeMasterDetail:
		return []string{"referenceTo", "relationshipName", "relationshipLabel"}
	default:
		return nil
	}
}
