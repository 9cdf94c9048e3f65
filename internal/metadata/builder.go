package metadata

import "strings"

// Defaults applied by BuildField when an option is not given.
const (
	DefaultTextLength          = 255
	DefaultNumberPrecision     = 18
	DefaultNumberScale         = 2
	DefaultLongTextLength      = 32768
	DefaultLongTextLines       = 6
	DefaultMultiselectLines    = 4
	DefaultDeleteConstraint    = "SetNull"
	relationshipPluralSuffix   = "s"
	restrictedPicklistValueSet = true
)

// BuildField translates spec into a CustomField component. FullName is left
// empty; the caller qualifies it. BuildField performs no I/O.
func BuildField(spec FieldSpec) *CustomField {
	f := &CustomField{
		Label:          spec.Label,
		Type:           RemoteType(spec.Type),
		Required:       spec.Required,
		Unique:         spec.Unique,
		ExternalID:     spec.ExternalID,
		Description:    spec.Description,
		InlineHelpText: spec.HelpText,
	}

	switch spec.Type {
	case FieldTypeText, FieldTypeTextArea:
		f.Length = intOr(spec.Length, DefaultTextLength)

	case FieldTypeNumber, FieldTypeCurrency, FieldTypePercent:
		f.Precision = intOr(spec.Precision, DefaultNumberPrecision)
		f.Scale = intOr(spec.Scale, DefaultNumberScale)

	case FieldTypeLongTextArea, FieldTypeRichTextArea:
		f.Length = intOr(spec.Length, DefaultLongTextLength)
		f.VisibleLines = intOr(spec.VisibleLines, DefaultLongTextLines)

	case FieldTypePicklist:
		f.ValueSet = buildValueSet(spec.PicklistValues)

	case FieldTypeMultiselectPicklist:
		f.ValueSet = buildValueSet(spec.PicklistValues)
		f.VisibleLines = intOr(spec.VisibleLines, DefaultMultiselectLines)

	case FieldTypeLookup:
		applyRelationship(f, spec)
		f.DeleteConstraint = stringOr(spec.DeleteConstraint, DefaultDeleteConstraint)

	case FieldTypeMasterDetail:
		applyRelationship(f, spec)
	}

	return f
}

func applyRelationship(f *CustomField, spec FieldSpec) {
	f.ReferenceTo = spec.ReferenceTo
	f.RelationshipName = stringOr(spec.RelationshipName, strings.TrimSuffix(spec.Name, CustomFieldSuffix)+relationshipPluralSuffix)
	f.RelationshipLabel = stringOr(spec.RelationshipLabel, spec.Label+relationshipPluralSuffix)
}

// buildValueSet returns nil for an empty list so no valueSet element is sent.
func buildValueSet(values []PicklistValue) *ValueSet {
	if len(values) == 0 {
		return nil
	}
	entries := make([]CustomValue, 0, len(values))
	for _, v := range values {
		entries = append(entries, CustomValue{
			FullName: v.Value,
			Label:    v.Value,
			Default:  v.IsDefault,
		})
	}
	return &ValueSet{
		Restricted: restrictedPicklistValueSet,
		ValueSetDefinition: ValueSetDefinition{
			Sorted: false,
			Value:  entries,
		},
	}
}

func intOr(v *int, def int) *int {
	if v != nil {
		n := *v
		return &n
	}
	return &def
}

func stringOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
