// Package deploy creates custom fields in one batch and grants field-level
// security on the fields that were created.
package deploy

import (
	"context"

	"fieldkit/internal/metadata"
)

// Connection is a session against the remote Metadata API.
type Connection interface {
	Create(ctx context.Context, kind metadata.Kind, items []metadata.Component) ([]metadata.SaveResult, error)
	Update(ctx context.Context, kind metadata.Kind, item metadata.Component) ([]metadata.SaveResult, error)
}

// Resolver maps a user-supplied org alias to a Connection. workDir scopes
// project-local configuration.
type Resolver interface {
	Resolve(ctx context.Context, alias, workDir string) (Connection, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, alias, workDir string) (Connection, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, alias, workDir string) (Connection, error) {
	return f(ctx, alias, workDir)
}

// PermissionRequest grants the same access on every created field to one
// grantee. The grantee may name a permission set or a profile.
type PermissionRequest struct {
	Grantee  string `yaml:"grantee" json:"grantee"`
	Readable bool   `yaml:"readable" json:"readable"`
	Editable bool   `yaml:"editable" json:"editable"`
}

// Markers prefixing report lines.
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
)

// GrantOutcome records how one grantee was processed.
type GrantOutcome struct {
	Grantee string        `json:"grantee"`
	Kind    metadata.Kind `json:"kind,omitempty"` // resolved kind on success
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"` // joined errors on failure
}

// Line renders the outcome as a single report line.
func (o GrantOutcome) Line() string {
	if o.Success {
		return SuccessMarker + " " + o.Grantee + ": field permissions granted via " + kindLabel(o.Kind)
	}
	return FailureMarker + " " + o.Grantee + ": " + o.Message
}

func kindLabel(k metadata.Kind) string {
	switch k {
	case metadata.KindPermissionSet:
		return "Permission Set"
	case metadata.KindProfile:
		return "Profile"
	default:
		return string(k)
	}
}
