// Package fielddef loads and validates field deployment definition files.
package fielddef

import (
	"fieldkit/internal/deploy"
	"fieldkit/internal/metadata"
)

// SupportedAPIVersion is the only apiVersion accepted in definition files.
const SupportedAPIVersion = "fieldkit/v1"

// KindFieldDeployment is the document kind of a definition file.
const KindFieldDeployment = "FieldDeployment"

// Document is a definition file: the fields to create and the grantees that
// receive access to them.
type Document struct {
	APIVersion  string                     `yaml:"apiVersion" json:"apiVersion"`
	Kind        string                     `yaml:"kind" json:"kind"`
	Fields      []metadata.FieldSpec       `yaml:"fields" json:"fields"`
	Permissions []deploy.PermissionRequest `yaml:"permissions,omitempty" json:"permissions,omitempty"`
}
