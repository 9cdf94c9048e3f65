package fielddef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a definition file. JSON files load too since YAML is a
// superset of JSON.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes a definition document. path is used in error messages only.
// Unknown keys are rejected.
func Parse(path string, data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: empty document", path)
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := validateDocument(path, doc.APIVersion, doc.Kind); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validateDocument checks the apiVersion and kind fields.
func validateDocument(path, apiVersion, kind string) error {
	if apiVersion != SupportedAPIVersion {
		return fmt.Errorf("%s: unsupported apiVersion %q (expected %q)", path, apiVersion, SupportedAPIVersion)
	}
	if kind != KindFieldDeployment {
		return fmt.Errorf("%s: unexpected kind %q (expected %q)", path, kind, KindFieldDeployment)
	}
	return nil
}
