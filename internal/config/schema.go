package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema describing config.toml.
func Schema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(&Config{})

	schema.ID = "https://github.com/bnema/retain/config.schema.json"
	schema.Title = "retain configuration"
	schema.Description = "Configuration schema for retain, a toolkit of memory-bounded caches and reference maps"
	return schema
}

// MarshalSchema renders Schema as indented JSON.
func MarshalSchema() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// WriteSchemaFile writes the schema next to the config file in dir.
func WriteSchemaFile(dir string) (string, error) {
	data, err := MarshalSchema()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write schema file: %w", err)
	}
	return path, nil
}
