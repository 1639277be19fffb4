// Package schema provides JSON schema generation for the documents the host
// validates: chain specifications and host configuration files.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/lantern-dev/lanternhost/domain/entities"
)

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// ChainSpecSchema returns the JSON Schema describing the host-side shape of a
// chain specification document. Engines may accept more fields; this schema
// covers only what the host itself validates.
func ChainSpecSchema() ([]byte, error) {
	return GenerateSchema(&entities.ChainSpec{})
}
