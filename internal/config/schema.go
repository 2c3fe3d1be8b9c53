package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id of the intrinsics.yaml schema.
const SchemaID = "https://github.com/blacktop/intrinsics/intrinsics.schema.json"

// Schema returns the indented JSON schema of the configuration file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
	}
	schema := r.Reflect(&Config{})
	schema.ID = SchemaID
	schema.Title = "intrinsics.yaml"
	schema.Description = "intrinsics configuration definition file"
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("config: failed to marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
