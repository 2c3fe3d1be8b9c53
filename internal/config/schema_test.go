package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var schema struct {
		ID         string                     `json:"$id"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, SchemaID, schema.ID)
	for _, key := range []string{"ruby", "ruby_source", "output", "symbols", "scan", "patch", "wrap", "artifacts"} {
		assert.Contains(t, schema.Properties, key)
	}

	var wrap struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(schema.Properties["wrap"], &wrap))
	assert.Contains(t, wrap.Properties, "allow_arity_mismatch")
}
