package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

const contentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "source": {"type": "string"},
    "pages": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "form_fields": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "label": {"type": "string"},
          "value": {"type": "string"}
        },
        "required": ["label", "value"]
      }
    },
    "table": {
      "type": "array",
      "items": {"type": "array", "items": {"type": "string"}}
    }
  },
  "additionalProperties": false
}`

var contentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("content.json", bytes.NewReader([]byte(contentSchemaJSON))); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("content.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// ContentSchema returns the JSON schema pre-extracted content must match
func ContentSchema() string {
	return contentSchemaJSON
}

// DecodeContent validates a pre-extracted payload and turns it into an
// Extraction. source names the payload when it carries no source itself.
func DecodeContent(data []byte, source string) (audit.Extraction, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return audit.Extraction{Source: source}, ErrEmptyFile
	}

	schema, err := contentSchema()
	if err != nil {
		return audit.Extraction{Source: source}, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return audit.Extraction{Source: source}, fmt.Errorf("unmarshal content: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return audit.Extraction{Source: source}, fmt.Errorf("content does not match schema: %w", err)
	}

	var x audit.Extraction
	if err := json.Unmarshal(data, &x); err != nil {
		return audit.Extraction{Source: source}, fmt.Errorf("decode content: %w", err)
	}
	if strings.TrimSpace(x.Source) == "" {
		x.Source = source
	}
	return x, nil
}
