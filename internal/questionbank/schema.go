package questionbank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://question-bank.json"

// bankSchema describes one role file.
const bankSchema = `{
  "type": "object",
  "required": ["levels"],
  "properties": {
    "domain": {"type": "string"},
    "levels": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "array",
        "items": {"$ref": "#/$defs/question"}
      }
    }
  },
  "$defs": {
    "stringList": {"type": "array", "items": {"type": "string"}},
    "question": {
      "type": "object",
      "required": ["id", "question"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "question": {"type": "string", "minLength": 1},
        "tags": {"$ref": "#/$defs/stringList"},
        "keywords": {"$ref": "#/$defs/stringList"},
        "difficulty": {"type": "number"},
        "weight": {"type": "number", "minimum": 0},
        "followup_ids": {"$ref": "#/$defs/stringList"},
        "followup_for": {"$ref": "#/$defs/stringList"},
        "competency": {"type": "string"},
        "example_answer": {"type": "string"}
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func bankValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(bankSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks a decoded bank file against the schema. The value
// is normalized through JSON so YAML scalars compare like JSON ones.
func validateDocument(v any) error {
	schema, err := bankValidator()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
