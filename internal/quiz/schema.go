package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const questionSchemaURL = "schema://anatomy/question.json"

// questionSchema describes one bank record. Type-specific requirements are
// expressed with if/then so the structural check happens before decoding.
const questionSchema = `{
  "type": "object",
  "required": ["id", "question", "category"],
  "properties": {
    "id": {
      "anyOf": [
        {"type": "string", "minLength": 1},
        {"type": "integer"}
      ]
    },
    "type": {"enum": ["free_response", "multiple_choice", "matching", "identification"]},
    "question": {"type": "string", "minLength": 1},
    "category": {"enum": ["lymphatic", "respiratory", "digestive"]},
    "answer": {"type": "string"},
    "options": {
      "type": "array",
      "minItems": 2,
      "items": {"type": "string"}
    },
    "pairs": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["item", "match"],
        "properties": {
          "item": {"type": "string", "minLength": 1},
          "match": {"type": "string", "minLength": 1}
        }
      }
    },
    "image_path": {"type": "string", "minLength": 1}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "free_response"}}},
      "then": {"required": ["answer"]}
    },
    {
      "if": {"properties": {"type": {"const": "multiple_choice"}}, "required": ["type"]},
      "then": {"required": ["options", "answer"]}
    },
    {
      "if": {"properties": {"type": {"const": "matching"}}, "required": ["type"]},
      "then": {"required": ["pairs"]}
    },
    {
      "if": {"properties": {"type": {"const": "identification"}}, "required": ["type"]},
      "then": {"required": ["image_path", "answer"]}
    }
  ]
}`

var (
	compiledSchemaOnce sync.Once
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
)

func questionValidator() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(questionSchema))
		if err != nil {
			compiledSchemaErr = fmt.Errorf("parse question schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(questionSchemaURL, doc); err != nil {
			compiledSchemaErr = fmt.Errorf("add question schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(questionSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// validateRecord checks a raw record against the question schema.
func validateRecord(raw json.RawMessage) error {
	schema, err := questionValidator()
	if err != nil {
		return err
	}
	// UnmarshalJSON keeps numbers as json.Number so integer ids type-check.
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
