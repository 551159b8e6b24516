package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// listSchema describes the stored value. id is optional so lists written
// before ids existed still load. content bounds match model.MaxContentLen.
const listSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["content", "isDone", "timestamp"],
		"properties": {
			"id":        {"type": "string"},
			"content":   {"type": "string", "minLength": 1, "maxLength": 255},
			"isDone":    {"type": "boolean"},
			"timestamp": {"type": "integer"}
		}
	}
}`

var compiledList = jsonschema.MustCompileString("todolist.schema.json", listSchema)

// validateList checks b against listSchema.
func validateList(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	if err := compiledList.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
