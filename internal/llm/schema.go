package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema used to check model output before it
// is decoded
type Schema struct {
	schema *gojsonschema.Schema
}

// MustCompileSchema compiles a schema literal and panics if it is invalid.
// Intended for package-level schema variables.
func MustCompileSchema(src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("llm: invalid schema: %v", err))
	}
	return &Schema{schema: s}
}

// Validate checks a JSON document against the schema. Violations are
// reported as ErrMalformedResponse.
func (s *Schema) Validate(doc string) error {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, field+": "+desc.Description())
	}
	return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(problems, "; "))
}

// DecodeObject cleans a model response, validates it against schema when
// one is given, and unmarshals the JSON object into v
func DecodeObject(response string, schema *Schema, v any) error {
	return decode(response, ExtractJSONObject, schema, v)
}

// DecodeArray is DecodeObject for responses whose top level is an array
func DecodeArray(response string, schema *Schema, v any) error {
	return decode(response, ExtractJSONArray, schema, v)
}

func decode(response string, extract func(string) string, schema *Schema, v any) error {
	doc := CleanJSONBlock(response)
	if !json.Valid([]byte(doc)) {
		doc = extract(response)
	}
	if doc == "" {
		return fmt.Errorf("%w: no JSON found in response", ErrMalformedResponse)
	}

	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			return err
		}
	}

	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
