package api

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request body schema names.
const (
	SchemaCreateQuestion  = "create_question"
	SchemaSearchQuestions = "search_questions"
	SchemaPlayQuiz        = "play_quiz"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaError reports the first rule a request body broke.
type SchemaError struct {
	Field   string
	Missing bool
	Details []string
}

func (e *SchemaError) Error() string {
	return "request body failed schema validation: " + strings.Join(e.Details, "; ")
}

// SchemaValidator holds the compiled request body schemas.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaValidator compiles every embedded schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	names := []string{SchemaCreateQuestion, SchemaSearchQuestions, SchemaPlayQuiz}
	sv := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema, len(names))}
	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		sv.schemas[name] = schema
	}
	return sv, nil
}

// Validate checks a raw JSON document against the named schema.
func (sv *SchemaValidator) Validate(name string, body []byte) error {
	schema, ok := sv.schemas[name]
	if !ok {
		return fmt.Errorf("schema %s not found", name)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	schemaErr := &SchemaError{Details: make([]string, 0, len(errs))}
	for _, re := range errs {
		schemaErr.Details = append(schemaErr.Details, re.String())
	}
	schemaErr.Field, schemaErr.Missing = fieldOf(errs[0])
	return schemaErr
}

func fieldOf(re gojsonschema.ResultError) (string, bool) {
	if re.Type() == "required" {
		prop, _ := re.Details()["property"].(string)
		if parent := re.Field(); parent != "(root)" {
			return parent + "." + prop, true
		}
		return prop, true
	}
	if re.Field() == "(root)" {
		return "", false
	}
	return re.Field(), false
}
