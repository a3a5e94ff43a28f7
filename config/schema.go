package config

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// presetSchema is the JSON Schema for wrfup.yaml. Unknown keys are
// rejected so typos (e.g. wrf_verison) fail loudly instead of silently
// falling back to a prompt.
const presetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "install_root":    {"type": "string", "minLength": 1},
    "wrf_version":     {"type": "string", "pattern": "^[0-9]+\\.[0-9]+(\\.[0-9]+)?$"},
    "wps_version":     {"type": "string", "pattern": "^[0-9]+\\.[0-9]+(\\.[0-9]+)?$"},
    "variant":         {"type": "string", "enum": ["serial", "smpar", "dmpar", "dmsm"]},
    "nesting":         {"type": "integer", "minimum": 1, "maximum": 3},
    "companion":       {"type": "boolean"},
    "jobs":            {"type": "integer", "minimum": 1},
    "non_interactive": {"type": "boolean"}
  }
}`

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		loader := gojsonschema.NewStringLoader(presetSchema)
		compiledSchema, compileErr = gojsonschema.NewSchema(loader)
	})
	return compiledSchema, compileErr
}

// validateSchema checks raw preset YAML against the schema. It returns
// a slice of validation error descriptions and an error if schema
// compilation or document loading fails.
func validateSchema(yamlData []byte) ([]string, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling preset schema: %w", err)
	}

	// gojsonschema speaks JSON; yaml.v3 produces plain maps and scalars
	// that the Go loader marshals cleanly.
	var doc any
	if err := yaml.Unmarshal(yamlData, &doc); err != nil {
		return nil, fmt.Errorf("parsing preset: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating preset: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
