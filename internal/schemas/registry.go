// Package schemas is the built-in node config schema registry. Each node
// type carries a JSON Schema compiled once at startup; the validator surfaces
// one violation per violated field.
package schemas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/insightloop/insightloop/pkg/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const startSchema = `{
	"type": "object",
	"additionalProperties": true
}`

const endSchema = `{
	"type": "object",
	"additionalProperties": true
}`

const decisionSchema = `{
	"type": "object",
	"properties": {
		"condition": {"type": "string", "minLength": 1}
	},
	"required": ["condition"]
}`

const personaGenerationSchema = `{
	"type": "object",
	"properties": {
		"count": {"type": "integer", "minimum": 1, "maximum": 100},
		"prompt": {"type": "string"}
	}
}`

const focusGroupSchema = `{
	"type": "object",
	"properties": {
		"persona_ids": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"topic": {"type": "string"}
	}
}`

const surveyCreationSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"question_count": {"type": "integer", "minimum": 1}
	}
}`

const pdfExportSchema = `{
	"type": "object",
	"properties": {
		"template": {"type": "string"}
	}
}`

const resultsAnalysisSchema = `{
	"type": "object",
	"properties": {
		"metrics": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`

var schemaSources = map[domain.NodeType]string{
	domain.NodeTypeStart:             startSchema,
	domain.NodeTypeEnd:               endSchema,
	domain.NodeTypeDecision:          decisionSchema,
	domain.NodeTypePersonaGeneration: personaGenerationSchema,
	domain.NodeTypeFocusGroup:        focusGroupSchema,
	domain.NodeTypeSurveyCreation:    surveyCreationSchema,
	domain.NodeTypePDFExport:         pdfExportSchema,
	domain.NodeTypeResultsAnalysis:   resultsAnalysisSchema,
}

type Registry struct {
	validators map[domain.NodeType]domain.SchemaValidator
}

func NewRegistry() (*Registry, error) {
	validators := make(map[domain.NodeType]domain.SchemaValidator, len(schemaSources))

	for nodeType, source := range schemaSources {
		schema, err := jsonschema.CompileString(fmt.Sprintf("%s.json", nodeType), source)
		if err != nil {
			return nil, fmt.Errorf("compiling schema for %s: %w", nodeType, err)
		}

		validators[nodeType] = &schemaValidator{schema: schema}
	}

	return &Registry{validators: validators}, nil
}

func (r *Registry) SchemaFor(nodeType domain.NodeType) (domain.SchemaValidator, bool) {
	validator, ok := r.validators[nodeType]
	return validator, ok
}

type schemaValidator struct {
	schema *jsonschema.Schema
}

func (v *schemaValidator) ValidateConfig(config map[string]any) []domain.SchemaViolation {
	instance := map[string]any{}
	for key, value := range config {
		instance[key] = value
	}

	err := v.schema.Validate(instance)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []domain.SchemaViolation{{Field: "config", Message: err.Error()}}
	}

	return flatten(validationErr)
}

// flatten walks the cause tree and keeps only leaves, which carry the
// field-level messages.
func flatten(err *jsonschema.ValidationError) []domain.SchemaViolation {
	if len(err.Causes) == 0 {
		return []domain.SchemaViolation{{
			Field:   fieldFromLocation(err.InstanceLocation),
			Message: err.Message,
		}}
	}

	violations := []domain.SchemaViolation{}
	for _, cause := range err.Causes {
		violations = append(violations, flatten(cause)...)
	}

	return violations
}

func fieldFromLocation(location string) string {
	trimmed := strings.TrimPrefix(location, "/")
	if trimmed == "" {
		return "config"
	}

	return strings.ReplaceAll(trimmed, "/", ".")
}
