// Package schema validates decoded JSON results against JSON Schema
// documents, either directly or as an after hook in the response pipeline.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// Schema is a compiled JSON Schema ready for repeated validation.
type Schema struct {
	compiled *gojsonschema.Schema
}

// Compile compiles a JSON Schema from its raw bytes.
func Compile(data []byte) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// CompileFile compiles a JSON Schema read from path.
func CompileFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Compile(data)
}

// Validate checks doc against the schema. All field errors are aggregated
// into a single error.
func (s *Schema) Validate(doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	descriptions := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		descriptions = append(descriptions, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(descriptions, "; "))
}

// AfterHook returns an after hook that validates decoded JSON results.
// Responses that carry no decoded body pass through untouched.
func (s *Schema) AfterHook() fetch.AfterHook {
	return func(ctx context.Context, resp *fetch.Response, body any) (any, error) {
		if body == nil {
			return body, nil
		}
		if err := s.Validate(body); err != nil {
			return nil, err
		}
		return body, nil
	}
}
