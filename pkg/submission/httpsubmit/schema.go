package httpsubmit

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// PayloadSchemaName is the component describing the request body.
const PayloadSchemaName = "RegistrationPayload"

// Document returns the raw OpenAPI document describing the wire format.
func Document() []byte {
	return append([]byte(nil), openAPIDocument...)
}

// loadPayloadSchema parses the embedded document and returns the request body
// schema.
func loadPayloadSchema(ctx context.Context) (*openapi3.Schema, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("httpsubmit: load openapi document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("httpsubmit: validate openapi document: %w", err)
	}
	if doc.Components == nil {
		return nil, errors.New("httpsubmit: openapi document has no components")
	}
	ref := doc.Components.Schemas[PayloadSchemaName]
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("httpsubmit: schema %s not found", PayloadSchemaName)
	}
	return ref.Value, nil
}

// conform checks an encoded body against the payload schema.
func conform(schema *openapi3.Schema, body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("httpsubmit: decode payload: %w", err)
	}
	return schema.VisitJSON(value)
}
