package httpadapter

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var openAPISpec []byte

// requestValidator checks JSON request bodies of documented operations
// against the embedded OpenAPI document.
type requestValidator struct {
	doc *openapi3.T
}

func newRequestValidator() (*requestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return &requestValidator{doc: doc}, nil
}

// route resolves the operation for a request matched by the mux; the mux
// pattern uses the same {param} templates as the document.
func (v *requestValidator) route(r *http.Request) (*routers.Route, map[string]string, bool) {
	_, path, found := strings.Cut(r.Pattern, " ")
	if !found {
		path = r.Pattern
	}
	pathItem := v.doc.Paths.Value(path)
	if pathItem == nil {
		return nil, nil, false
	}
	operation := pathItem.GetOperation(r.Method)
	if operation == nil {
		return nil, nil, false
	}

	params := make(map[string]string)
	for _, declared := range []openapi3.Parameters{pathItem.Parameters, operation.Parameters} {
		for _, ref := range declared {
			if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInPath {
				continue
			}
			params[ref.Value.Name] = r.PathValue(ref.Value.Name)
		}
	}

	return &routers.Route{
		Spec:      v.doc,
		Path:      path,
		PathItem:  pathItem,
		Method:    r.Method,
		Operation: operation,
	}, params, true
}

func (v *requestValidator) validate(r *http.Request) error {
	route, params, ok := v.route(r)
	if !ok {
		return nil
	}
	return openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	})
}

// validationMessage keeps the first line of a kin-openapi error, which names
// the failing field without the full schema dump.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			field := strings.Join(schemaErr.JSONPointer(), ".")
			if field != "" {
				return fmt.Sprintf("invalid request: %s: %s", field, schemaErr.Reason)
			}
			return "invalid request: " + schemaErr.Reason
		}
		if reqErr.Reason != "" {
			return "invalid request: " + reqErr.Reason
		}
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return "invalid request: " + msg
}
