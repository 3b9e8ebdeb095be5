package util

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError lists the schema violations of one argument set.
type ValidationError struct {
	Violations []string `json:"violations"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}

// CompileSchema compiles a JSON schema given as a Go map. A nil schema
// compiles to nil, which accepts everything.
func CompileSchema(schema map[string]any) (*gojsonschema.Schema, error) {
	if schema == nil {
		return nil, nil
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
}

// ValidateParameters validates params against a compiled schema.
func ValidateParameters(schema *gojsonschema.Schema, params map[string]any) error {
	if schema == nil {
		return nil
	}
	if params == nil {
		params = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(params))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, re.String())
	}
	return &ValidationError{Violations: violations}
}

// CreateSchema creates a JSON schema from a Go struct using reflection.
// Field names follow json tags, descriptions come from the description tag
// and fields without omitempty that are not pointers are required.
func CreateSchema(structType any) map[string]any {
	t := reflect.TypeOf(structType)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	properties := make(map[string]any)
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(jsonTag, ",")
		if name == "" {
			name = field.Name
		}

		prop := map[string]any{"type": jsonType(field.Type)}
		if description := field.Tag.Get("description"); description != "" {
			prop["description"] = description
		}
		properties[name] = prop

		if !strings.Contains(opts, "omitempty") && field.Type.Kind() != reflect.Ptr {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonType(t.Elem())
	default:
		return "string"
	}
}
