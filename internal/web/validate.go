package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaBaseURL = "https://taskboard.local/schemas/"
	maxBodyBytes  = 1 << 20
)

type schemas struct {
	user    *jsonschema.Schema
	login   *jsonschema.Schema
	section *jsonschema.Schema
	task    *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	compile := func(name string) (*jsonschema.Schema, error) {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		url := schemaBaseURL + name
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		return schema, nil
	}

	var (
		result schemas
		err    error
	)
	if result.user, err = compile("user.json"); err != nil {
		return nil, err
	}
	if result.login, err = compile("login.json"); err != nil {
		return nil, err
	}
	if result.section, err = compile("section.json"); err != nil {
		return nil, err
	}
	if result.task, err = compile("task.json"); err != nil {
		return nil, err
	}
	return &result, nil
}

// bind validates the request body against schema as a whole, then decodes it
// into dst. Nothing reaches the store unless both succeed.
func bind(c echo.Context, schema *jsonschema.Schema, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return internalError(err)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return &validationError{Fields: []FieldError{{Field: "body", Message: "request body must be a JSON object"}}}
	}

	if err := schema.Validate(document); err != nil {
		return schemaValidationError(err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &validationError{Fields: []FieldError{{Field: "body", Message: err.Error()}}}
	}
	return nil
}

func schemaValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &validationError{Fields: []FieldError{{Field: "body", Message: err.Error()}}}
	}

	var fields []FieldError
	collectFieldErrors(ve, &fields)
	if len(fields) == 0 {
		fields = append(fields, FieldError{Field: "body", Message: ve.Message})
	}
	return &validationError{Fields: fields}
}

// collectFieldErrors walks to the leaf causes, one entry per failing keyword.
// The alternatives of a oneOf collapse into their parent.
func collectFieldErrors(ve *jsonschema.ValidationError, fields *[]FieldError) {
	if len(ve.Causes) == 0 || strings.HasSuffix(ve.KeywordLocation, "/oneOf") {
		*fields = append(*fields, FieldError{Field: fieldName(ve.InstanceLocation), Message: ve.Message})
		return
	}
	for _, cause := range ve.Causes {
		collectFieldErrors(cause, fields)
	}
}

func fieldName(pointer string) string {
	name := strings.TrimPrefix(pointer, "/")
	if name == "" {
		return "body"
	}
	return strings.ReplaceAll(strings.ReplaceAll(name, "~1", "/"), "~0", "~")
}

// numericID accepts a JSON integer or a string of digits.
type numericID int64

func (n *numericID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric id %s", data)
	}
	*n = numericID(value)
	return nil
}
