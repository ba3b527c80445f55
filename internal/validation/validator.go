// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// gridIDPattern accepts the ids used by grid feature files: letters, digits,
// dash, underscore and dot.
var gridIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// FieldError is one failed rule. Field is the json, query or koanf name of
// the field, so messages match what the caller typed.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

// RequestValidationError collects every failed rule of one value.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the failed rules in field order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, fe := range ve.errors {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// APIError mirrors the API error body to avoid an import cycle with the api
// package.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

const codeValidation = "VALIDATION_ERROR"

// ToAPIError converts validation errors to a VALIDATION_ERROR body. A single
// error reports its field, tag and value; several are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.errors) {
	case 0:
		return &APIError{Code: codeValidation, Message: "Validation failed"}
	case 1:
		fe := ve.errors[0]
		return &APIError{
			Code:    codeValidation,
			Message: fe.Message,
			Details: map[string]interface{}{"field": fe.Field, "tag": fe.Tag, "value": fe.Value},
		}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	messages := make([]string, len(ve.errors))
	for i, fe := range ve.errors {
		fields[i] = map[string]interface{}{"field": fe.Field, "tag": fe.Tag, "message": fe.Message}
		messages[i] = fe.Field + ": " + fe.Message
	}
	return &APIError{
		Code:    codeValidation,
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the shared validator with the grid_id rule and
// json/query/koanf field names registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)

		// Registration only fails for an empty tag or a nil func.
		_ = validate.RegisterValidation("grid_id", func(fl validator.FieldLevel) bool { //nolint:errcheck // static registration
			return gridIDPattern.MatchString(fl.Field().String())
		})
	})

	return validate
}

// fieldName reports a field under its json, query or koanf name so messages
// match what the caller actually typed.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "query", "koanf"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			continue
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// ValidateStruct validates s with the shared validator and returns nil or
// every failed rule.
//
//	if verr := validation.ValidateStruct(&opts); verr != nil {
//	    return fmt.Errorf("invalid report options: %w", verr)
//	}
func ValidateStruct(s interface{}) *RequestValidationError {
	return collect(GetValidator().Struct(s), "", nil)
}

// ValidateVar validates a single value against a tag, e.g. a query
// parameter reported as name.
func ValidateVar(name string, value interface{}, tag string) *RequestValidationError {
	return collect(GetValidator().Var(value, tag), name, value)
}

// collect converts a validator error. A non-empty name overrides the field
// name and value, which Var leaves empty.
func collect(err error, name string, value interface{}) *RequestValidationError {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		field := name
		if field == "" {
			field = "unknown"
		}
		return &RequestValidationError{errors: []FieldError{{Field: field, Tag: "unknown", Value: value, Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		field, v := fe.Field(), fe.Value()
		if name != "" {
			field, v = name, value
		}
		out[i] = FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   v,
			Message: translate(fe, field),
		}
	}
	return &RequestValidationError{errors: out}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"grid_id":   "%s must be 1-64 letters, digits, '.', '_' or '-'",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
	"numeric":   "%s must be numeric",
	"dir":       "%s must be an existing directory",
	"file":      "%s must be an existing file",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof":       "%s must be one of: %s",
	"gte":         "%s must be greater than or equal to %s",
	"lte":         "%s must be less than or equal to %s",
	"gt":          "%s must be greater than %s",
	"lt":          "%s must be less than %s",
	"len":         "%s must have length %s",
	"excludesall": "%s must not contain any of %q",
}

func translate(fe validator.FieldError, field string) string {
	tag, param := fe.Tag(), fe.Param()
	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
