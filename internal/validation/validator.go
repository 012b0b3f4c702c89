// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

// Package validation wraps a singleton go-playground/validator instance with
// the custom tags used by the interaction and scoring types:
//
//   - platform: "youtube" or "news"
//   - interaction_type: "consumed", "starred" or "disliked"
//   - interaction_subtype: "", "clicked" or "marked"
//
// Example:
//
//	type Interaction struct {
//	    Platform models.Platform `validate:"required,platform"`
//	}
//	if err := validation.ValidateStruct(&in); err != nil {
//	    return err // *RequestValidationError
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// RequestValidationError collects every failed field of one struct.
type RequestValidationError struct {
	fields []FieldError
}

// Fields returns the individual failures in struct order.
func (ve *RequestValidationError) Fields() []FieldError {
	return ve.fields
}

// HasField reports whether name failed any rule.
func (ve *RequestValidationError) HasField(name string) bool {
	for _, f := range ve.fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

func (ve *RequestValidationError) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.fields))
	for i, f := range ve.fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

var oneOfSets = map[string][]string{
	"platform":            {"youtube", "news"},
	"interaction_type":    {"consumed", "starred", "disliked"},
	"interaction_subtype": {"", "clicked", "marked"},
}

// GetValidator returns the process-wide validator, registering the custom
// tags on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		for tag, allowed := range oneOfSets {
			if err := validate.RegisterValidation(tag, oneOf(allowed)); err != nil {
				panic(fmt.Sprintf("validation: register %s: %v", tag, err))
			}
		}
	})
	return validate
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

// ValidateStruct validates s and returns nil or a *RequestValidationError.
// The concrete pointer type is returned so callers never see a typed nil
// behind an error interface; check with `if err := ...; err != nil`.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestValidationError{fields: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{fields: fields}
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "platform", "interaction_type", "interaction_subtype":
		return fmt.Sprintf("%s must be one of: %s (got %q)",
			field, strings.Join(nonEmpty(oneOfSets[fe.Tag()]), ", "), fmt.Sprint(fe.Value()))
	case "numeric":
		return fmt.Sprintf("%s must be a whole number", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
