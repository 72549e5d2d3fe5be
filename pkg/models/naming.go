package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Gender selects the gender register of generated names.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// Style selects the aesthetic of generated names.
type Style string

const (
	StyleTraditional Style = "traditional"
	StyleModern      Style = "modern"
	StyleElegant     Style = "elegant"
	StyleNature      Style = "nature"
	StyleLiterary    Style = "literary"
)

// Preferences are optional constraints supplied by the caller.
type Preferences struct {
	AvoidWords        []string `json:"avoidWords,omitempty" yaml:"avoid_words" validate:"max=10,dive,min=1,max=20"`
	PreferredElements []string `json:"preferredElements,omitempty" yaml:"preferred_elements" validate:"max=10,dive,min=1,max=20"`
	MeaningFocus      string   `json:"meaningFocus,omitempty" yaml:"meaning_focus" validate:"max=200"`
}

// Empty reports whether no preference is set.
func (p *Preferences) Empty() bool {
	return p == nil || (len(p.AvoidWords) == 0 && len(p.PreferredElements) == 0 && p.MeaningFocus == "")
}

// NamingRequest is a validated request for name candidates.
type NamingRequest struct {
	Seed        string       `json:"seed" yaml:"seed" validate:"required,min=1,max=50"`
	Gender      Gender       `json:"gender" yaml:"gender" validate:"required,oneof=male female neutral"`
	Style       Style        `json:"style" yaml:"style" validate:"required,oneof=traditional modern elegant nature literary"`
	Preferences *Preferences `json:"preferences,omitempty" yaml:"preferences,omitempty"`
}

// Normalize returns a copy with surrounding whitespace trimmed from every text field.
func (r NamingRequest) Normalize() NamingRequest {
	out := r
	out.Seed = strings.TrimSpace(r.Seed)
	if r.Preferences != nil {
		p := Preferences{
			AvoidWords:        trimAll(r.Preferences.AvoidWords),
			PreferredElements: trimAll(r.Preferences.PreferredElements),
			MeaningFocus:      strings.TrimSpace(r.Preferences.MeaningFocus),
		}
		out.Preferences = &p
	}
	return out
}

// Validate checks r against the request rules and returns a *ValidationError
// describing the first violation.
func (r NamingRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return newValidationError(fieldErrs[0])
	}
	return &ValidationError{Message: err.Error()}
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// ValidationError reports a malformed request. It is surfaced to callers verbatim.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Message
}

// Code is the stable error code callers map to a user-facing message.
func (e *ValidationError) Code() string { return "VALIDATION_ERROR" }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validator exposes the shared validator so other packages validate with the same tag names.
func Validator() *validator.Validate { return validate }

func newValidationError(fe validator.FieldError) *ValidationError {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "oneof":
		msg = fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			msg = fmt.Sprintf("%s must have at most %s entries", field, fe.Param())
		} else {
			msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
	default:
		msg = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return &ValidationError{Field: field, Rule: fe.Tag(), Message: msg}
}
