// internal/common/validation/schema.go

// Package validation checks selection documents against the option
// registry, producing field-level errors for the UI and tooling layers.
// The engine itself never rejects a selection; it silently skips whatever
// does not line up. This package exists so callers can surface those
// mismatches before a compile quietly drops them.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pipeline-compiler/internal/engine/option"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateSelections checks every entry of a selection document against
// the registry. Unknown option identifiers are NOT errors: the silent-skip
// compatibility contract allows documents written for other builds.
func ValidateSelections(doc map[string]option.Selection, registry option.Registry) *ValidationResult {
	errors := []ValidationError{}

	for id, sel := range doc {
		def, ok := registry.Lookup(id)
		if !ok {
			continue
		}

		if sel.Kind != def.Kind {
			errors = append(errors, ValidationError{
				Field:   id,
				Message: fmt.Sprintf("selection kind %q does not match option kind %q", sel.Kind, def.Kind),
				Code:    "KIND_MISMATCH",
			})
			continue
		}

		switch def.Kind {
		case option.KindChoice:
			if sel.Case != "" && def.CaseNamed(sel.Case) == nil {
				errors = append(errors, ValidationError{
					Field:   id,
					Message: fmt.Sprintf("case %q is not declared by this option", sel.Case),
					Code:    "UNKNOWN_CASE",
				})
			}

		case option.KindFreeText:
			errors = append(errors, validateSlotValues(id, def, sel.Input)...)
		}
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateSlotValues(optionID string, def *option.Definition, input map[string]string) []ValidationError {
	errors := []ValidationError{}

	for name, value := range input {
		field := fmt.Sprintf("%s.%s", optionID, name)

		slot := def.SlotNamed(name)
		if slot == nil {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "slot is not declared by this option",
				Code:    "UNKNOWN_SLOT",
			})
			continue
		}
		if value == "" {
			continue // empty means "use the default"
		}

		if slot.Pattern != "" {
			matched, err := regexp.MatchString(slot.Pattern, value)
			if err != nil || !matched {
				errors = append(errors, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("value must match pattern %s", slot.Pattern),
					Code:    "PATTERN_MISMATCH",
				})
			}
		}

		if slot.Type == option.SlotInteger {
			if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
				errors = append(errors, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("value %q is not an integer", value),
					Code:    "INVALID_TYPE",
				})
			}
		}
	}

	return errors
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
