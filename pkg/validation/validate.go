// Package validation enforces field constraints server-side before a
// submission is accepted. Constraint attributes are also emitted into the
// rendered markup for the browser's native validation; the checks here run
// again regardless of what the client reported.
package validation

import (
	"fmt"
	"regexp"

	"github.com/vstopensource/formfill/pkg/model"
)

// FieldError reports the first failing field. The HTTP layer turns it into a
// focus-first response; the TUI turns it into an inline prompt failure.
type FieldError struct {
	FieldID string
	Label   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation: field %q: %s", e.FieldID, e.Message)
}

// Validate checks every currently visible field in display order and stops at
// the first failure. Fields absent from the visible set are exempt from all
// checks. A nil return means the submission may proceed.
func Validate(s model.FormSchema, values map[string]any, visible map[string]bool) error {
	for _, field := range model.SortedFields(s.Fields) {
		if field.Hidden || !visible[field.ID] {
			continue
		}
		if field.Type.Kind() == model.KindPageBreak {
			continue
		}
		if err := validateField(field, values[field.ID]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateField checks one field's constraints against a candidate value.
// Interactive surfaces use it to re-prompt before the full form is checked.
func ValidateField(field model.FieldDef, value any) error {
	return validateField(field, value)
}

func validateField(field model.FieldDef, value any) error {
	label := field.Label
	if label == "" {
		label = "Field"
	}

	if field.Required {
		if field.Type.Kind().Multivalued() {
			items, ok := model.SliceValue(value)
			// A bare scalar counts as a single selection, mirroring how
			// renderers treat single-value answers for multivalued kinds.
			if !ok && !model.IsEmptyValue(value) {
				items = []string{model.StringValue(value)}
			}
			if len(items) == 0 {
				return &FieldError{FieldID: field.ID, Label: label,
					Message: fmt.Sprintf("%s requires at least one selection.", label)}
			}
		} else if model.IsEmptyValue(value) {
			return &FieldError{FieldID: field.ID, Label: label,
				Message: fmt.Sprintf("%s is required.", label)}
		}
	}

	rules := field.Validation
	if rules == nil || model.IsEmptyValue(value) {
		return nil
	}

	text := model.StringValue(value)
	if rules.MinLength != nil && len(text) < *rules.MinLength {
		return &FieldError{FieldID: field.ID, Label: label,
			Message: fmt.Sprintf("%s must be at least %d characters.", label, *rules.MinLength)}
	}
	if rules.MaxLength != nil && len(text) > *rules.MaxLength {
		return &FieldError{FieldID: field.ID, Label: label,
			Message: fmt.Sprintf("%s must be at most %d characters.", label, *rules.MaxLength)}
	}

	if rules.Min != nil || rules.Max != nil {
		if number, ok := model.NumberValue(value); ok {
			if rules.Min != nil && number < *rules.Min {
				return &FieldError{FieldID: field.ID, Label: label,
					Message: fmt.Sprintf("%s must be at least %v.", label, *rules.Min)}
			}
			if rules.Max != nil && number > *rules.Max {
				return &FieldError{FieldID: field.ID, Label: label,
					Message: fmt.Sprintf("%s must be at most %v.", label, *rules.Max)}
			}
		}
	}

	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		// Unparseable patterns fall through; the schema builder owns them.
		if err == nil && !re.MatchString(text) {
			return &FieldError{FieldID: field.ID, Label: label,
				Message: fmt.Sprintf("%s does not match the expected format.", label)}
		}
	}
	return nil
}
