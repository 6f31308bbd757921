// Package schema decodes form schema documents and enforces the availability
// window before a form may be rendered or accept submissions.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vstopensource/formfill/pkg/model"
)

// Decode parses a JSON or YAML schema document and applies defaults. The
// format is sniffed from the payload; anything that is not a JSON object is
// handed to the YAML decoder.
func Decode(raw []byte) (model.FormSchema, error) {
	var out model.FormSchema
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return out, fmt.Errorf("schema: empty document")
	}

	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("schema: decode json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("schema: decode yaml: %w", err)
		}
	}

	ApplyDefaults(&out)
	return out, nil
}

// FromDocument converts a document-store map into a FormSchema. Store
// implementations hand back loosely typed maps; the JSON round-trip reuses the
// wire-level normalisation (option shorthand included).
func FromDocument(id string, doc map[string]any) (model.FormSchema, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("schema: encode document: %w", err)
	}
	out, err := Decode(payload)
	if err != nil {
		return model.FormSchema{}, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return out, nil
}

// ApplyDefaults fills the defaults the wire format leaves implicit.
func ApplyDefaults(s *model.FormSchema) {
	if s.Status == "" {
		s.Status = model.StatusDraft
	}
	if s.Settings.RedirectType == "" {
		s.Settings.RedirectType = model.RedirectDashboard
	}
	for i := range s.Fields {
		field := &s.Fields[i]
		if field.Width <= 0 || field.Width > 12 {
			field.Width = 12
		}
		if field.Type.Kind() == model.KindTextarea && field.Rows <= 0 {
			field.Rows = 3
		}
		if field.Type.Kind() == model.KindRating && field.StarCount <= 0 {
			field.StarCount = 5
		}
		if field.Type.Kind() == model.KindScale && field.Step <= 0 {
			field.Step = 1
		}
	}
	for i := range s.Sections {
		if s.Sections[i].BackgroundStyle == "" {
			s.Sections[i].BackgroundStyle = model.BackgroundDefault
		}
	}
}

// ScaleBounds resolves the slider bounds for a scale field (defaults 0..10).
func ScaleBounds(field model.FieldDef) (min, max, step float64) {
	min, max, step = 0, 10, 1
	if v := field.Validation; v != nil {
		if v.Min != nil {
			min = *v.Min
		}
		if v.Max != nil {
			max = *v.Max
		}
	}
	if field.Step > 0 {
		step = field.Step
	}
	return min, max, step
}

// CheckAvailable enforces the schema's lifecycle gating against now: active
// status, start date reached, end date not passed. The returned error is one
// of the Err* sentinels wrapped with a user-facing message.
func CheckAvailable(s model.FormSchema, now time.Time) error {
	if s.Settings.StartDate != nil && s.Settings.StartDate.After(now) {
		return fmt.Errorf("form %q is not available yet: %w", s.ID, ErrNotYetAvailable)
	}
	if s.Settings.EndDate != nil && s.Settings.EndDate.Before(now) {
		return fmt.Errorf("form %q has expired: %w", s.ID, ErrExpired)
	}
	if s.Status != model.StatusActive {
		return fmt.Errorf("form %q is not currently active: %w", s.ID, ErrInactive)
	}
	return nil
}
