package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/render"
	"github.com/vstopensource/formfill/pkg/schema"
	"github.com/vstopensource/formfill/pkg/validation"
	"github.com/vstopensource/formfill/pkg/visibility"
)

// Renderer implements render.Renderer for terminal-driven sessions: it walks
// the fields in display order, prompting for each one and re-evaluating
// conditional visibility after every answer.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

func (r *Renderer) Render(ctx context.Context, s model.FormSchema, opts render.Options) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	eval := visibility.New(s)
	values := seedValues(s, opts)

	fields := model.SortedFields(s.Fields)
	bySection, loose := model.PartitionBySection(fields)

	number := 0
	for _, sec := range model.SortedSections(s.Sections) {
		secFields := bySection[sec.ID]
		if len(secFields) == 0 {
			continue
		}
		number++
		if err := r.announceSection(ctx, sec, number); err != nil {
			return nil, err
		}
		for _, field := range secFields {
			if err := r.promptField(ctx, field, eval, values, opts); err != nil {
				return nil, err
			}
		}
	}
	for _, field := range loose {
		if err := r.promptField(ctx, field, eval, values, opts); err != nil {
			return nil, err
		}
	}

	out := collectVisible(s, eval, values)
	if r.submitTransformer != nil {
		var err error
		out, err = r.submitTransformer(out)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(out)
}

func (r *Renderer) announceSection(ctx context.Context, sec model.SectionDef, number int) error {
	title := sec.Title
	if sec.ShowSectionNumber {
		title = strconv.Itoa(number) + ". " + title
	}
	if err := r.driver.Info(ctx, "== "+title+" =="); err != nil {
		return err
	}
	if sec.Description != "" {
		return r.driver.Info(ctx, sec.Description)
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.FieldDef, eval *visibility.Evaluator, values visibility.Values, opts render.Options) error {
	kind := field.Type.Kind()
	if kind == model.KindHidden || field.Hidden {
		return nil
	}
	if kind == model.KindPageBreak {
		return r.driver.Info(ctx, strings.Repeat("-", 40))
	}
	// Conditional visibility is rechecked against the answers so far.
	if !eval.Visible(field, values) {
		return nil
	}

	label := displayLabel(field)
	readOnly := field.ReadOnly
	if af := field.AutoFetch; af != nil && af.Enabled {
		if fetched := opts.Profile.Resolve(af.Field); fetched != "" {
			switch af.Mode {
			case model.AutoFetchHidden:
				return nil
			case model.AutoFetchReadonly:
				readOnly = true
			}
		}
	}
	if readOnly {
		return r.driver.Info(ctx, fmt.Sprintf("%s: %s", label, model.StringValue(values[field.ID])))
	}

	switch kind {
	case model.KindTextarea:
		return r.promptTextarea(ctx, field, values)
	case model.KindDropdown, model.KindRadio:
		return r.promptSelect(ctx, field, values)
	case model.KindMultiselect, model.KindCheckbox:
		return r.promptMultiSelect(ctx, field, values)
	case model.KindDate:
		return r.promptDate(ctx, field, values)
	case model.KindTime:
		return r.promptTime(ctx, field, values)
	case model.KindRating:
		return r.promptRating(ctx, field, values)
	case model.KindScale:
		return r.promptScale(ctx, field, values)
	default:
		return r.promptText(ctx, field, values)
	}
}

func (r *Renderer) promptText(ctx context.Context, field model.FieldDef, values visibility.Values) error {
	cfg := InputConfig{
		Message:   displayLabel(field),
		Default:   model.StringValue(values[field.ID]),
		Help:      field.HelpText,
		Validator: func(s string) error { return validation.ValidateField(field, s) },
	}

	var response string
	var err error
	if field.Type == model.FieldTypePassword {
		cfg.Default = ""
		response, err = r.driver.Password(ctx, cfg)
	} else {
		response, err = r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	values[field.ID] = response
	return nil
}

func (r *Renderer) promptTextarea(ctx context.Context, field model.FieldDef, values visibility.Values) error {
	for {
		response, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: displayLabel(field),
			Default: model.StringValue(values[field.ID]),
			Help:    field.HelpText,
		})
		if err != nil {
			return err
		}
		if err := validation.ValidateField(field, response); err != nil {
			if infoErr := r.driver.Info(ctx, err.Error()); infoErr != nil {
				return infoErr
			}
			continue
		}
		values[field.ID] = response
		return nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field model.FieldDef, values visibility.Values) error {
	labels := optionLabels(field.Options)
	defaultIdx := -1
	if current := model.StringValue(values[field.ID]); current != "" {
		defaultIdx = optionIndex(field.Options, current)
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         field.HelpText,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(field.Options) {
			if infoErr := r.driver.Info(ctx, "Invalid selection"); infoErr != nil {
				return infoErr
			}
			continue
		}
		values[field.ID] = field.Options[idx].Value
		return nil
	}
}

func (r *Renderer) promptMultiSelect(ctx context.Context, field model.FieldDef, values visibility.Values) error {
	labels := optionLabels(field.Options)
	current, _ := model.SliceValue(values[field.ID])
	var defaults []int
	for i, opt := range field.Options {
		for _, v := range current {
			if v == opt.Value {
				defaults = append(defaults, i)
			}
		}
	}

	for {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  displayLabel(field),
			Options:  labels,
			Defaults: defaults,
			Help:     field.HelpText,
		})
		if err != nil {
			return err
		}
		selected := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				selected = append(selected, field.Options[idx].Value)
			}
		}
		if err := validation.ValidateField(field, selected); err != nil {
			if infoErr := r.driver.Info(ctx, err.Error()); infoErr != nil {
				return infoErr
			}
			continue
		}
		values[field.ID] = selected
		return nil
	}
}

func (r *Renderer) promptDate(ctx context.Context, field model.FieldDef, values visibility.Values) error {
	response, err := r.driver.Input(ctx, InputConfig{
		Message: displayLabel(field),
		Default: model.DateValue(values[field.ID]),
		Help:    strings.TrimSpace(field.HelpText + " (YYYY-MM-DD)"),
		Validator: func(s string) error {
			if s != "" {
				if _, err := time.Parse("2006-01-02", s); err != nil {
					return errors.New("enter a date as YYYY-MM-DD")
				}
			}
			return validation.ValidateField(field, s)
		},
	})
	if err != nil {
		return err
	}
	values[field.ID] = response
	return nil
}

func (r *Renderer) promptTime(ctx context.Context, field model.FieldDef, values visibility.Values) error {
	response, err := r.driver.Input(ctx, InputConfig{
		Message: displayLabel(field),
		Default: model.StringValue(values[field.ID]),
		Help:    strings.TrimSpace(field.HelpText + " (HH:MM)"),
		Validator: func(s string) error {
			if s != "" {
				if _, err := time.Parse("15:04", s); err != nil {
					return errors.New("enter a time as HH:MM")
				}
			}
			return validation.ValidateField(field, s)
		},
	})
	if err != nil {
		return err
	}
	values[field.ID] = response
	return nil
}

func (r *Renderer) promptRating(ctx context.Context, field model.FieldDef, values visibility.Values) error {
	stars := field.StarCount
	if stars <= 0 {
		stars = 5
	}
	labels := make([]string, stars)
	for i := range labels {
		labels[i] = strings.Repeat("★", i+1)
	}
	defaultIdx := -1
	if current, ok := model.NumberValue(values[field.ID]); ok && current >= 1 && int(current) <= stars {
		defaultIdx = int(current) - 1
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(field),
		Options:      labels,
		DefaultIndex: defaultIdx,
		Help:         field.HelpText,
	})
	if err != nil {
		return err
	}
	if idx >= 0 {
		values[field.ID] = idx + 1
	}
	return nil
}

func (r *Renderer) promptScale(ctx context.Context, field model.FieldDef, values visibility.Values) error {
	min, max, _ := schema.ScaleBounds(field)
	defaultStr := ""
	if current, ok := model.NumberValue(values[field.ID]); ok {
		defaultStr = formatNumber(current)
	}

	response, err := r.driver.Input(ctx, InputConfig{
		Message: displayLabel(field),
		Default: defaultStr,
		Help:    fmt.Sprintf("%s to %s", formatNumber(min), formatNumber(max)),
		Validator: func(s string) error {
			if s == "" {
				return validation.ValidateField(field, s)
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return errors.New("enter a number")
			}
			if n < min || n > max {
				return fmt.Errorf("enter a number between %s and %s", formatNumber(min), formatNumber(max))
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	if response == "" {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(response), 64)
	if err != nil {
		return fmt.Errorf("tui: parse scale answer: %w", err)
	}
	values[field.ID] = n
	return nil
}

// seedValues resolves the starting value per field: caller-provided value,
// then auto-fetched profile value, then the field default.
func seedValues(s model.FormSchema, opts render.Options) visibility.Values {
	values := make(visibility.Values, len(s.Fields))
	for _, field := range s.Fields {
		if v, ok := opts.Values[field.ID]; ok {
			values[field.ID] = v
			continue
		}
		if af := field.AutoFetch; af != nil && af.Enabled {
			if fetched := opts.Profile.Resolve(af.Field); fetched != "" {
				values[field.ID] = fetched
				continue
			}
		}
		if field.DefaultValue != nil {
			values[field.ID] = field.DefaultValue
		}
	}
	return values
}

// collectVisible keeps answers for fields that ended up visible, dropping
// empty ones. Display-hidden fields keep their seeded values.
func collectVisible(s model.FormSchema, eval *visibility.Evaluator, values visibility.Values) map[string]any {
	out := make(map[string]any, len(values))
	for _, field := range s.Fields {
		if field.Type.Kind() == model.KindPageBreak {
			continue
		}
		if !field.Hidden && field.Type.Kind() != model.KindHidden && !eval.Visible(field, values) {
			continue
		}
		v, ok := values[field.ID]
		if !ok || model.IsEmptyValue(v) {
			continue
		}
		out[field.ID] = v
	}
	return out
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func displayLabel(field model.FieldDef) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

func optionLabels(options []model.Option) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		if opt.Label != "" {
			out[i] = opt.Label
		} else {
			out[i] = opt.Value
		}
	}
	return out
}

func optionIndex(options []model.Option, value string) int {
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				flattened.Add(key+"[]", fmt.Sprint(item))
			}
		case []string:
			for _, item := range v {
				flattened.Add(key+"[]", item)
			}
		default:
			flattened.Set(key, fmt.Sprint(v))
		}
	}
	return flattened.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, model.StringValue(values[key]))
	}
	return b.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
