package vanilla

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	theme "github.com/goliatone/go-theme"

	"github.com/vstopensource/formfill/pkg/htmlnode"
	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/render"
	"github.com/vstopensource/formfill/pkg/visibility"
)

type Option func(*Renderer)

// WithTheme applies a resolved theme configuration: CSS variables become a
// :root style block, tokens become extra chrome classes.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = buildTheme(cfg)
	}
}

// WithControl overrides the control renderer for one field kind.
func WithControl(kind model.Kind, fn ControlRenderer) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.controls[kind] = fn
		}
	}
}

// WithSubmitLabel changes the text on the submit button.
func WithSubmitLabel(label string) Option {
	return func(r *Renderer) {
		if label != "" {
			r.submitLabel = label
		}
	}
}

// Renderer produces the browser HTML for a form: sectioned field markup with
// conditional-logic metadata the embedded runtime script re-evaluates as the
// user types.
type Renderer struct {
	controls    map[model.Kind]ControlRenderer
	theme       rendererTheme
	submitLabel string
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) *Renderer {
	r := &Renderer{
		controls:    defaultControls(),
		submitLabel: "Submit",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, s model.FormSchema, opts render.Options) ([]byte, error) {
	form, err := r.Build(s, opts)
	if err != nil {
		return nil, err
	}
	return []byte(form.Render()), nil
}

// Build returns the form as a node tree, for callers that want to embed it in
// a larger page rather than serialize it directly.
func (r *Renderer) Build(s model.FormSchema, opts render.Options) (*htmlnode.Element, error) {
	values := r.resolveValues(s, opts)
	visible := visibility.New(s).VisibleSet(values)

	form := htmlnode.El("form").
		Attr("id", "form-"+s.ID).
		Attr("method", "post").
		Attr("data-form-id", s.ID).
		Class(string(ClassForm))
	if cls := r.theme.tokenClass("form"); cls != "" {
		form.Class(cls)
	}
	if r.theme.Name != "" {
		form.Attr("data-theme", r.theme.Name)
	}
	if r.theme.Variant != "" {
		form.Attr("data-theme-variant", r.theme.Variant)
	}
	if r.theme.CSSVarsStyle != "" {
		form.Add(htmlnode.El("style").Add(htmlnode.Raw(r.theme.CSSVarsStyle)))
	}

	fields := model.SortedFields(s.Fields)
	bySection, loose := model.PartitionBySection(fields)

	number := 0
	for _, sec := range model.SortedSections(s.Sections) {
		secFields := bySection[sec.ID]
		if len(secFields) == 0 {
			continue
		}
		number++
		block, err := r.buildSection(sec, number, secFields, values, visible, opts)
		if err != nil {
			return nil, err
		}
		form.Add(block)
	}

	for _, field := range loose {
		node, err := r.buildField(field, values, visible, opts)
		if err != nil {
			return nil, err
		}
		if node != nil {
			form.Add(node)
		}
	}

	form.Add(htmlnode.El("div").Class(string(ClassActions)).Add(
		htmlnode.El("button").
			Attr("type", "submit").
			Class("submit-button").
			AddText(r.submitLabel),
	))
	return form, nil
}

func (r *Renderer) buildSection(sec model.SectionDef, number int, fields []model.FieldDef, values visibility.Values, visible map[string]bool, opts render.Options) (*htmlnode.Element, error) {
	block := htmlnode.El("section").
		Attr("data-section-id", sec.ID).
		Class(string(ClassSection), "section-"+string(sec.BackgroundStyle))

	header := htmlnode.El("div").Class(string(ClassSectionHead))
	if icon := sanitizeIcon(sec.Icon); icon != "" {
		header.Add(htmlnode.El("span").Class("section-icon").Add(htmlnode.Raw(icon)))
	}
	title := sec.Title
	if sec.ShowSectionNumber {
		title = strconv.Itoa(number) + ". " + title
	}
	header.Add(htmlnode.El("h3").AddText(title))
	block.Add(header)
	if sec.Description != "" {
		block.Add(htmlnode.El("p").Class("section-description").AddText(sec.Description))
	}

	body := htmlnode.El("div").Class("section-fields")
	for _, field := range fields {
		node, err := r.buildField(field, values, visible, opts)
		if err != nil {
			return nil, err
		}
		if node != nil {
			body.Add(node)
		}
	}
	block.Add(body)
	return block, nil
}

func (r *Renderer) buildField(field model.FieldDef, values visibility.Values, visible map[string]bool, opts render.Options) (*htmlnode.Element, error) {
	kind := field.Type.Kind()
	control, ok := r.controls[kind]
	if !ok {
		control = textControl
	}

	st := FieldState{
		Value:    values[field.ID],
		ReadOnly: field.ReadOnly,
	}
	displayHidden := field.Hidden
	if af := field.AutoFetch; af != nil && af.Enabled {
		if fetched := opts.Profile.Resolve(af.Field); fetched != "" {
			switch af.Mode {
			case model.AutoFetchReadonly:
				st.ReadOnly = true
			case model.AutoFetchHidden:
				displayHidden = true
			}
		}
	}

	if kind == model.KindHidden {
		return hiddenControl(field, st), nil
	}
	if kind == model.KindPageBreak {
		return control(field, st), nil
	}

	wrap := htmlnode.El("div").
		Attr("data-field-id", field.ID).
		Class(string(ClassField), "field-"+string(field.Type), "field-width-"+strconv.Itoa(fieldWidth(field)))
	if displayHidden || !visible[field.ID] {
		wrap.Attr("style", "display:none")
	}
	if logic := field.ConditionalLogic; logic != nil && logic.Enabled {
		payload, err := json.Marshal(logic)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: encode conditional logic for %q: %w", field.ID, err)
		}
		wrap.Attr("data-conditional-logic", string(payload))
	}

	if field.Label != "" {
		label := htmlnode.El("label").Attr("for", field.ID).Class("field-label").AddText(field.Label)
		if field.Required {
			label.Add(htmlnode.El("span").Class("required-mark").AddText(" *"))
		}
		wrap.Add(label)
	}

	wrap.Add(control(field, st))

	if help := sanitizeHelpText(field.HelpText); help != "" {
		wrap.Add(htmlnode.El("small").Class(string(ClassHelp)).Add(htmlnode.Raw(help)))
	}
	if errs := opts.Errors[field.ID]; len(errs) > 0 {
		list := htmlnode.El("div").Class(string(ClassErrors))
		for _, msg := range errs {
			list.Add(htmlnode.El("small").AddText(msg))
		}
		wrap.Add(list)
	}
	return wrap, nil
}

// resolveValues computes the value shown for every field: a submitted value
// wins, then an auto-fetched profile value, then the field default.
func (r *Renderer) resolveValues(s model.FormSchema, opts render.Options) visibility.Values {
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

func fieldWidth(field model.FieldDef) int {
	if field.Width >= 1 && field.Width <= 12 {
		return field.Width
	}
	return 12
}
