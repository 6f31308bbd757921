package vanilla

import (
	"fmt"
	"strconv"

	"github.com/vstopensource/formfill/pkg/htmlnode"
	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/schema"
)

// FieldState carries the per-render inputs a control renderer needs beyond the
// field definition itself.
type FieldState struct {
	// Value is the resolved current value: submitted value, then auto-fetched
	// profile value, then the field default.
	Value any
	// ReadOnly is true when the definition or the auto-fetch mode locks the
	// control against editing.
	ReadOnly bool
}

// ControlRenderer produces the interactive control for one field. Renderers
// are pure: same field and state, same tree.
type ControlRenderer func(field model.FieldDef, st FieldState) *htmlnode.Element

func defaultControls() map[model.Kind]ControlRenderer {
	return map[model.Kind]ControlRenderer{
		model.KindText:        textControl,
		model.KindTextarea:    textareaControl,
		model.KindDropdown:    dropdownControl,
		model.KindMultiselect: multiselectControl,
		model.KindCheckbox:    checkboxControl,
		model.KindRadio:       radioControl,
		model.KindDate:        dateControl,
		model.KindTime:        timeControl,
		model.KindRating:      ratingControl,
		model.KindScale:       scaleControl,
		model.KindPageBreak:   pagebreakControl,
		model.KindHidden:      hiddenControl,
	}
}

func textControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	in := htmlnode.El("input").
		Attr("type", field.Type.InputType()).
		Attr("id", field.ID).
		Attr("name", field.ID).
		Class("form-input")
	if v := model.StringValue(st.Value); v != "" {
		in.Attr("value", v)
	}
	if field.Placeholder != "" {
		in.Attr("placeholder", field.Placeholder)
	}
	in.BoolAttr("required", field.Required)
	applyReadonly(in, st)
	applyConstraints(in, field.Validation)
	return in
}

func textareaControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	rows := field.Rows
	if rows <= 0 {
		rows = 3
	}
	ta := htmlnode.El("textarea").
		Attr("id", field.ID).
		Attr("name", field.ID).
		Attr("rows", strconv.Itoa(rows)).
		Class("form-input")
	if field.Placeholder != "" {
		ta.Attr("placeholder", field.Placeholder)
	}
	ta.BoolAttr("required", field.Required)
	applyReadonly(ta, st)
	if v := field.Validation; v != nil {
		if v.MinLength != nil {
			ta.Attr("minlength", strconv.Itoa(*v.MinLength))
		}
		if v.MaxLength != nil {
			ta.Attr("maxlength", strconv.Itoa(*v.MaxLength))
		}
	}
	if v := model.StringValue(st.Value); v != "" {
		ta.AddText(v)
	}
	return ta
}

func dropdownControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	sel := htmlnode.El("select").
		Attr("id", field.ID).
		Attr("name", field.ID).
		Class("form-input")
	sel.BoolAttr("required", field.Required)
	applyDisabled(sel, st)

	current := model.StringValue(st.Value)
	placeholder := htmlnode.El("option").Attr("value", "").AddText("-- Select --")
	if current == "" {
		placeholder.Attr("selected", "selected")
	}
	sel.Add(placeholder)

	for _, opt := range field.Options {
		o := htmlnode.El("option").Attr("value", opt.Value).AddText(opt.Label)
		if current != "" && opt.Value == current {
			o.Attr("selected", "selected")
		}
		sel.Add(o)
	}
	return sel
}

func multiselectControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	selected := selectedSet(st.Value)

	sel := htmlnode.El("select").
		Attr("id", field.ID).
		Attr("name", field.ID).
		Attr("multiple", "multiple").
		Class("form-input", "multiselect")
	applyDisabled(sel, st)
	for _, opt := range field.Options {
		o := htmlnode.El("option").Attr("value", opt.Value).AddText(opt.Label)
		if selected[opt.Value] {
			o.Attr("selected", "selected")
		}
		sel.Add(o)
	}

	wrap := htmlnode.El("div").Class("multiselect-wrap").Add(sel)
	if n := len(selected); n > 0 {
		wrap.Add(htmlnode.El("div").Class("multiselect-count").AddText(fmt.Sprintf("%d selected", n)))
	}
	return wrap
}

func checkboxControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	selected := selectedSet(st.Value)
	group := htmlnode.El("div").Class("option-group").Attr("role", "group")
	for i, opt := range field.Options {
		id := fmt.Sprintf("%s-%d", field.ID, i)
		in := htmlnode.El("input").
			Attr("type", "checkbox").
			Attr("id", id).
			Attr("name", field.ID).
			Attr("value", opt.Value)
		in.BoolAttr("checked", selected[opt.Value])
		in.BoolAttr("disabled", st.ReadOnly)
		group.Add(htmlnode.El("label").Attr("for", id).Class("option").Add(
			in,
			htmlnode.El("span").AddText(opt.Label),
		))
	}
	return group
}

func radioControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	current := model.StringValue(st.Value)
	group := htmlnode.El("div").Class("option-group").Attr("role", "radiogroup")
	for i, opt := range field.Options {
		id := fmt.Sprintf("%s-%d", field.ID, i)
		in := htmlnode.El("input").
			Attr("type", "radio").
			Attr("id", id).
			Attr("name", field.ID).
			Attr("value", opt.Value)
		in.BoolAttr("checked", current != "" && opt.Value == current)
		in.BoolAttr("required", field.Required && i == 0)
		in.BoolAttr("disabled", st.ReadOnly)
		group.Add(htmlnode.El("label").Attr("for", id).Class("option").Add(
			in,
			htmlnode.El("span").AddText(opt.Label),
		))
	}
	return group
}

func dateControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	in := htmlnode.El("input").
		Attr("type", "date").
		Attr("id", field.ID).
		Attr("name", field.ID).
		Class("form-input")
	if v := model.DateValue(st.Value); v != "" {
		in.Attr("value", v)
	}
	in.BoolAttr("required", field.Required)
	applyReadonly(in, st)
	return in
}

func timeControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	in := htmlnode.El("input").
		Attr("type", "time").
		Attr("id", field.ID).
		Attr("name", field.ID).
		Class("form-input")
	if v := model.StringValue(st.Value); v != "" {
		in.Attr("value", v)
	}
	in.BoolAttr("required", field.Required)
	applyReadonly(in, st)
	return in
}

func ratingControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	stars := field.StarCount
	if stars <= 0 {
		stars = 5
	}
	current, _ := model.NumberValue(st.Value)

	group := htmlnode.El("div").
		Class("rating").
		Attr("role", "radiogroup").
		Attr("data-star-count", strconv.Itoa(stars))
	for i := 1; i <= stars; i++ {
		id := fmt.Sprintf("%s-%d", field.ID, i)
		in := htmlnode.El("input").
			Attr("type", "radio").
			Attr("id", id).
			Attr("name", field.ID).
			Attr("value", strconv.Itoa(i))
		in.BoolAttr("checked", int(current) == i)
		in.BoolAttr("required", field.Required && i == 1)
		in.BoolAttr("disabled", st.ReadOnly)
		label := htmlnode.El("label").Attr("for", id).Class("rating-star").AddText("★")
		if current >= float64(i) {
			label.Class("active")
		}
		group.Add(in, label)
	}
	return group
}

func scaleControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	min, max, step := schema.ScaleBounds(field)
	current, ok := model.NumberValue(st.Value)
	if !ok {
		current = min
	}

	in := htmlnode.El("input").
		Attr("type", "range").
		Attr("id", field.ID).
		Attr("name", field.ID).
		Attr("min", formatNumber(min)).
		Attr("max", formatNumber(max)).
		Attr("step", formatNumber(step)).
		Attr("value", formatNumber(current)).
		Class("scale-input")
	in.BoolAttr("disabled", st.ReadOnly)

	return htmlnode.El("div", in,
		htmlnode.El("div").Class("scale-labels").Add(
			htmlnode.El("span").Class("scale-min").AddText(formatNumber(min)),
			htmlnode.El("span").Class("scale-max").AddText(formatNumber(max)),
		),
		htmlnode.El("output").Class("scale-value").Attr("for", field.ID).AddText(formatNumber(current)),
	).Class("scale")
}

func pagebreakControl(field model.FieldDef, _ FieldState) *htmlnode.Element {
	pb := htmlnode.El("div").Class("pagebreak").Add(htmlnode.El("hr"))
	if field.Label != "" {
		pb.Add(htmlnode.El("span").Class("pagebreak-label").AddText(field.Label))
	}
	return pb
}

func hiddenControl(field model.FieldDef, st FieldState) *htmlnode.Element {
	in := htmlnode.El("input").
		Attr("type", "hidden").
		Attr("id", field.ID).
		Attr("name", field.ID)
	if v := model.StringValue(st.Value); v != "" {
		in.Attr("value", v)
	}
	return in
}

func applyReadonly(el *htmlnode.Element, st FieldState) {
	if st.ReadOnly {
		el.BoolAttr("readonly", true)
		el.Class(string(ClassReadonly))
	}
}

// applyDisabled is for selects, which have no readonly attribute.
func applyDisabled(el *htmlnode.Element, st FieldState) {
	if st.ReadOnly {
		el.BoolAttr("disabled", true)
		el.Class(string(ClassReadonly))
	}
}

func applyConstraints(el *htmlnode.Element, v *model.Validation) {
	if v == nil {
		return
	}
	if v.MinLength != nil {
		el.Attr("minlength", strconv.Itoa(*v.MinLength))
	}
	if v.MaxLength != nil {
		el.Attr("maxlength", strconv.Itoa(*v.MaxLength))
	}
	if v.Pattern != "" {
		el.Attr("pattern", v.Pattern)
	}
	if v.Min != nil {
		el.Attr("min", formatNumber(*v.Min))
	}
	if v.Max != nil {
		el.Attr("max", formatNumber(*v.Max))
	}
}

func selectedSet(value any) map[string]bool {
	items, ok := model.SliceValue(value)
	if !ok || len(items) == 0 {
		if s := model.StringValue(value); s != "" {
			items = []string{s}
		}
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
