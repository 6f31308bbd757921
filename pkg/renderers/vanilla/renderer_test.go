package vanilla

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/vstopensource/formfill/pkg/htmlnode"
	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/profile"
	"github.com/vstopensource/formfill/pkg/render"
)

func testSchema() model.FormSchema {
	return model.FormSchema{
		ID:     "volunteer-signup",
		Name:   "Volunteer Signup",
		Status: model.StatusActive,
		Sections: []model.SectionDef{
			{ID: "contact", Title: "Contact", Order: 1, Icon: "fas fa-user", ShowSectionNumber: true},
			{ID: "ghost", Title: "Ghost", Order: 2, ShowSectionNumber: true},
			{ID: "prefs", Title: "Preferences", Order: 3, ShowSectionNumber: true},
		},
		Fields: []model.FieldDef{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Order: 1, SectionID: "contact", Required: true},
			{ID: "shift", Type: model.FieldTypeDropdown, Label: "Shift", Order: 2, SectionID: "prefs",
				Options: []model.Option{{Value: "am", Label: "Morning"}, {Value: "pm", Label: "Evening"}}},
			{ID: "other", Type: model.FieldTypeText, Label: "Other shift", Order: 3, SectionID: "prefs",
				ConditionalLogic: &model.ConditionalLogic{
					Enabled:    true,
					Conditions: []model.Condition{{FieldID: "shift", Operator: model.OperatorEquals, Value: "pm"}},
				}},
			{ID: "notes", Type: model.FieldTypeTextarea, Label: "Notes", Order: 10},
		},
	}
}

func mustBuild(t *testing.T, s model.FormSchema, opts render.Options) *htmlnode.Element {
	t.Helper()
	form, err := New().Build(s, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return form
}

func TestRendererMetadata(t *testing.T) {
	r := New()
	if r.Name() != "vanilla" {
		t.Fatalf("Name = %q", r.Name())
	}
	if !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("ContentType = %q", r.ContentType())
	}
}

func TestBuildSectionNumberingSkipsEmpty(t *testing.T) {
	form := mustBuild(t, testSchema(), render.Options{})

	sections := form.FindAll(htmlnode.ByTag("section"))
	if len(sections) != 2 {
		t.Fatalf("expected 2 non-empty sections, got %d", len(sections))
	}
	headings := form.FindAll(htmlnode.ByTag("h3"))
	if got := headings[0].TextContent(); got != "1. Contact" {
		t.Fatalf("first heading = %q", got)
	}
	// The empty "Ghost" section must not consume a number.
	if got := headings[1].TextContent(); got != "2. Preferences" {
		t.Fatalf("second heading = %q", got)
	}
}

func TestBuildUnsectionedFieldsAfterSections(t *testing.T) {
	form := mustBuild(t, testSchema(), render.Options{})

	var sawSection bool
	for _, child := range form.Children {
		el, ok := child.(*htmlnode.Element)
		if !ok {
			continue
		}
		if el.Tag == "section" {
			sawSection = true
		}
		if id, _ := el.AttrValue("data-field-id"); id == "notes" && !sawSection {
			t.Fatal("loose field rendered before the sections")
		}
	}
	if form.Find(htmlnode.ByAttr("data-field-id", "notes")) == nil {
		t.Fatal("loose field missing")
	}
}

func TestBuildConditionalFieldHiddenInitially(t *testing.T) {
	form := mustBuild(t, testSchema(), render.Options{})

	wrap := form.Find(htmlnode.ByAttr("data-field-id", "other"))
	if wrap == nil {
		t.Fatal("conditional field missing")
	}
	if got, _ := wrap.AttrValue("style"); got != "display:none" {
		t.Fatalf("style = %q, want display:none", got)
	}
	logic, ok := wrap.AttrValue("data-conditional-logic")
	if !ok || !strings.Contains(logic, `"fieldId":"shift"`) {
		t.Fatalf("data-conditional-logic = %q", logic)
	}
}

func TestBuildConditionalFieldVisibleWhenMet(t *testing.T) {
	form := mustBuild(t, testSchema(), render.Options{Values: map[string]any{"shift": "pm"}})

	wrap := form.Find(htmlnode.ByAttr("data-field-id", "other"))
	if _, ok := wrap.AttrValue("style"); ok {
		t.Fatal("condition met, wrapper should not be hidden")
	}
}

func TestBuildUnknownTypeFallsBackToText(t *testing.T) {
	s := model.FormSchema{
		ID:     "f",
		Fields: []model.FieldDef{{ID: "mystery", Type: "signature", Label: "Sign", Order: 1}},
	}
	form := mustBuild(t, s, render.Options{})

	in := form.Find(htmlnode.ByAttr("name", "mystery"))
	if in == nil {
		t.Fatal("fallback input missing")
	}
	if got, _ := in.AttrValue("type"); got != "text" {
		t.Fatalf("fallback input type = %q, want text", got)
	}
}

func TestBuildAutoFetch(t *testing.T) {
	s := model.FormSchema{
		ID: "f",
		Fields: []model.FieldDef{
			{ID: "email", Type: model.FieldTypeEmail, Label: "Email", Order: 1,
				AutoFetch: &model.AutoFetch{Enabled: true, Field: "email", Mode: model.AutoFetchReadonly}},
			{ID: "gh", Type: model.FieldTypeText, Label: "GitHub", Order: 2,
				AutoFetch: &model.AutoFetch{Enabled: true, Field: "githubUsername", Mode: model.AutoFetchHidden}},
			{ID: "phone", Type: model.FieldTypeTel, Label: "Phone", Order: 3,
				AutoFetch: &model.AutoFetch{Enabled: true, Field: "phone", Mode: model.AutoFetchReadonly}},
		},
	}
	p := profile.Profile{Email: "dev@example.org", GithubUsername: "octocat"}
	form := mustBuild(t, s, render.Options{Profile: p})

	email := form.Find(htmlnode.ByAttr("name", "email"))
	if got, _ := email.AttrValue("value"); got != "dev@example.org" {
		t.Fatalf("email value = %q", got)
	}
	if _, ok := email.AttrValue("readonly"); !ok {
		t.Fatal("readonly mode should lock the input")
	}

	gh := form.Find(htmlnode.ByAttr("data-field-id", "gh"))
	if got, _ := gh.AttrValue("style"); got != "display:none" {
		t.Fatal("hidden mode should hide the wrapper")
	}
	in := gh.Find(htmlnode.ByAttr("name", "gh"))
	if got, _ := in.AttrValue("value"); got != "octocat" {
		t.Fatalf("hidden auto-fetched value = %q, want it kept for submission", got)
	}

	// Unresolvable profile field keeps normal editability.
	phone := form.Find(htmlnode.ByAttr("name", "phone"))
	if _, ok := phone.AttrValue("readonly"); ok {
		t.Fatal("missing profile value must not lock the input")
	}
}

func TestBuildSubmittedValueWinsOverAutoFetch(t *testing.T) {
	s := model.FormSchema{
		ID: "f",
		Fields: []model.FieldDef{
			{ID: "email", Type: model.FieldTypeEmail, Order: 1,
				AutoFetch: &model.AutoFetch{Enabled: true, Field: "email", Mode: model.AutoFetchPrefilled}},
		},
	}
	form := mustBuild(t, s, render.Options{
		Values:  map[string]any{"email": "typed@example.org"},
		Profile: profile.Profile{Email: "dev@example.org"},
	})

	in := form.Find(htmlnode.ByAttr("name", "email"))
	if got, _ := in.AttrValue("value"); got != "typed@example.org" {
		t.Fatalf("value = %q, submitted value should win", got)
	}
}

func TestBuildFieldErrors(t *testing.T) {
	form := mustBuild(t, testSchema(), render.Options{
		Errors: map[string][]string{"name": {"Name is required."}},
	})

	wrap := form.Find(htmlnode.ByAttr("data-field-id", "name"))
	errs := wrap.Find(func(e *htmlnode.Element) bool { return e.HasClass(string(ClassErrors)) })
	if errs == nil || !strings.Contains(errs.TextContent(), "Name is required.") {
		t.Fatalf("expected inline error, got %v", errs)
	}
}

func TestBuildSanitizesHelpAndIcon(t *testing.T) {
	s := model.FormSchema{
		ID:       "f",
		Sections: []model.SectionDef{{ID: "a", Title: "A", Order: 1, Icon: `<img src=x onerror=alert(1)><i class="fas fa-cog"></i>`}},
		Fields: []model.FieldDef{
			{ID: "x", Type: model.FieldTypeText, Order: 1, SectionID: "a",
				HelpText: `Use <strong>lowercase</strong><script>alert(1)</script>`},
		},
	}
	html := string(mustRender(t, s))

	if strings.Contains(html, "<script") || strings.Contains(html, "onerror") || strings.Contains(html, "<img") {
		t.Fatalf("unsafe markup leaked: %s", html)
	}
	if !strings.Contains(html, "<strong>lowercase</strong>") {
		t.Fatal("allowed inline formatting was stripped")
	}
	if !strings.Contains(html, `fa-cog`) {
		t.Fatal("icon markup missing")
	}
}

func mustRender(t *testing.T, s model.FormSchema) []byte {
	t.Helper()
	out, err := New().Render(context.Background(), s, render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

func TestBuildTheme(t *testing.T) {
	cfg := &theme.RendererConfig{
		Theme:   "community",
		Variant: "dark",
		Tokens:  map[string]string{"form": "theme-community"},
		CSSVars: map[string]string{"--ff-accent": "#0f766e"},
	}
	form := mustBuild(t, testSchema(), render.Options{})
	themed, err := New(WithTheme(cfg)).Build(testSchema(), render.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, ok := form.AttrValue("data-theme"); ok {
		t.Fatal("unthemed form should carry no theme attributes")
	}
	if got, _ := themed.AttrValue("data-theme"); got != "community" {
		t.Fatalf("data-theme = %q", got)
	}
	if got, _ := themed.AttrValue("data-theme-variant"); got != "dark" {
		t.Fatalf("data-theme-variant = %q", got)
	}
	if !themed.HasClass("theme-community") {
		t.Fatal("form token class missing")
	}
	style := themed.Find(htmlnode.ByTag("style"))
	if style == nil || !strings.Contains(style.Render(), "--ff-accent: #0f766e;") {
		t.Fatalf("css vars block missing: %v", style)
	}
}

func TestBuildWidthClamp(t *testing.T) {
	s := model.FormSchema{
		ID: "f",
		Fields: []model.FieldDef{
			{ID: "a", Type: model.FieldTypeText, Order: 1, Width: 6},
			{ID: "b", Type: model.FieldTypeText, Order: 2, Width: 40},
		},
	}
	form := mustBuild(t, s, render.Options{})

	if !form.Find(htmlnode.ByAttr("data-field-id", "a")).HasClass("field-width-6") {
		t.Fatal("width 6 not applied")
	}
	if !form.Find(htmlnode.ByAttr("data-field-id", "b")).HasClass("field-width-12") {
		t.Fatal("out-of-range width should clamp to 12")
	}
}

func TestBuildControlOverride(t *testing.T) {
	override := func(field model.FieldDef, _ FieldState) *htmlnode.Element {
		return htmlnode.El("div").Class("custom-widget").Attr("data-for", field.ID)
	}
	form, err := New(WithControl(model.KindText, override)).Build(testSchema(), render.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if form.Find(htmlnode.ByAttr("data-for", "name")) == nil {
		t.Fatal("override control not used")
	}
}

func TestAssetsBundle(t *testing.T) {
	if Stylesheet() == "" {
		t.Fatal("stylesheet missing from bundle")
	}
	js := RuntimeScript()
	if js == "" {
		t.Fatal("runtime script missing from bundle")
	}
	if !strings.Contains(js, "data-conditional-logic") {
		t.Fatal("runtime script should read conditional logic metadata")
	}
}
