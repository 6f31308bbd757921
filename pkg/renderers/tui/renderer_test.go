package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/profile"
	"github.com/vstopensource/formfill/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	textAreas    []string
	passwords    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	textPos      int
	passPos      int

	inputCfgs  []InputConfig
	selectCfgs []SelectConfig
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputCfgs = append(s.inputCfgs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	return false, errors.New("no confirm scripted")
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func promptSchema() model.FormSchema {
	return model.FormSchema{
		ID:     "feedback",
		Status: model.StatusActive,
		Fields: []model.FieldDef{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Order: 1, Required: true},
			{ID: "attend", Type: model.FieldTypeDropdown, Label: "Attending?", Order: 2,
				Options: []model.Option{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}}},
			{ID: "diet", Type: model.FieldTypeMultiselect, Label: "Diet", Order: 3,
				Options: []model.Option{{Value: "veg", Label: "Vegetarian"}, {Value: "gf", Label: "Gluten free"}},
				ConditionalLogic: &model.ConditionalLogic{
					Enabled:    true,
					Conditions: []model.Condition{{FieldID: "attend", Operator: model.OperatorEquals, Value: "yes"}},
				}},
			{ID: "stars", Type: model.FieldTypeRating, Label: "Rate us", Order: 4, StarCount: 3},
		},
	}
}

func TestRenderWalksFieldsInOrder(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada"},
		selectIdx: []int{0, 2}, // attend=yes, stars=3
		multiIdx:  [][]int{{1}},
	}
	out, err := New(WithPromptDriver(driver)).Render(context.Background(), promptSchema(), render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	want := map[string]any{
		"name":   "Ada",
		"attend": "yes",
		"diet":   []any{"gf"},
		"stars":  float64(3),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSkipsConditionallyHiddenField(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada"},
		selectIdx: []int{1, 0}, // attend=no, stars=1
	}
	out, err := New(WithPromptDriver(driver)).Render(context.Background(), promptSchema(), render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if _, ok := got["diet"]; ok {
		t.Fatal("diet should not be prompted nor collected when attend=no")
	}
	if driver.multiPos != 0 {
		t.Fatal("multiselect prompt fired for a hidden field")
	}
}

func TestRenderAutoFetchReadonlySkipsPrompt(t *testing.T) {
	s := model.FormSchema{
		ID: "f",
		Fields: []model.FieldDef{
			{ID: "email", Type: model.FieldTypeEmail, Label: "Email", Order: 1,
				AutoFetch: &model.AutoFetch{Enabled: true, Field: "email", Mode: model.AutoFetchReadonly}},
		},
	}
	driver := &stubDriver{}
	out, err := New(WithPromptDriver(driver)).Render(context.Background(), s, render.Options{
		Profile: profile.Profile{Email: "ada@example.org"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if driver.inputPos != 0 {
		t.Fatal("readonly auto-fetched field should not prompt")
	}
	if !strings.Contains(string(out), "ada@example.org") {
		t.Fatalf("auto-fetched value missing from output: %s", out)
	}

	var sawInfo bool
	for _, msg := range driver.infoMessages {
		if strings.Contains(msg, "ada@example.org") {
			sawInfo = true
		}
	}
	if !sawInfo {
		t.Fatal("readonly value should be announced")
	}
}

func TestRenderValidatorRejectsEmptyRequired(t *testing.T) {
	s := model.FormSchema{
		ID:     "f",
		Fields: []model.FieldDef{{ID: "name", Type: model.FieldTypeText, Label: "Name", Order: 1, Required: true}},
	}
	driver := &stubDriver{inputs: []string{""}}
	_, err := New(WithPromptDriver(driver)).Render(context.Background(), s, render.Options{})
	if err == nil {
		t.Fatal("expected validation failure to surface through the driver")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRenderSectionAnnouncements(t *testing.T) {
	s := model.FormSchema{
		ID: "f",
		Sections: []model.SectionDef{
			{ID: "a", Title: "About", Order: 1, ShowSectionNumber: true, Description: "Tell us about you"},
		},
		Fields: []model.FieldDef{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Order: 1, SectionID: "a"},
		},
	}
	driver := &stubDriver{inputs: []string{"Ada"}}
	if _, err := New(WithPromptDriver(driver)).Render(context.Background(), s, render.Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(driver.infoMessages) < 2 || driver.infoMessages[0] != "== 1. About ==" {
		t.Fatalf("section banner missing: %v", driver.infoMessages)
	}
}

func TestRenderOutputFormats(t *testing.T) {
	s := model.FormSchema{
		ID:     "f",
		Fields: []model.FieldDef{{ID: "name", Type: model.FieldTypeText, Label: "Name", Order: 1}},
	}

	r := New(WithPromptDriver(&stubDriver{inputs: []string{"Ada"}}), WithOutputFormat(OutputFormatPrettyText))
	out, err := r.Render(context.Background(), s, render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != "name=Ada\n" {
		t.Fatalf("pretty output = %q", out)
	}
	if r.ContentType() != "text/plain" {
		t.Fatalf("ContentType = %q", r.ContentType())
	}

	r = New(WithPromptDriver(&stubDriver{inputs: []string{"Ada"}}), WithOutputFormat(OutputFormatFormURLEncoded))
	out, err = r.Render(context.Background(), s, render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != "name=Ada" {
		t.Fatalf("form output = %q", out)
	}
}

func TestRenderSubmitTransformer(t *testing.T) {
	s := model.FormSchema{
		ID:     "f",
		Fields: []model.FieldDef{{ID: "name", Type: model.FieldTypeText, Label: "Name", Order: 1}},
	}
	transform := func(values map[string]any) (map[string]any, error) {
		values["extra"] = true
		return values, nil
	}
	out, err := New(WithPromptDriver(&stubDriver{inputs: []string{"Ada"}}), WithSubmitTransformer(transform)).
		Render(context.Background(), s, render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), `"extra":true`) {
		t.Fatalf("transformer output missing: %s", out)
	}
}
