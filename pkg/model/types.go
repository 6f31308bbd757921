package model

import "time"

// FieldType is the wire-level type tag carried by a field definition. The set
// is open on the wire (schemas written by older builders may carry tags we do
// not know about); Kind() folds every tag into the closed Kind enum, with
// unknown tags treated as plain text inputs.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeEmail       FieldType = "email"
	FieldTypeNumber      FieldType = "number"
	FieldTypeTel         FieldType = "tel"
	FieldTypeURL         FieldType = "url"
	FieldTypePassword    FieldType = "password"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeDropdown    FieldType = "dropdown"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeDate        FieldType = "date"
	FieldTypeTime        FieldType = "time"
	FieldTypeRating      FieldType = "rating"
	FieldTypeScale       FieldType = "scale"
	FieldTypePageBreak   FieldType = "pagebreak"
	FieldTypeHidden      FieldType = "hidden"
)

// Kind is the closed enumeration renderers dispatch on. Each kind owns its
// payload conventions: KindScale reads Validation.Min/Max plus Step, KindRating
// reads StarCount, the choice kinds read Options.
type Kind int

const (
	KindText Kind = iota
	KindTextarea
	KindDropdown
	KindMultiselect
	KindCheckbox
	KindRadio
	KindDate
	KindTime
	KindRating
	KindScale
	KindPageBreak
	KindHidden
)

// Kind folds the wire tag into the closed render kind. Unrecognised tags fall
// back to KindText so schemas from newer builders degrade to an editable text
// input instead of failing the render.
func (t FieldType) Kind() Kind {
	switch t {
	case FieldTypeTextarea:
		return KindTextarea
	case FieldTypeDropdown:
		return KindDropdown
	case FieldTypeMultiselect:
		return KindMultiselect
	case FieldTypeCheckbox:
		return KindCheckbox
	case FieldTypeRadio:
		return KindRadio
	case FieldTypeDate:
		return KindDate
	case FieldTypeTime:
		return KindTime
	case FieldTypeRating:
		return KindRating
	case FieldTypeScale:
		return KindScale
	case FieldTypePageBreak:
		return KindPageBreak
	case FieldTypeHidden:
		return KindHidden
	default:
		return KindText
	}
}

// InputType returns the HTML input type attribute for text-like fields.
func (t FieldType) InputType() string {
	switch t {
	case FieldTypeEmail, FieldTypeNumber, FieldTypeTel, FieldTypeURL, FieldTypePassword:
		return string(t)
	default:
		return "text"
	}
}

// Multivalued reports whether the field kind carries a slice value.
func (k Kind) Multivalued() bool {
	return k == KindMultiselect || k == KindCheckbox
}

// Validation carries the constraint block attached to a field. Pointer fields
// distinguish "absent" from zero; min/max double as the scale slider bounds.
type Validation struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// AutoFetchMode selects how a resolved profile value is applied to a field.
type AutoFetchMode string

const (
	AutoFetchPrefilled AutoFetchMode = "prefilled"
	AutoFetchReadonly  AutoFetchMode = "readonly"
	AutoFetchHidden    AutoFetchMode = "hidden"
)

// AutoFetch describes prefilling a field from the signed-in member's profile.
type AutoFetch struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Field   string        `json:"field" yaml:"field"`
	Mode    AutoFetchMode `json:"mode" yaml:"mode"`
}

// ConditionOperator identifies one comparison inside a visibility condition.
type ConditionOperator string

const (
	OperatorEquals    ConditionOperator = "equals"
	OperatorNotEquals ConditionOperator = "not_equals"
	OperatorContains  ConditionOperator = "contains"
)

// Condition is one declarative visibility rule: compare the live value of
// FieldID against Value using Operator.
type Condition struct {
	FieldID  string            `json:"fieldId" yaml:"fieldId"`
	Operator ConditionOperator `json:"operator" yaml:"operator"`
	Value    any               `json:"value" yaml:"value"`
}

// ConditionalLogic gates a field's visibility. Conditions are AND-ed;
// Expression is an optional advanced rule string evaluated alongside them.
type ConditionalLogic struct {
	Enabled    bool        `json:"enabled" yaml:"enabled"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Expression string      `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// FieldDef models one input unit within a form.
type FieldDef struct {
	ID               string            `json:"id" yaml:"id"`
	Type             FieldType         `json:"type" yaml:"type"`
	Label            string            `json:"label,omitempty" yaml:"label,omitempty"`
	Required         bool              `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly         bool              `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Hidden           bool              `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	DefaultValue     any               `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Placeholder      string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText         string            `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Order            int               `json:"order" yaml:"order"`
	Width            int               `json:"width,omitempty" yaml:"width,omitempty"`
	SectionID        string            `json:"sectionId,omitempty" yaml:"sectionId,omitempty"`
	Rows             int               `json:"rows,omitempty" yaml:"rows,omitempty"`
	Options          []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Validation       *Validation       `json:"validation,omitempty" yaml:"validation,omitempty"`
	AutoFetch        *AutoFetch        `json:"autoFetch,omitempty" yaml:"autoFetch,omitempty"`
	ConditionalLogic *ConditionalLogic `json:"conditionalLogic,omitempty" yaml:"conditionalLogic,omitempty"`
	StarCount        int               `json:"starCount,omitempty" yaml:"starCount,omitempty"`
	Step             float64           `json:"step,omitempty" yaml:"step,omitempty"`
}

// BackgroundStyle selects the visual treatment of a section block.
type BackgroundStyle string

const (
	BackgroundDefault BackgroundStyle = "default"
	BackgroundCard    BackgroundStyle = "card"
	BackgroundLight   BackgroundStyle = "light"
)

// SectionDef groups fields under a shared heading.
type SectionDef struct {
	ID                string          `json:"id" yaml:"id"`
	Title             string          `json:"title,omitempty" yaml:"title,omitempty"`
	Description       string          `json:"description,omitempty" yaml:"description,omitempty"`
	Icon              string          `json:"icon,omitempty" yaml:"icon,omitempty"`
	Order             int             `json:"order" yaml:"order"`
	BackgroundStyle   BackgroundStyle `json:"backgroundStyle,omitempty" yaml:"backgroundStyle,omitempty"`
	ShowSectionNumber bool            `json:"showSectionNumber,omitempty" yaml:"showSectionNumber,omitempty"`
}

// FormStatus is the lifecycle state of a form.
type FormStatus string

const (
	StatusDraft    FormStatus = "draft"
	StatusActive   FormStatus = "active"
	StatusArchived FormStatus = "archived"
)

// RedirectType selects where the success view sends the member afterwards.
type RedirectType string

const (
	RedirectSamePage  RedirectType = "same-page"
	RedirectDashboard RedirectType = "dashboard"
	RedirectCustom    RedirectType = "custom"
)

// Settings carries the form-level availability and post-submit behaviour.
type Settings struct {
	StartDate                *time.Time   `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate                  *time.Time   `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	AllowMultipleSubmissions bool         `json:"allowMultipleSubmissions,omitempty" yaml:"allowMultipleSubmissions,omitempty"`
	ConfirmationMessage      string       `json:"confirmationMessage,omitempty" yaml:"confirmationMessage,omitempty"`
	RedirectType             RedirectType `json:"redirectType,omitempty" yaml:"redirectType,omitempty"`
	RedirectURL              string       `json:"redirectUrl,omitempty" yaml:"redirectUrl,omitempty"`
}

// FormSchema is the declarative description of a form, fetched read-only from
// the document store per render.
type FormSchema struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Status      FormStatus   `json:"status" yaml:"status"`
	Settings    Settings     `json:"settings" yaml:"settings"`
	Fields      []FieldDef   `json:"fields" yaml:"fields"`
	Sections    []SectionDef `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Field returns the field definition with the given id, or nil.
func (s *FormSchema) Field(id string) *FieldDef {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i]
		}
	}
	return nil
}

// UserInfo is the denormalised member snapshot embedded in each submission.
type UserInfo struct {
	Name           string `json:"name" yaml:"name"`
	Email          string `json:"email" yaml:"email"`
	GithubUsername string `json:"githubUsername,omitempty" yaml:"githubUsername,omitempty"`
	PhotoURL       string `json:"photoURL,omitempty" yaml:"photoURL,omitempty"`
}

// SubmissionRecord is one stored answer set. Created once per successful
// submission and never mutated afterwards.
type SubmissionRecord struct {
	ID             string         `json:"id,omitempty" yaml:"id,omitempty"`
	FormID         string         `json:"formId" yaml:"formId"`
	SubmittedAt    time.Time      `json:"submittedAt" yaml:"submittedAt"`
	SubmittedBy    string         `json:"submittedBy,omitempty" yaml:"submittedBy,omitempty"`
	UserID         string         `json:"userId" yaml:"userId"`
	UserInfo       UserInfo       `json:"userInfo" yaml:"userInfo"`
	Data           map[string]any `json:"data" yaml:"data"`
	CompletionTime int64          `json:"completionTime" yaml:"completionTime"`
}

// FormTracking aggregates one member's submissions against a single form.
type FormTracking struct {
	Count           int        `json:"count" yaml:"count"`
	SubmissionIDs   []string   `json:"submissionIds" yaml:"submissionIds"`
	FormName        string     `json:"formName,omitempty" yaml:"formName,omitempty"`
	CanResubmit     bool       `json:"canResubmit" yaml:"canResubmit"`
	LastSubmittedAt *time.Time `json:"lastSubmittedAt,omitempty" yaml:"lastSubmittedAt,omitempty"`
}

// TrackingRecord is the per-member aggregate, merged on every submission.
type TrackingRecord struct {
	Submissions map[string]FormTracking `json:"submissions" yaml:"submissions"`
	LastUpdated time.Time               `json:"lastUpdated" yaml:"lastUpdated"`
}
