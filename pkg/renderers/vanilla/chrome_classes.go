package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm        ChromeClass = "formfill-form"
	ClassField       ChromeClass = "form-field"
	ClassSection     ChromeClass = "form-section"
	ClassSectionHead ChromeClass = "section-header"
	ClassActions     ChromeClass = "form-actions"
	ClassErrors      ChromeClass = "field-errors"
	ClassHelp        ChromeClass = "field-help"
	ClassReadonly    ChromeClass = "readonly"
)
