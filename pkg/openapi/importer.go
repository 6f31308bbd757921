// Package openapi bootstraps form schemas from OpenAPI 3 documents. One
// operation's request body becomes a draft form: object properties map to
// fields, the required list sets the required flags, and length/range
// constraints carry over into the validation block. The result is a starting
// point for an author, not a finished form, so it comes back in draft status.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/schema"
)

// ErrOperationNotFound reports that no operation in the document matched the
// requested identifier.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// ErrNoRequestBody reports that the matched operation carries no usable
// request body schema.
var ErrNoRequestBody = errors.New("openapi: operation has no request body schema")

// requestMediaTypes is the preference order when an operation offers more
// than one request content type.
var requestMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// Importer converts OpenAPI operations into draft form schemas.
type Importer struct {
	resolveRefs bool
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithExternalRefs allows the loader to follow references outside the
// document itself.
func WithExternalRefs(allow bool) ImporterOption {
	return func(i *Importer) {
		i.resolveRefs = allow
	}
}

// New constructs an Importer.
func New(opts ...ImporterOption) *Importer {
	imp := &Importer{}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Operations lists the operation identifiers in the document, sorted.
// Operations without an explicit operationId are listed under the
// "method:path" fallback used by Import.
func (i *Importer) Operations(ctx context.Context, raw []byte) ([]string, error) {
	spec, err := i.load(ctx, raw)
	if err != nil {
		return nil, err
	}
	var ids []string
	walkOperations(spec, func(id string, _ *openapi3.Operation) bool {
		ids = append(ids, id)
		return false
	})
	sort.Strings(ids)
	return ids, nil
}

// Import locates an operation by operationId (or by the lowercased
// "method:path" fallback) and converts its request body schema into a draft
// FormSchema.
func (i *Importer) Import(ctx context.Context, raw []byte, operationID string) (model.FormSchema, error) {
	spec, err := i.load(ctx, raw)
	if err != nil {
		return model.FormSchema{}, err
	}

	var matched *openapi3.Operation
	walkOperations(spec, func(id string, op *openapi3.Operation) bool {
		if id == operationID {
			matched = op
			return true
		}
		return false
	})
	if matched == nil {
		return model.FormSchema{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	body := requestSchema(matched.RequestBody)
	if body == nil || len(body.Properties) == 0 {
		return model.FormSchema{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	out := model.FormSchema{
		ID:          slugify(operationID),
		Name:        firstNonEmpty(matched.Summary, humanize(operationID)),
		Description: strings.TrimSpace(matched.Description),
		Status:      model.StatusDraft,
	}
	out.Fields = convertProperties(body)
	schema.ApplyDefaults(&out)
	return out, nil
}

func (i *Importer) load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.resolveRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document has no paths")
	}
	return spec, nil
}

// walkOperations visits every operation in the document. The visitor returns
// true to stop the walk.
func walkOperations(spec *openapi3.T, visit func(id string, op *openapi3.Operation) bool) {
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if visit(id, op) {
				return
			}
		}
	}
}

// requestSchema picks the request body schema to import, preferring JSON over
// the form encodings.
func requestSchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	content := ref.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok {
			return schemaValue(mt.Schema)
		}
	}
	for _, mt := range content {
		return schemaValue(mt.Schema)
	}
	return nil
}

func schemaValue(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref == nil {
		return nil
	}
	return ref.Value
}

// convertProperties turns an object schema's properties into field
// definitions. kin-openapi hands properties back as a map, so declaration
// order is gone by the time we see them: fields named in the required list
// lead in that order, the rest follow alphabetically.
func convertProperties(body *openapi3.Schema) []model.FieldDef {
	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	names := make([]string, 0, len(body.Properties))
	for _, name := range body.Required {
		if _, ok := body.Properties[name]; ok {
			names = append(names, name)
		}
	}
	var rest []string
	for name := range body.Properties {
		if !required[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	fields := make([]model.FieldDef, 0, len(names))
	for idx, name := range names {
		prop := schemaValue(body.Properties[name])
		if prop == nil {
			continue
		}
		field := convertField(name, prop)
		field.Required = required[name]
		field.Order = idx
		fields = append(fields, field)
	}
	return fields
}

func convertField(name string, prop *openapi3.Schema) model.FieldDef {
	field := model.FieldDef{
		ID:           name,
		Label:        firstNonEmpty(prop.Title, humanize(name)),
		HelpText:     strings.TrimSpace(prop.Description),
		DefaultValue: prop.Default,
	}

	switch schemaType(prop) {
	case "boolean":
		field.Type = model.FieldTypeRadio
		field.Options = []model.Option{
			{Value: "yes", Label: "Yes"},
			{Value: "no", Label: "No"},
		}
	case "integer", "number":
		field.Type = model.FieldTypeNumber
		field.Validation = numericValidation(prop)
	case "array":
		items := schemaValue(prop.Items)
		if items != nil && len(items.Enum) > 0 {
			field.Type = model.FieldTypeMultiselect
			field.Options = enumOptions(items.Enum)
		} else {
			field.Type = model.FieldTypeTextarea
		}
	default:
		convertStringField(&field, prop)
	}
	return field
}

func convertStringField(field *model.FieldDef, prop *openapi3.Schema) {
	if len(prop.Enum) > 0 {
		field.Type = model.FieldTypeDropdown
		field.Options = enumOptions(prop.Enum)
		return
	}

	switch prop.Format {
	case "email":
		field.Type = model.FieldTypeEmail
	case "date":
		field.Type = model.FieldTypeDate
	case "date-time":
		field.Type = model.FieldTypeDate
	case "time":
		field.Type = model.FieldTypeTime
	case "password":
		field.Type = model.FieldTypePassword
	case "uri", "url":
		field.Type = model.FieldTypeURL
	case "phone", "tel":
		field.Type = model.FieldTypeTel
	default:
		field.Type = model.FieldTypeText
	}

	field.Validation = lengthValidation(prop)
	if field.Type == model.FieldTypeText && prop.MaxLength != nil && *prop.MaxLength > 255 {
		field.Type = model.FieldTypeTextarea
	}
}

func lengthValidation(prop *openapi3.Schema) *model.Validation {
	v := &model.Validation{Pattern: prop.Pattern}
	if prop.MinLength > 0 {
		minLen := int(prop.MinLength)
		v.MinLength = &minLen
	}
	if prop.MaxLength != nil {
		maxLen := int(*prop.MaxLength)
		v.MaxLength = &maxLen
	}
	if v.MinLength == nil && v.MaxLength == nil && v.Pattern == "" {
		return nil
	}
	return v
}

func numericValidation(prop *openapi3.Schema) *model.Validation {
	if prop.Min == nil && prop.Max == nil {
		return nil
	}
	v := &model.Validation{}
	if prop.Min != nil {
		minVal := *prop.Min
		v.Min = &minVal
	}
	if prop.Max != nil {
		maxVal := *prop.Max
		v.Max = &maxVal
	}
	return v
}

func enumOptions(values []any) []model.Option {
	opts := make([]model.Option, 0, len(values))
	for _, value := range values {
		str := fmt.Sprint(value)
		opts = append(opts, model.Option{Value: str, Label: humanize(str)})
	}
	return opts
}

func schemaType(prop *openapi3.Schema) string {
	if prop.Type == nil {
		return ""
	}
	values := prop.Type.Slice()
	for _, value := range values {
		if value != "null" {
			return value
		}
	}
	return ""
}

// humanize turns an identifier like "contactEmail" or "contact_email" into
// "Contact Email".
func humanize(id string) string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range id {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == ':' || r == '/':
			flush()
		case unicode.IsUpper(r):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func slugify(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	lastDash := true
	for _, r := range id {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
