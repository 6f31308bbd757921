// Package visibility decides which fields of a form are currently shown,
// recomputed in full from the live value map on every change. Evaluation is
// deliberately fail-open: a condition pointing at a field the schema no longer
// contains, or carrying an operator we do not recognise, counts as satisfied
// so structural drift never hides a field.
package visibility

import (
	"strings"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/visibility/expr"
)

// Values holds live field values keyed by field id.
type Values map[string]any

// Evaluator computes conditional-logic visibility for one schema.
type Evaluator struct {
	schema   model.FormSchema
	fieldIDs map[string]struct{}
}

// New builds an evaluator for the schema.
func New(schema model.FormSchema) *Evaluator {
	ids := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		ids[field.ID] = struct{}{}
	}
	return &Evaluator{schema: schema, fieldIDs: ids}
}

// Visible reports whether the field's conditional logic currently shows it.
// Fields without conditional logic are always visible. The hidden attribute
// and auto-fetch hidden mode are display concerns handled by renderers; they
// do not feed into this computation.
func (e *Evaluator) Visible(field model.FieldDef, values Values) bool {
	logic := field.ConditionalLogic
	if logic == nil || !logic.Enabled {
		return true
	}

	for _, cond := range logic.Conditions {
		if !e.evalCondition(cond, values) {
			return false
		}
	}

	if rule := strings.TrimSpace(logic.Expression); rule != "" {
		ok, err := expr.Eval(rule, values)
		if err != nil {
			// Malformed rules fail open like unknown operators.
			return true
		}
		return ok
	}
	return true
}

// VisibleSet returns the visibility of every field in the schema.
func (e *Evaluator) VisibleSet(values Values) map[string]bool {
	out := make(map[string]bool, len(e.schema.Fields))
	for _, field := range e.schema.Fields {
		out[field.ID] = e.Visible(field, values)
	}
	return out
}

func (e *Evaluator) evalCondition(cond model.Condition, values Values) bool {
	if _, known := e.fieldIDs[cond.FieldID]; !known {
		return true
	}

	target := values[cond.FieldID]
	switch cond.Operator {
	case model.OperatorEquals:
		return equalValues(target, cond.Value)
	case model.OperatorNotEquals:
		return !equalValues(target, cond.Value)
	case model.OperatorContains:
		if items, ok := model.SliceValue(target); ok {
			want := model.StringValue(cond.Value)
			for _, item := range items {
				if item == want {
					return true
				}
			}
			return false
		}
		return strings.Contains(model.StringValue(target), model.StringValue(cond.Value))
	default:
		return true
	}
}

func equalValues(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if an, ok := model.NumberValue(a); ok {
		if bn, ok := model.NumberValue(b); ok {
			return an == bn
		}
	}
	return model.StringValue(a) == model.StringValue(b)
}
