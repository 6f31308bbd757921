package visibility

import (
	"testing"

	"github.com/vstopensource/formfill/pkg/model"
)

func conditional(conds ...model.Condition) *model.ConditionalLogic {
	return &model.ConditionalLogic{Enabled: true, Conditions: conds}
}

func schemaWith(fields ...model.FieldDef) model.FormSchema {
	return model.FormSchema{ID: "f", Fields: fields}
}

func TestVisible_EqualsAndNotEquals(t *testing.T) {
	dependent := model.FieldDef{
		ID:               "details",
		ConditionalLogic: conditional(model.Condition{FieldID: "kind", Operator: model.OperatorEquals, Value: "other"}),
	}
	eval := New(schemaWith(model.FieldDef{ID: "kind"}, dependent))

	if eval.Visible(dependent, Values{"kind": "other"}) != true {
		t.Fatal("equals: expected visible")
	}
	if eval.Visible(dependent, Values{"kind": "member"}) != false {
		t.Fatal("equals: expected hidden")
	}

	dependent.ConditionalLogic = conditional(model.Condition{FieldID: "kind", Operator: model.OperatorNotEquals, Value: "other"})
	if eval.Visible(dependent, Values{"kind": "member"}) != true {
		t.Fatal("not_equals: expected visible")
	}
}

func TestVisible_ContainsArrayAndSubstring(t *testing.T) {
	dependent := model.FieldDef{
		ID:               "gh",
		ConditionalLogic: conditional(model.Condition{FieldID: "interests", Operator: model.OperatorContains, Value: "opensource"}),
	}
	eval := New(schemaWith(model.FieldDef{ID: "interests"}, dependent))

	if !eval.Visible(dependent, Values{"interests": []string{"opensource", "events"}}) {
		t.Fatal("array membership: expected visible")
	}
	if eval.Visible(dependent, Values{"interests": []string{"events"}}) {
		t.Fatal("array membership: expected hidden")
	}
	if !eval.Visible(dependent, Values{"interests": "opensource contributor"}) {
		t.Fatal("substring: expected visible")
	}
}

func TestVisible_FailOpen(t *testing.T) {
	missingTarget := model.FieldDef{
		ID:               "a",
		ConditionalLogic: conditional(model.Condition{FieldID: "deleted", Operator: model.OperatorEquals, Value: "x"}),
	}
	unknownOp := model.FieldDef{
		ID:               "b",
		ConditionalLogic: conditional(model.Condition{FieldID: "a", Operator: "starts_with", Value: "x"}),
	}
	eval := New(schemaWith(missingTarget, unknownOp))

	if !eval.Visible(missingTarget, Values{}) {
		t.Fatal("condition on deleted field must be vacuously true")
	}
	if !eval.Visible(unknownOp, Values{"a": "y"}) {
		t.Fatal("unknown operator must evaluate true")
	}
}

func TestVisible_ConditionsAreANDed(t *testing.T) {
	dependent := model.FieldDef{
		ID: "c",
		ConditionalLogic: conditional(
			model.Condition{FieldID: "a", Operator: model.OperatorEquals, Value: "1"},
			model.Condition{FieldID: "b", Operator: model.OperatorEquals, Value: "2"},
		),
	}
	eval := New(schemaWith(model.FieldDef{ID: "a"}, model.FieldDef{ID: "b"}, dependent))

	if !eval.Visible(dependent, Values{"a": "1", "b": "2"}) {
		t.Fatal("both conditions met: expected visible")
	}
	if eval.Visible(dependent, Values{"a": "1", "b": "3"}) {
		t.Fatal("one condition failing must hide the field")
	}
}

func TestVisible_ExpressionRule(t *testing.T) {
	dependent := model.FieldDef{
		ID:               "x",
		ConditionalLogic: &model.ConditionalLogic{Enabled: true, Expression: `role == "mentor"`},
	}
	eval := New(schemaWith(model.FieldDef{ID: "role"}, dependent))

	if !eval.Visible(dependent, Values{"role": "mentor"}) {
		t.Fatal("expression true: expected visible")
	}
	if eval.Visible(dependent, Values{"role": "mentee"}) {
		t.Fatal("expression false: expected hidden")
	}

	dependent.ConditionalLogic.Expression = `role == ` // malformed
	if !eval.Visible(dependent, Values{}) {
		t.Fatal("malformed expression must fail open")
	}
}

func TestVisibleSet_FieldsWithoutLogicAlwaysVisible(t *testing.T) {
	eval := New(schemaWith(model.FieldDef{ID: "plain"}, model.FieldDef{
		ID:               "gated",
		ConditionalLogic: conditional(model.Condition{FieldID: "plain", Operator: model.OperatorEquals, Value: "go"}),
	}))

	set := eval.VisibleSet(Values{"plain": "stop"})
	if !set["plain"] {
		t.Fatal("plain field must be visible")
	}
	if set["gated"] {
		t.Fatal("gated field must be hidden")
	}
}
