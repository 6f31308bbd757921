package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Option is one entry in a choice field. On the wire an option is either a
// bare string (used as both value and label) or an object with explicit
// value/label; both decode into the normalised pair.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type optionObject struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// UnmarshalJSON accepts either the bare-string or object form.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		o.Value = raw
		o.Label = raw
		return nil
	}

	var obj optionObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("model: decode option: %w", err)
	}
	o.Value = obj.Value
	o.Label = obj.Label
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

// UnmarshalYAML mirrors the JSON normalisation for YAML schema files.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var raw string
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("model: decode option: %w", err)
		}
		o.Value = raw
		o.Label = raw
		return nil
	}

	var obj optionObject
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("model: decode option: %w", err)
	}
	o.Value = obj.Value
	o.Label = obj.Label
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

// OptionValues returns the values of the provided options in declaration
// order.
func OptionValues(options []Option) []string {
	if len(options) == 0 {
		return nil
	}
	out := make([]string, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.Value)
	}
	return out
}
