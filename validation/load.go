package validation

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a rule set from a YAML mapping of field ids to rule
// strings. Field order follows the document.
//
//	email: required|email|max:255
//	password: required@create|min:8
func LoadYAML(r io.Reader) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("validation: decode: %w", err)
	}
	rs := New()
	if len(doc.Content) == 0 {
		return rs, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("validation: line %d: mapping of field rules expected", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("validation: line %d: rules of %q must be a string", value.Line, key.Value)
		}
		if err := rs.Set(key.Value, value.Value); err != nil {
			return nil, fmt.Errorf("validation: line %d: %w", value.Line, err)
		}
	}
	return rs, nil
}
