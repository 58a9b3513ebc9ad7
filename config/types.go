package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/syssam/gqlcodegen/compiler/gen"
)

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// BoolOrString is a YAML type that can be either a boolean or a path.
type BoolOrString struct {
	Enabled bool
	Path    string
}

// UnmarshalYAML implements yaml.Unmarshaler for BoolOrString.
func (b *BoolOrString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected boolean or string, got %v", node.Kind)
	}
	if node.ShortTag() == "!!bool" {
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return err
		}
		*b = BoolOrString{Enabled: enabled}
		return nil
	}
	*b = BoolOrString{Enabled: node.Value != "", Path: node.Value}
	return nil
}

// MarshalYAML implements yaml.Marshaler for BoolOrString.
func (b BoolOrString) MarshalYAML() (any, error) {
	if b.Path != "" {
		return b.Path, nil
	}
	return b.Enabled, nil
}

// IsZero lets omitempty drop a disabled value.
func (b BoolOrString) IsZero() bool {
	return !b.Enabled && b.Path == ""
}

// Target returns the output path, the default path when only enabled, or
// "" when disabled.
func (b BoolOrString) Target() string {
	switch {
	case !b.Enabled:
		return ""
	case b.Path == "":
		return gen.DefaultOutputSchemaPath
	default:
		return b.Path
	}
}
