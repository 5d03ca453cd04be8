// Package tristate implements settings that are either unset, switched on
// with their computed default, or given an explicit value.
//
// In a manifest the three forms are written as:
//
//	publish_csr: false            # Unset
//	publish_csr: true             # Default
//	publish_csr: /srv/pub/a.csr   # Explicit("/srv/pub/a.csr")
//
// A missing key is Unset. An empty string is also Unset.
package tristate

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind tags which form a Value holds.
type Kind int

const (
	Unset Kind = iota
	Default
	Explicit
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Unset:
		return "unset"
	case Default:
		return "default"
	case Explicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Value is a tagged {Unset, Default, Explicit(string)} variant.
// The zero Value is Unset.
type Value struct {
	kind Kind
	val  string
}

// Off returns an Unset value.
func Off() Value { return Value{} }

// On returns a Default value.
func On() Value { return Value{kind: Default} }

// Of returns an Explicit value. An empty string yields Unset.
func Of(v string) Value {
	if v == "" {
		return Value{}
	}
	return Value{kind: Explicit, val: v}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsUnset reports whether the value is Unset.
func (v Value) IsUnset() bool { return v.kind == Unset }

// IsSet reports whether the value is Default or Explicit.
func (v Value) IsSet() bool { return v.kind != Unset }

// Explicit returns the explicit value and whether there is one.
func (v Value) Explicit() (string, bool) {
	return v.val, v.kind == Explicit
}

// Or returns the explicit value, or def for Unset and Default.
func (v Value) Or(def string) string {
	if v.kind == Explicit {
		return v.val
	}
	return def
}

// String renders the value the way it is written in a manifest.
func (v Value) String() string {
	switch v.kind {
	case Default:
		return "true"
	case Explicit:
		return v.val
	default:
		return "false"
	}
}

// Parse interprets a flag or manifest scalar: "true" selects Default,
// "false" and "" select Unset, anything else is Explicit.
func Parse(s string) Value {
	switch s {
	case "true":
		return On()
	case "false", "":
		return Off()
	default:
		return Of(s)
	}
}

// IsZero lets yaml omitempty drop Unset values.
func (v Value) IsZero() bool { return v.kind == Unset }

// UnmarshalYAML accepts booleans, strings and null.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected false, true or a string", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*v = Off()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			*v = On()
		} else {
			*v = Off()
		}
	default:
		*v = Of(node.Value)
	}
	return nil
}

// MarshalYAML writes Unset and Default as booleans.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case Default:
		return true, nil
	case Explicit:
		return v.val, nil
	default:
		return false, nil
	}
}

// MarshalJSON mirrors MarshalYAML.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Default:
		return []byte("true"), nil
	case Explicit:
		return json.Marshal(v.val)
	default:
		return []byte("false"), nil
	}
}
