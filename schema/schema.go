// Package schema generates structural object schemas for protobuf messages,
// for use as the definitions of a published API description.
package schema

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/metaverse/restdesc/deftree"
)

// DefinitionsPrefix is prepended to a message's full name to form a Ref.
const DefinitionsPrefix = "#/definitions/"

// Policy decides how much of a field's type is carried into its schema.
type Policy int

const (
	// PolicyPlaceholder renders every property as a string, whatever the
	// type of the field.
	PolicyPlaceholder Policy = iota
	// PolicyTyped maps scalar fields to JSON primitive types, repeated fields
	// to arrays, maps to objects and message fields to references.
	PolicyTyped
)

func (p Policy) String() string {
	switch p {
	case PolicyPlaceholder:
		return "placeholder"
	case PolicyTyped:
		return "typed"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy returns the Policy named s, as printed by String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "placeholder":
		return PolicyPlaceholder, nil
	case "typed":
		return PolicyTyped, nil
	}
	return 0, errors.Errorf("unknown schema policy %q, want placeholder or typed", s)
}

// Schema is a structural schema. Message schemas have Type "object" and
// ordered Properties; the other fields are only set by PolicyTyped.
type Schema struct {
	Type   string
	Format string
	// Ref refers to another message's schema, DefinitionsPrefix + full name.
	Ref                  string
	Items                *Schema
	AdditionalProperties *Schema
	Enum                 []string
	Properties           []Property
}

// Property is a named property of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Property returns the schema of the property named name, or nil.
func (s *Schema) Property(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// UnsupportedFieldTypeError is returned when a field's type has no schema
// mapping under the generator's policy.
type UnsupportedFieldTypeError struct {
	Message string
	Field   string
	Type    string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("field %s.%s has unsupported type %s", e.Message, e.Field, e.Type)
}

// Generator generates message schemas and remembers them for its lifetime,
// so each message is generated once and asking again returns the same
// *Schema. A Generator is not safe for concurrent use.
type Generator struct {
	Policy Policy
	reg    *Registry
}

// NewGenerator returns a Generator using policy.
func NewGenerator(policy Policy) *Generator {
	return &Generator{
		Policy: policy,
		reg:    NewRegistry(),
	}
}

// Registry returns every schema the generator has produced, keyed by message
// full name. Under PolicyTyped this includes the messages reached through
// references.
func (g *Generator) Registry() *Registry {
	return g.reg
}

// Generate returns the schema of msg. Properties are keyed by JSON name and
// ordered by ascending field number.
func (g *Generator) Generate(msg *deftree.Message) (*Schema, error) {
	if s, ok := g.reg.Lookup(msg.FullName); ok {
		return s, nil
	}

	// Register before filling properties so that cycles through message
	// references find this schema instead of recursing.
	s := &Schema{Type: "object", Properties: []Property{}}
	g.reg.Register(msg.FullName, s)

	for _, f := range msg.FieldsByNumber() {
		prop, err := g.field(f)
		if err != nil {
			g.reg.remove(msg.FullName)
			return nil, errors.Wrapf(err, "cannot generate schema for %s", msg.FullName)
		}
		s.Properties = append(s.Properties, Property{Name: f.JSONName, Schema: prop})
	}
	log.WithField("message", msg.FullName).
		WithField("properties", len(s.Properties)).
		Debug("generated schema")
	return s, nil
}

func (g *Generator) field(f *deftree.Field) (*Schema, error) {
	if g.Policy == PolicyPlaceholder {
		return &Schema{Type: "string"}, nil
	}

	if f.IsMap {
		value := f.Type.Message.FieldByName("value")
		if value == nil {
			return nil, &UnsupportedFieldTypeError{Message: f.Parent.FullName, Field: f.Name, Type: "map without value"}
		}
		vs, err := g.single(value)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: vs}, nil
	}

	item, err := g.single(f)
	if err != nil {
		return nil, err
	}
	if f.Repeated() {
		return &Schema{Type: "array", Items: item}, nil
	}
	return item, nil
}

// single returns the schema of one value of f, ignoring its label.
func (g *Generator) single(f *deftree.Field) (*Schema, error) {
	switch f.Type.Name {
	case deftree.TypeMessage:
		if _, err := g.Generate(f.Type.Message); err != nil {
			return nil, err
		}
		return &Schema{Ref: DefinitionsPrefix + f.Type.Message.FullName}, nil
	case deftree.TypeEnum:
		s := &Schema{Type: "string"}
		if f.Type.Enum != nil {
			for _, v := range f.Type.Enum.Values {
				s.Enum = append(s.Enum, v.Name)
			}
		}
		return s, nil
	}
	typ, format, ok := ScalarType(f.Type.Name)
	if !ok {
		return nil, &UnsupportedFieldTypeError{Message: f.Parent.FullName, Field: f.Name, Type: f.Type.Name}
	}
	return &Schema{Type: typ, Format: format}, nil
}

// ScalarType maps a scalar descriptor type name, such as "TYPE_INT32", to a
// JSON type and format. 64 bit integers are strings, as in the proto3 JSON
// mapping. ok is false for message, enum and group types.
func ScalarType(name string) (ftype, format string, ok bool) {
	switch name {
	case "TYPE_DOUBLE":
		return "number", "double", true
	case "TYPE_FLOAT":
		return "number", "float", true
	case "TYPE_INT64", "TYPE_SINT64", "TYPE_SFIXED64":
		return "string", "int64", true
	case "TYPE_UINT64", "TYPE_FIXED64":
		return "string", "uint64", true
	case "TYPE_INT32", "TYPE_SINT32", "TYPE_SFIXED32":
		return "integer", "int32", true
	case "TYPE_UINT32", "TYPE_FIXED32":
		return "integer", "int64", true
	case "TYPE_BOOL":
		return "boolean", "", true
	case "TYPE_STRING":
		return "string", "", true
	case "TYPE_BYTES":
		return "string", "byte", true
	default:
		return "", "", false
	}
}
