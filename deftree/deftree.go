// Deftree, which stands for "definition tree", holds an immutable graph of the
// services, methods, messages, fields and enums of a set of protobuf
// definitions.
//
// A Tree is built once from protobuf descriptors by New or NewFromSet and is
// never modified afterwards. Messages refer to each other through the
// Message pointer of a FieldType, all of which point into the same Tree, so
// walking a dotted field path never needs the protobuf runtime's reflection
// facilities. Cycles between messages are possible and are left to callers
// to guard against.
package deftree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/metaverse/restdesc/httprule"
)

// Labels a field may carry, named after descriptorpb.FieldDescriptorProto_Label.
const (
	LabelOptional = "LABEL_OPTIONAL"
	LabelRequired = "LABEL_REQUIRED"
	LabelRepeated = "LABEL_REPEATED"
)

// Type names for the two non-scalar field types.
const (
	TypeMessage = "TYPE_MESSAGE"
	TypeEnum    = "TYPE_ENUM"
)

// prindent is a utility function for creating a formatted string with a given
// amount of indentation.
func prindent(depth int, format string, args ...interface{}) string {
	return strings.Repeat("    ", depth) + fmt.Sprintf(format, args...)
}

// Tree is the root of a definition tree.
type Tree struct {
	// Files are the paths of the proto files the tree was built from, in the
	// order they were given.
	Files    []string
	Services []*Service

	messages map[string]*Message
	enums    map[string]*Enum
	// order keeps messages in load order for Describe and Messages.
	order []*Message
}

// Message returns the message with the given fully qualified name, with or
// without a leading dot, or nil.
func (t *Tree) Message(fullName string) *Message {
	return t.messages[strings.TrimPrefix(fullName, ".")]
}

// Enum returns the enum with the given fully qualified name, or nil.
func (t *Tree) Enum(fullName string) *Enum {
	return t.enums[strings.TrimPrefix(fullName, ".")]
}

// Messages returns every message of the tree in load order, map entry
// messages included.
func (t *Tree) Messages() []*Message {
	return append([]*Message(nil), t.order...)
}

// Service returns the service with the given fully qualified name, or nil.
func (t *Tree) Service(fullName string) *Service {
	fullName = strings.TrimPrefix(fullName, ".")
	for _, svc := range t.Services {
		if svc.FullName == fullName {
			return svc
		}
	}
	return nil
}

// Describe returns an indented, human readable dump of the tree.
func (t *Tree) Describe(depth int) string {
	rv := ""
	for idx, svc := range t.Services {
		rv += prindent(depth, "Service %v:\n", idx)
		rv += svc.Describe(depth + 1)
	}
	for idx, msg := range t.order {
		rv += prindent(depth, "Message %v:\n", idx)
		rv += msg.Describe(depth + 1)
	}
	return rv
}

func (t *Tree) String() string {
	return t.Describe(0)
}

// Service is an rpc service declared in one of the tree's files.
type Service struct {
	Name     string
	FullName string
	// File is the path of the proto file declaring the service.
	File    string
	Methods []*Method
}

// Method returns the method named name, or nil.
func (s *Service) Method(name string) *Method {
	for _, m := range s.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (s *Service) Describe(depth int) string {
	rv := prindent(depth, "Name: %v\n", s.FullName)
	for idx, meth := range s.Methods {
		rv += prindent(depth, "Method %v:\n", idx)
		rv += meth.Describe(depth + 1)
	}
	return rv
}

// Method is an rpc method. HTTP is nil when the method carries no
// google.api.http annotation.
type Method struct {
	Name         string
	Service      *Service
	RequestType  *Message
	ResponseType *Message
	// Streaming is true for client, server and bidirectional streaming
	// methods.
	Streaming bool
	HTTP      *httprule.Rule
}

// FullName returns the method's name qualified by its service.
func (m *Method) FullName() string {
	if m.Service == nil {
		return m.Name
	}
	return m.Service.FullName + "." + m.Name
}

func (m *Method) Describe(depth int) string {
	rv := prindent(depth, "Name: %v\n", m.Name)
	rv += prindent(depth, "RequestType: %v\n", m.RequestType.FullName)
	rv += prindent(depth, "ResponseType: %v\n", m.ResponseType.FullName)
	if m.HTTP != nil {
		for _, b := range m.HTTP.Bindings() {
			verb, path, ok := httprule.Resolve(b)
			if !ok {
				rv += prindent(depth, "HTTP: <unset>\n")
				continue
			}
			rv += prindent(depth, "HTTP: %v %v body=%q\n", verb, path, b.Body)
		}
	}
	return rv
}

// Message is a protobuf message type.
type Message struct {
	Name     string
	FullName string
	// MapEntry is true for the synthetic entry messages protoc generates for
	// map fields.
	MapEntry bool
	// Fields are in declaration order.
	Fields []*Field

	byName   map[string]*Field
	byNumber []*Field
}

// FieldByName returns the field whose proto name is exactly name, or nil.
func (m *Message) FieldByName(name string) *Field {
	return m.byName[name]
}

// FieldsByNumber returns the fields of the message in ascending field number
// order.
func (m *Message) FieldsByNumber() []*Field {
	return append([]*Field(nil), m.byNumber...)
}

func (m *Message) Describe(depth int) string {
	rv := prindent(depth, "Name: %v\n", m.FullName)
	for idx, field := range m.Fields {
		rv += prindent(depth, "Field %v:\n", idx)
		rv += field.Describe(depth + 1)
	}
	return rv
}

// NewMessage returns a message outside of any Tree owning the given fields,
// for callers assembling definitions by hand.
func NewMessage(fullName string, fields ...*Field) *Message {
	m := &Message{
		Name:     fullName[strings.LastIndex(fullName, ".")+1:],
		FullName: fullName,
		Fields:   fields,
	}
	for _, f := range fields {
		f.Parent = m
	}
	m.index()
	return m
}

// index prepares the lookup tables of a message once its fields are set.
func (m *Message) index() {
	m.byName = make(map[string]*Field, len(m.Fields))
	for _, f := range m.Fields {
		m.byName[f.Name] = f
	}
	m.byNumber = append([]*Field(nil), m.Fields...)
	sort.SliceStable(m.byNumber, func(i, j int) bool {
		return m.byNumber[i].Number < m.byNumber[j].Number
	})
}

// Field is a single field of a message.
type Field struct {
	Name     string
	Number   int
	JSONName string
	Type     FieldType
	// Label is one of LabelOptional, LabelRequired or LabelRepeated.
	Label string
	IsMap bool
	// Parent is the message declaring this field.
	Parent *Message
}

// Repeated reports whether the field is a repeated (or map) field.
func (f *Field) Repeated() bool {
	return f.Label == LabelRepeated
}

func (f *Field) Describe(depth int) string {
	rv := prindent(depth, "Name: %v\n", f.Name)
	rv += prindent(depth, "Number: %v\n", f.Number)
	rv += prindent(depth, "JSONName: %v\n", f.JSONName)
	rv += prindent(depth, "Label: %v\n", f.Label)
	rv += prindent(depth, "Type: %v\n", f.Type.String())
	return rv
}

// FieldType is the type of a field. Name is the descriptor type name such as
// "TYPE_STRING"; for message and enum fields the matching pointer is set.
type FieldType struct {
	Name    string
	Message *Message
	Enum    *Enum
}

func (ft FieldType) String() string {
	switch {
	case ft.Message != nil:
		return ft.Message.FullName
	case ft.Enum != nil:
		return ft.Enum.FullName
	}
	return ft.Name
}

// Enum is a protobuf enum type.
type Enum struct {
	Name     string
	FullName string
	Values   []*EnumValue
}

type EnumValue struct {
	Name   string
	Number int
}
