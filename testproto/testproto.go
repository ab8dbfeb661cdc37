// Package testproto assembles protobuf file descriptors in Go for use in
// unit tests, so that tests need neither protoc nor generated code.
package testproto

import (
	"testing"

	"github.com/iancoleman/strcase"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/metaverse/restdesc/deftree"
)

// Package is the proto package of the definitions returned by Catalog.
const Package = "example.catalog"

// Ref returns the fully qualified reference to a message of the catalog
// package, as used in descriptor type names.
func Ref(name string) string {
	return "." + Package + "." + name
}

// Scalar returns a singular field of the given scalar type.
func Scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

// String returns a singular string field.
func String(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return Scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_STRING)
}

// MessageField returns a singular field of the message type typeName, which
// must be fully qualified.
func MessageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := Scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(typeName)
	return f
}

// EnumField returns a singular field of the enum type typeName.
func EnumField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := Scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_ENUM)
	f.TypeName = proto.String(typeName)
	return f
}

// Repeated marks f as repeated and returns it.
func Repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

// Message returns a message descriptor with the given fields, in the order
// given.
func Message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

// WithMap adds a map<string, valueType> field named name to msg, along with
// the nested entry message protoc would generate for it. valueType is a
// scalar type; pass TYPE_MESSAGE with valueTypeName for message values.
func WithMap(msg *descriptorpb.DescriptorProto, name string, number int32, valueType descriptorpb.FieldDescriptorProto_Type, valueTypeName string) *descriptorpb.DescriptorProto {
	entryName := mapEntryName(name)
	value := Scalar("value", 2, valueType)
	if valueTypeName != "" {
		value.TypeName = proto.String(valueTypeName)
	}
	msg.NestedType = append(msg.NestedType, &descriptorpb.DescriptorProto{
		Name:    proto.String(entryName),
		Field:   []*descriptorpb.FieldDescriptorProto{String("key", 1), value},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	})
	f := Repeated(MessageField(name, number, Ref(msg.GetName()+"."+entryName)))
	msg.Field = append(msg.Field, f)
	return msg
}

// mapEntryName mirrors protoc's naming of map entry messages: the field name
// in CamelCase followed by "Entry".
func mapEntryName(field string) string {
	return strcase.ToCamel(field) + "Entry"
}

// Method returns an rpc method. A nil rule leaves the method without a
// google.api.http annotation.
func Method(name, input, output string, rule *annotations.HttpRule) *descriptorpb.MethodDescriptorProto {
	m := &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(input),
		OutputType: proto.String(output),
	}
	if rule != nil {
		m.Options = &descriptorpb.MethodOptions{}
		proto.SetExtension(m.Options, annotations.E_Http, rule)
	}
	return m
}

// File returns a proto3 file descriptor in the catalog package.
func File(name string, msgs []*descriptorpb.DescriptorProto, svcs ...*descriptorpb.ServiceDescriptorProto) *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:        proto.String(name),
		Package:     proto.String(Package),
		Syntax:      proto.String("proto3"),
		MessageType: msgs,
		Service:     svcs,
	}
}

// Tree links files and builds a definition tree from them, failing the test
// on any error.
func Tree(t testing.TB, files ...*descriptorpb.FileDescriptorProto) *deftree.Tree {
	t.Helper()
	tree, err := deftree.NewFromSet(&descriptorpb.FileDescriptorSet{File: files})
	if err != nil {
		t.Fatalf("cannot build definition tree: %+v", err)
	}
	return tree
}
