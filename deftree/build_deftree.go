package deftree

// build_deftree.go contains the functions for the creation of a deftree and
// it's component structs.

import (
	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/metaverse/restdesc/httprule"
)

// builder memoizes messages and enums by full name while a Tree is being
// assembled. Messages are registered before their fields are filled in so
// that self referencing messages terminate.
type builder struct {
	tree *Tree
}

// New builds a Tree from already linked file descriptors. Services are taken
// from every file given; messages and enums are taken from every file given
// and from any file they reference.
func New(files []protoreflect.FileDescriptor) (*Tree, error) {
	b := builder{
		tree: &Tree{
			messages: make(map[string]*Message),
			enums:    make(map[string]*Enum),
		},
	}
	for _, fd := range files {
		b.tree.Files = append(b.tree.Files, fd.Path())
		b.addEnums(fd.Enums())
		b.addMessages(fd.Messages())
	}
	for _, fd := range files {
		svcs := fd.Services()
		for i := 0; i < svcs.Len(); i++ {
			svc, err := b.newService(svcs.Get(i))
			if err != nil {
				return nil, errors.Wrapf(err, "error converting service %q", svcs.Get(i).FullName())
			}
			svc.File = fd.Path()
			b.tree.Services = append(b.tree.Services, svc)
		}
	}
	log.WithField("files", len(files)).
		WithField("messages", len(b.tree.order)).
		WithField("services", len(b.tree.Services)).
		Debug("built definition tree")
	return b.tree, nil
}

// NewFromSet links the files of a FileDescriptorSet, as written by
// `protoc --include_imports --descriptor_set_out`, and builds a Tree from
// them.
func NewFromSet(set *descriptorpb.FileDescriptorSet) (*Tree, error) {
	reg, err := protodesc.NewFiles(set)
	if err != nil {
		return nil, errors.Wrap(err, "cannot link file descriptor set")
	}
	files := make([]protoreflect.FileDescriptor, 0, len(set.GetFile()))
	for _, fdp := range set.GetFile() {
		fd, err := reg.FindFileByPath(fdp.GetName())
		if err != nil {
			return nil, errors.Wrapf(err, "cannot find linked file %q", fdp.GetName())
		}
		files = append(files, fd)
	}
	return New(files)
}

func (b *builder) addEnums(enums protoreflect.EnumDescriptors) {
	for i := 0; i < enums.Len(); i++ {
		b.enum(enums.Get(i))
	}
}

func (b *builder) addMessages(msgs protoreflect.MessageDescriptors) {
	for i := 0; i < msgs.Len(); i++ {
		b.message(msgs.Get(i))
	}
}

// enum returns the Enum for ed, creating it on first use.
func (b *builder) enum(ed protoreflect.EnumDescriptor) *Enum {
	name := string(ed.FullName())
	if e, ok := b.tree.enums[name]; ok {
		return e
	}
	e := &Enum{
		Name:     string(ed.Name()),
		FullName: name,
	}
	vals := ed.Values()
	for i := 0; i < vals.Len(); i++ {
		v := vals.Get(i)
		e.Values = append(e.Values, &EnumValue{
			Name:   string(v.Name()),
			Number: int(v.Number()),
		})
	}
	b.tree.enums[name] = e
	return e
}

// message returns the Message for md, creating it and every type it
// references on first use.
func (b *builder) message(md protoreflect.MessageDescriptor) *Message {
	name := string(md.FullName())
	if m, ok := b.tree.messages[name]; ok {
		return m
	}
	m := &Message{
		Name:     string(md.Name()),
		FullName: name,
		MapEntry: md.IsMapEntry(),
	}
	// Register before descending so that cycles resolve to this message.
	b.tree.messages[name] = m
	b.tree.order = append(b.tree.order, m)

	b.addEnums(md.Enums())

	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		m.Fields = append(m.Fields, b.newField(m, fields.Get(i)))
	}
	m.index()

	b.addMessages(md.Messages())
	return m
}

func (b *builder) newField(parent *Message, fd protoreflect.FieldDescriptor) *Field {
	f := &Field{
		Name:     string(fd.Name()),
		Number:   int(fd.Number()),
		JSONName: fd.JSONName(),
		// protoreflect kinds and cardinalities share their numbering with
		// the descriptor enums, which gives us the canonical type names.
		Type:   FieldType{Name: descriptorpb.FieldDescriptorProto_Type(fd.Kind()).String()},
		Label:  descriptorpb.FieldDescriptorProto_Label(fd.Cardinality()).String(),
		IsMap:  fd.IsMap(),
		Parent: parent,
	}
	if f.JSONName == "" {
		f.JSONName = strcase.ToLowerCamel(f.Name)
	}
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		f.Type.Message = b.message(fd.Message())
	case protoreflect.EnumKind:
		f.Type.Enum = b.enum(fd.Enum())
	}
	return f
}

// NewService returns a Service for sd with each method's request and
// response pointing into the tree and its http annotation, if any, decoded.
func (b *builder) newService(sd protoreflect.ServiceDescriptor) (*Service, error) {
	svc := &Service{
		Name:     string(sd.Name()),
		FullName: string(sd.FullName()),
	}
	methods := sd.Methods()
	for i := 0; i < methods.Len(); i++ {
		md := methods.Get(i)
		meth := &Method{
			Name:         string(md.Name()),
			Service:      svc,
			RequestType:  b.message(md.Input()),
			ResponseType: b.message(md.Output()),
			Streaming:    md.IsStreamingClient() || md.IsStreamingServer(),
		}
		rule, err := httpRule(md)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read http annotation of method %q", md.Name())
		}
		meth.HTTP = rule
		svc.Methods = append(svc.Methods, meth)
	}
	return svc, nil
}

// httpRule returns the decoded google.api.http annotation of md, or nil if
// the method has none.
func httpRule(md protoreflect.MethodDescriptor) (*httprule.Rule, error) {
	opts, ok := md.Options().(*descriptorpb.MethodOptions)
	if !ok || opts == nil {
		return nil, nil
	}
	if !proto.HasExtension(opts, annotations.E_Http) {
		return nil, nil
	}
	pb, ok := proto.GetExtension(opts, annotations.E_Http).(*annotations.HttpRule)
	if !ok {
		return nil, errors.Errorf("google.api.http option has unexpected type %T", proto.GetExtension(opts, annotations.E_Http))
	}
	rule := httprule.FromProto(pb)
	return &rule, nil
}
