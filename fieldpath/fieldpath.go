// Package fieldpath resolves dotted field paths, as used by path template
// variables and http body selectors, against messages of a deftree.Tree.
package fieldpath

import (
	"fmt"
	"strings"

	"github.com/metaverse/restdesc/deftree"
)

// NotFoundError is returned when a field path does not resolve. Path is
// always the full path that was asked for, even when resolution stopped at
// an intermediate segment, and Message is the message resolution started at.
type NotFoundError struct {
	Path    string
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot find field %q on message %s", e.Path, e.Message)
}

// Resolve resolves the dotted path against root and returns the chain of
// fields it names. chain[0] is a field of root and every later field belongs
// to the message type of the field before it. The final field may itself be
// message typed.
func Resolve(root *deftree.Message, path string) ([]*deftree.Field, error) {
	notFound := &NotFoundError{Path: path}
	if root == nil {
		return nil, notFound
	}
	notFound.Message = root.FullName

	segs := strings.Split(path, ".")
	chain := make([]*deftree.Field, 0, len(segs))
	msg := root
	for i, seg := range segs {
		if msg == nil {
			// The previous field was not a message and cannot be descended into.
			return nil, notFound
		}
		f := msg.FieldByName(seg)
		if f == nil {
			return nil, notFound
		}
		chain = append(chain, f)
		if i < len(segs)-1 {
			msg = f.Type.Message
		}
	}
	return chain, nil
}

// BodyKind says where the body of an http request comes from.
type BodyKind int

const (
	// BodyNone means the request has no body.
	BodyNone BodyKind = iota
	// BodyMessage means the whole request message is the body.
	BodyMessage
	// BodyField means a single top level field of the request is the body.
	BodyField
)

func (k BodyKind) String() string {
	switch k {
	case BodyMessage:
		return "message"
	case BodyField:
		return "field"
	}
	return "none"
}

// Body is the resolved body binding of an http rule.
type Body struct {
	Kind BodyKind
	// Message is the request message for BodyMessage.
	Message *deftree.Message
	// Chain is the single field bound for BodyField.
	Chain    []*deftree.Field
	Repeated bool
}

// Field returns the bound field of a BodyField binding, or nil.
func (b Body) Field() *deftree.Field {
	if b.Kind != BodyField || len(b.Chain) == 0 {
		return nil
	}
	return b.Chain[len(b.Chain)-1]
}

// ResolveBody resolves the body selector of an http rule against the
// request message. "" binds nothing, "*" binds the whole message and any
// other value must name a field declared directly on root; dotted selectors
// are not followed.
func ResolveBody(root *deftree.Message, body string) (Body, error) {
	switch body {
	case "":
		return Body{Kind: BodyNone}, nil
	case "*":
		return Body{Kind: BodyMessage, Message: root}, nil
	}
	if strings.Contains(body, ".") {
		rv := &NotFoundError{Path: body}
		if root != nil {
			rv.Message = root.FullName
		}
		return Body{}, rv
	}
	chain, err := Resolve(root, body)
	if err != nil {
		return Body{}, err
	}
	return Body{
		Kind:     BodyField,
		Chain:    chain,
		Repeated: chain[0].Repeated(),
	}, nil
}
