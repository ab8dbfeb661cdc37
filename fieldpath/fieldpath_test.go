package fieldpath

import (
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/metaverse/restdesc/deftree"
	"github.com/metaverse/restdesc/testproto"
)

func TestResolve(t *testing.T) {
	tree := testproto.Tree(t, testproto.Catalog())

	var cases = []struct {
		root, path string
		want       []string
	}{
		{"GetOrderRequest", "user_id", []string{"user_id"}},
		{"GetOrderRequest", "order.id", []string{"order", "id"}},
		// Message typed terminal segments bind the sub-message itself.
		{"GetOrderRequest", "order", []string{"order"}},
		{"UpdateAddressRequest", "address.city", []string{"address", "city"}},
		{"WalkTreeRequest", "root.parent.parent.value", []string{"root", "parent", "parent", "value"}},
		{"Item", "labels.value", []string{"labels", "value"}},
	}
	for _, c := range cases {
		root := tree.Message(testproto.Package + "." + c.root)
		chain, err := Resolve(root, c.path)
		if err != nil {
			t.Errorf("Resolve(%s, %q) failed: %v", c.root, c.path, err)
			continue
		}
		if len(chain) != len(strings.Split(c.path, ".")) {
			t.Errorf("Resolve(%s, %q) chain length %d, want %d", c.root, c.path, len(chain), len(c.want))
			continue
		}
		if chain[0].Parent != root {
			t.Errorf("Resolve(%s, %q): first field belongs to %s", c.root, c.path, chain[0].Parent.FullName)
		}
		for i, f := range chain {
			if f.Name != c.want[i] {
				t.Errorf("Resolve(%s, %q)[%d] = %q, want %q", c.root, c.path, i, f.Name, c.want[i])
			}
			if i > 0 && f.Parent != chain[i-1].Type.Message {
				t.Errorf("Resolve(%s, %q)[%d] does not belong to the type of the field before it", c.root, c.path, i)
			}
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	tree := testproto.Tree(t, testproto.Catalog())
	req := tree.Message(testproto.Package + ".GetOrderRequest")

	for _, path := range []string{
		"missing",
		"order.missing",
		"order.id.deeper", // id is a string
		"user_id.x",
		"userId", // json names are not field names
		"Order.id",
		"",
		"order.",
	} {
		for i := 0; i < 2; i++ {
			_, err := Resolve(req, path)
			if err == nil {
				t.Errorf("Resolve(%q) succeeded, want not found", path)
				break
			}
			nf, ok := errors.Cause(err).(*NotFoundError)
			if !ok {
				t.Errorf("Resolve(%q) error is %T, want *NotFoundError", path, err)
				break
			}
			if nf.Path != path {
				t.Errorf("NotFoundError.Path = %q, want the full path %q", nf.Path, path)
			}
			if nf.Message != req.FullName {
				t.Errorf("NotFoundError.Message = %q, want %q", nf.Message, req.FullName)
			}
		}
	}
}

func TestResolveNilRoot(t *testing.T) {
	_, err := Resolve(nil, "a")
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("Resolve(nil) error = %v, want *NotFoundError", err)
	}
}

func TestResolveBody(t *testing.T) {
	tree := testproto.Tree(t, testproto.Catalog())
	update := tree.Message(testproto.Package + ".UpdateAddressRequest")
	tags := tree.Message(testproto.Package + ".SetTagsRequest")

	b, err := ResolveBody(update, "")
	if err != nil || b.Kind != BodyNone {
		t.Errorf(`ResolveBody("") = %v, %v; want none`, b.Kind, err)
	}

	b, err = ResolveBody(update, "*")
	if err != nil || b.Kind != BodyMessage || b.Message != update {
		t.Errorf(`ResolveBody("*") = %v, %v; want the request message`, b.Kind, err)
	}

	b, err = ResolveBody(update, "address")
	if err != nil {
		t.Fatalf(`ResolveBody("address") failed: %v`, err)
	}
	if b.Kind != BodyField || b.Repeated || b.Field() != update.FieldByName("address") {
		t.Errorf(`ResolveBody("address") = %+v; want singular field address`, b)
	}
	if b.Field().Type.Message != tree.Message(testproto.Package+".Address") {
		t.Error("address body does not point at Address")
	}

	b, err = ResolveBody(tags, "tags")
	if err != nil {
		t.Fatalf(`ResolveBody("tags") failed: %v`, err)
	}
	if b.Kind != BodyField || !b.Repeated || b.Field().Label != deftree.LabelRepeated {
		t.Errorf(`ResolveBody("tags") = %+v; want repeated field tags`, b)
	}

	for _, body := range []string{"missing", "address.city"} {
		_, err = ResolveBody(update, body)
		nf, ok := errors.Cause(err).(*NotFoundError)
		if !ok {
			t.Errorf("ResolveBody(%q) error = %v, want *NotFoundError", body, err)
			continue
		}
		if nf.Path != body || nf.Message != update.FullName {
			t.Errorf("ResolveBody(%q) error = %+v", body, nf)
		}
	}
}

func TestBodyField(t *testing.T) {
	if (Body{Kind: BodyMessage}).Field() != nil {
		t.Error("Field() of a message body is not nil")
	}
	if BodyNone.String() != "none" || BodyMessage.String() != "message" || BodyField.String() != "field" {
		t.Error("unexpected BodyKind names")
	}
}
