package deftree_test

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/metaverse/restdesc/deftree"
	"github.com/metaverse/restdesc/httprule"
	"github.com/metaverse/restdesc/testproto"
)

func TestNewFromSet(t *testing.T) {
	tree := testproto.Tree(t, testproto.Catalog())

	if got, want := tree.Files, []string{"catalog.proto"}; len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Files = %v, want %v", got, want)
	}
	svc := tree.Service(testproto.CatalogService)
	if svc == nil {
		t.Fatalf("cannot find service %q in tree:\n%v", testproto.CatalogService, tree)
	}
	if svc.File != "catalog.proto" {
		t.Errorf("service File = %q, want catalog.proto", svc.File)
	}
	if tree.Service("."+testproto.CatalogService) != svc {
		t.Error("leading dot service lookup did not return the same service")
	}

	meth := svc.Method("GetOrder")
	if meth == nil {
		t.Fatal("cannot find method GetOrder")
	}
	if meth.RequestType != tree.Message(testproto.Package+".GetOrderRequest") {
		t.Errorf("GetOrder request type is not the tree's GetOrderRequest")
	}
	if meth.FullName() != testproto.CatalogService+".GetOrder" {
		t.Errorf("FullName() = %q", meth.FullName())
	}
	verb, path, ok := httprule.Resolve(*meth.HTTP)
	if !ok || verb != "GET" || path != "/v1/users/{user_id}/orders/{order.id}" {
		t.Errorf("GetOrder http = %q %q %v", verb, path, ok)
	}

	if svc.Method("Ping").HTTP != nil {
		t.Error("Ping has an http rule but was declared without one")
	}
	if !svc.Method("Watch").Streaming {
		t.Error("Watch is server streaming but Streaming is false")
	}
	if n := len(svc.Method("GetShelf").HTTP.AdditionalBindings); n != 2 {
		t.Errorf("GetShelf has %d additional bindings, want 2", n)
	}
}

func TestFieldTypes(t *testing.T) {
	tree := testproto.Tree(t, testproto.Catalog())
	item := tree.Message(testproto.Package + ".Item")
	if item == nil {
		t.Fatal("cannot find Item")
	}

	var cases = []struct {
		field, typeName, label, jsonName string
		isMap                            bool
	}{
		{"name", "TYPE_STRING", deftree.LabelOptional, "name", false},
		{"price_cents", "TYPE_INT64", deftree.LabelOptional, "priceCents", false},
		{"state", deftree.TypeEnum, deftree.LabelOptional, "state", false},
		{"tags", "TYPE_STRING", deftree.LabelRepeated, "tags", false},
		{"in_stock", "TYPE_BOOL", deftree.LabelOptional, "inStock", false},
		{"labels", deftree.TypeMessage, deftree.LabelRepeated, "labels", true},
	}
	for _, c := range cases {
		f := item.FieldByName(c.field)
		if f == nil {
			t.Errorf("cannot find field %q on Item", c.field)
			continue
		}
		if f.Type.Name != c.typeName {
			t.Errorf("field %q type = %q, want %q", c.field, f.Type.Name, c.typeName)
		}
		if f.Label != c.label {
			t.Errorf("field %q label = %q, want %q", c.field, f.Label, c.label)
		}
		if f.JSONName != c.jsonName {
			t.Errorf("field %q json name = %q, want %q", c.field, f.JSONName, c.jsonName)
		}
		if f.IsMap != c.isMap {
			t.Errorf("field %q IsMap = %v, want %v", c.field, f.IsMap, c.isMap)
		}
		if f.Parent != item {
			t.Errorf("field %q parent is not Item", c.field)
		}
	}

	state := item.FieldByName("state").Type.Enum
	if state == nil || state != tree.Enum(testproto.Package+".State") {
		t.Fatalf("state enum not resolved: %s", spew.Sdump(item.FieldByName("state").Type))
	}
	if len(state.Values) != 3 || state.Values[2].Name != "RETIRED" {
		t.Errorf("unexpected enum values %s", spew.Sdump(state.Values))
	}

	entry := item.FieldByName("labels").Type.Message
	if entry == nil || !entry.MapEntry {
		t.Fatalf("labels does not point to a map entry message")
	}
	if entry.FieldByName("key") == nil || entry.FieldByName("value") == nil {
		t.Error("map entry is missing key or value")
	}
}

func TestFieldsByNumber(t *testing.T) {
	tree := testproto.Tree(t, testproto.Catalog())
	node := tree.Message(testproto.Package + ".Node")

	var declared, numbered []string
	for _, f := range node.Fields {
		declared = append(declared, f.Name)
	}
	for _, f := range node.FieldsByNumber() {
		numbered = append(numbered, f.Name)
	}
	if got, want := strings.Join(declared, ","), "value,children,parent"; got != want {
		t.Errorf("declaration order = %v, want %v", got, want)
	}
	if got, want := strings.Join(numbered, ","), "children,value,parent"; got != want {
		t.Errorf("field number order = %v, want %v", got, want)
	}

	// Self references resolve to the very same message.
	if node.FieldByName("parent").Type.Message != node {
		t.Error("Node.parent does not point back at Node")
	}
}

func TestFieldByNameIsExact(t *testing.T) {
	tree := testproto.Tree(t, testproto.Catalog())
	req := tree.Message(testproto.Package + ".GetOrderRequest")
	for _, name := range []string{"userId", "USER_ID", "User_id", "user_id "} {
		if req.FieldByName(name) != nil {
			t.Errorf("FieldByName(%q) matched, lookups must be exact", name)
		}
	}
}

func TestDescribe(t *testing.T) {
	tree := testproto.Tree(t, testproto.Catalog())
	out := tree.String()
	for _, want := range []string{
		"Name: " + testproto.CatalogService,
		"HTTP: GET /v1/users/{user_id}/orders/{order.id}",
		"HTTP: HEAD /v1/{name=shelves/*}",
		"Name: " + testproto.Package + ".Node",
		"    Type: " + testproto.Package + ".OrderRef",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe output lacks %q:\n%s", want, out)
		}
	}
}
