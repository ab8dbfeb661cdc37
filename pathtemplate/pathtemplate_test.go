package pathtemplate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	var cases = []struct {
		tmpl   string
		params []string
		verb   string
		simple string
	}{
		{"/v1/items", nil, "", "/v1/items"},
		{"/v1/users/{user_id}", []string{"user_id"}, "", "/v1/users/{user_id}"},
		{"/v1/users/{user_id}/orders/{order.id}", []string{"user_id", "order.id"}, "", "/v1/users/{user_id}/orders/{order.id}"},
		{"/v1/{name=shelves/*}", []string{"name"}, "", "/v1/{name}"},
		{"/v1/{name=shelves/*/books/**}", []string{"name"}, "", "/v1/{name}"},
		{"/v1/shelves:lookup", nil, "lookup", "/v1/shelves:lookup"},
		{"/v1/{parent=projects/*}/things:batchGet", []string{"parent"}, "batchGet", "/v1/{parent}/things:batchGet"},
		{"/v1/*/raw/**", nil, "", "/v1/*/raw/**"},
		{"/{b}/{a}", []string{"b", "a"}, "", "/{b}/{a}"},
	}
	for _, c := range cases {
		tmpl, err := Parse(c.tmpl)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", c.tmpl, err)
			continue
		}
		if diff := cmp.Diff(c.params, tmpl.Params()); diff != "" {
			t.Errorf("Parse(%q).Params() mismatch (-want +got):\n%s", c.tmpl, diff)
		}
		if tmpl.Verb != c.verb {
			t.Errorf("Parse(%q).Verb = %q, want %q", c.tmpl, tmpl.Verb, c.verb)
		}
		if got := tmpl.SimplePath(); got != c.simple {
			t.Errorf("Parse(%q).SimplePath() = %q, want %q", c.tmpl, got, c.simple)
		}
		if got := tmpl.String(); got != c.tmpl {
			t.Errorf("Parse(%q).String() = %q, does not round trip", c.tmpl, got)
		}
		if tmpl.Raw() != c.tmpl {
			t.Errorf("Raw() = %q, want %q", tmpl.Raw(), c.tmpl)
		}
	}
}

func TestParseSegments(t *testing.T) {
	tmpl, err := Parse("/v1/{name=shelves/*}/books")
	if err != nil {
		t.Fatal(err)
	}
	want := []Segment{
		{Kind: Literal, Value: "v1"},
		{Kind: Variable, FieldPath: "name", Pattern: []Segment{
			{Kind: Literal, Value: "shelves"},
			{Kind: Wildcard},
		}},
		{Kind: Literal, Value: "books"},
	}
	if diff := cmp.Diff(want, tmpl.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	var cases = []struct {
		tmpl, msg string
	}{
		{"", "must begin with '/'"},
		{"v1/items", "must begin with '/'"},
		{"/v1//items", "empty segment"},
		{"/v1/items/", "empty segment"},
		{"/v1/{user_id", "unterminated variable"},
		{"/v1/{}", "no field path"},
		{"/v1/{a..b}", "no field path"},
		{"/v1/{.a}", "no field path"},
		{"/v1/{a={b}}", "nested variable"},
		{"/v1/items:", "empty verb"},
		{"/v1/items}", "unexpected"},
		{"/v1/{id}/x/{id}", "more than once"},
	}
	for _, c := range cases {
		_, err := Parse(c.tmpl)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error containing %q", c.tmpl, c.msg)
			continue
		}
		if !strings.Contains(err.Error(), c.msg) {
			t.Errorf("Parse(%q) error = %q, want it to contain %q", c.tmpl, err, c.msg)
		}
	}
}
