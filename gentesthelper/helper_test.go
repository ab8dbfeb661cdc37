package gentesthelper

import (
	"strings"
	"testing"
)

func TestDiffStrings(t *testing.T) {
	if diff := DiffStrings("a\nb\n", "a\nb\n"); diff != "" {
		t.Errorf("equal strings produced a diff:\n%s", diff)
	}
	diff := DiffStrings("a\nb\n", "a\nc\n")
	if !strings.Contains(diff, "-b") || !strings.Contains(diff, "+c") {
		t.Errorf("unexpected diff:\n%s", diff)
	}
}

func TestDiffJSON(t *testing.T) {
	a := `{"b": [1, 2], "a": {"x": "y"}}`
	b := `{
		"b": [1,2],
		"a": {"x":"y"}
	}`
	outA, outB, diff := DiffJSON(a, b)
	if diff != "" {
		t.Errorf("whitespace only change produced a diff:\n%s\n%s\n%s", outA, outB, diff)
	}

	outA, _, diff = DiffJSON("{not json", "{}")
	if !strings.HasPrefix(outA, "INVALID JSON\n") {
		t.Errorf("invalid input not marked: %q", outA)
	}
	if diff == "" {
		t.Error("invalid and valid input compare equal")
	}
}
