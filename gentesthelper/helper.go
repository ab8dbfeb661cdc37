// Package gentesthelper holds helpers for comparing generated documents in
// tests.
package gentesthelper

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffStrings returns the line differences of two strings. Useful for
// examining how a generated document differs from the expected one.
func DiffStrings(a, b string) string {
	t := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "A",
		ToFile:   "B",
		Context:  5,
	}
	text, _ := difflib.GetUnifiedDiffString(t)
	return text
}

// DiffJSON returns normalized versions of inA and inB, re-indented so that
// differences in whitespace are ignored, and a diff of the two. Input that
// is not valid JSON is kept as is, prefixed by a marker line.
func DiffJSON(inA, inB string) (outA, outB, diff string) {
	normalize := func(in string) string {
		in = strings.TrimSpace(in)
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(in), "", "  "); err != nil {
			return "INVALID JSON\n" + in
		}
		return buf.String() + "\n"
	}
	outA = normalize(inA)
	outB = normalize(inB)
	diff = DiffStrings(outA, outB)
	return
}
