// Package pathtemplate parses the URL path templates of google.api.http
// annotations, such as "/v1/{name=shelves/*}/books:lookup".
//
// The grammar is:
//
//	Template = "/" Segments [ Verb ] ;
//	Segments = Segment { "/" Segment } ;
//	Segment  = "*" | "**" | LITERAL | Variable ;
//	Variable = "{" FieldPath [ "=" Segments ] "}" ;
//	FieldPath = IDENT { "." IDENT } ;
//	Verb     = ":" LITERAL ;
package pathtemplate

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind is the kind of a path segment.
type Kind int

const (
	Literal Kind = iota
	Variable
	// Wildcard matches exactly one path segment, "*".
	Wildcard
	// DeepWildcard matches zero or more path segments, "**".
	DeepWildcard
)

// Segment is a single element of a template. For a Literal, Value holds the
// text. For a Variable, FieldPath holds the dotted field path and Pattern the
// segments the variable matches, which default to a single Wildcard.
type Segment struct {
	Kind      Kind
	Value     string
	FieldPath string
	Pattern   []Segment
}

func (s Segment) String() string {
	switch s.Kind {
	case Wildcard:
		return "*"
	case DeepWildcard:
		return "**"
	case Variable:
		if len(s.Pattern) == 1 && s.Pattern[0].Kind == Wildcard {
			return "{" + s.FieldPath + "}"
		}
		return "{" + s.FieldPath + "=" + joinSegments(s.Pattern) + "}"
	}
	return s.Value
}

// Template is a parsed path template.
type Template struct {
	Segments []Segment
	// Verb is the custom verb suffix without its leading colon, or "".
	Verb string
	raw  string
}

// Params returns the field paths of the template's variables, in the order
// they are declared in the template.
func (t *Template) Params() []string {
	var rv []string
	for _, s := range t.Segments {
		if s.Kind == Variable {
			rv = append(rv, s.FieldPath)
		}
	}
	return rv
}

// Raw returns the template text as it was given to Parse.
func (t *Template) Raw() string {
	return t.raw
}

// String returns the template in canonical form.
func (t *Template) String() string {
	rv := "/" + joinSegments(t.Segments)
	if t.Verb != "" {
		rv += ":" + t.Verb
	}
	return rv
}

// SimplePath returns the template with every variable rendered as
// "{field.path}" regardless of the segments it matches, the form expected by
// Swagger path keys.
func (t *Template) SimplePath() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if s.Kind == Variable {
			parts = append(parts, "{"+s.FieldPath+"}")
			continue
		}
		parts = append(parts, s.String())
	}
	rv := "/" + strings.Join(parts, "/")
	if t.Verb != "" {
		rv += ":" + t.Verb
	}
	return rv
}

func joinSegments(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "/")
}

// Parse parses a path template. Variables may not nest, and a field path may
// be bound by at most one variable.
func Parse(tmpl string) (*Template, error) {
	if !strings.HasPrefix(tmpl, "/") {
		return nil, errors.Errorf("path template %q must begin with '/'", tmpl)
	}
	p := parser{s: tmpl, i: 1}
	segs, err := p.segments(false)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse path template %q", tmpl)
	}
	rv := &Template{Segments: segs, raw: tmpl}
	if p.i < len(p.s) && p.s[p.i] == ':' {
		p.i++
		verb := p.literal()
		if verb == "" {
			return nil, errors.Errorf("cannot parse path template %q: empty verb", tmpl)
		}
		rv.Verb = verb
	}
	if p.i != len(p.s) {
		return nil, errors.Errorf("cannot parse path template %q: unexpected %q at offset %d", tmpl, p.s[p.i:], p.i)
	}

	seen := make(map[string]bool)
	for _, param := range rv.Params() {
		if seen[param] {
			return nil, errors.Errorf("path template %q binds field %q more than once", tmpl, param)
		}
		seen[param] = true
	}
	return rv, nil
}

type parser struct {
	s string
	i int
}

// segments parses segments separated by '/'. Inside a variable it stops
// at the closing brace.
func (p *parser) segments(inVariable bool) ([]Segment, error) {
	var segs []Segment
	for {
		seg, err := p.segment(inVariable)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		if p.i < len(p.s) && p.s[p.i] == '/' {
			p.i++
			continue
		}
		return segs, nil
	}
}

func (p *parser) segment(inVariable bool) (Segment, error) {
	switch {
	case strings.HasPrefix(p.s[p.i:], "**"):
		p.i += 2
		return Segment{Kind: DeepWildcard}, nil
	case strings.HasPrefix(p.s[p.i:], "*"):
		p.i++
		return Segment{Kind: Wildcard}, nil
	case strings.HasPrefix(p.s[p.i:], "{"):
		if inVariable {
			return Segment{}, errors.Errorf("nested variable at offset %d", p.i)
		}
		return p.variable()
	}
	lit := p.literal()
	if lit == "" {
		return Segment{}, errors.Errorf("empty segment at offset %d", p.i)
	}
	return Segment{Kind: Literal, Value: lit}, nil
}

func (p *parser) variable() (Segment, error) {
	start := p.i
	p.i++ // skip '{'
	fieldPath := p.fieldPath()
	if fieldPath == "" {
		return Segment{}, errors.Errorf("variable at offset %d has no field path", start)
	}
	seg := Segment{
		Kind:      Variable,
		FieldPath: fieldPath,
		Pattern:   []Segment{{Kind: Wildcard}},
	}
	if p.i < len(p.s) && p.s[p.i] == '=' {
		p.i++
		pattern, err := p.segments(true)
		if err != nil {
			return Segment{}, err
		}
		seg.Pattern = pattern
	}
	if p.i >= len(p.s) || p.s[p.i] != '}' {
		return Segment{}, errors.Errorf("unterminated variable at offset %d", start)
	}
	p.i++ // skip '}'
	return seg, nil
}

// fieldPath consumes IDENT { "." IDENT }.
func (p *parser) fieldPath() string {
	b := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if !(c == '_' || c == '.' ||
			('0' <= c && c <= '9') ||
			('A' <= c && c <= 'Z') ||
			('a' <= c && c <= 'z')) {
			break
		}
		p.i++
	}
	path := p.s[b:p.i]
	if strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
		p.i = b
		return ""
	}
	return path
}

// literal consumes characters up to the next structural character.
func (p *parser) literal() string {
	b := p.i
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case '/', '{', '}', '=', ':', '*':
			return p.s[b:p.i]
		}
		p.i++
	}
	return p.s[b:p.i]
}
