// Package httprule models the google.api.http annotation attached to an rpc
// method and resolves it into an HTTP verb and a URL path template.
package httprule

import (
	"google.golang.org/genproto/googleapis/api/annotations"
)

// Pattern is the verb-specific half of an http rule. Exactly one Pattern is
// carried by a Rule; the concrete types below are the only implementations.
type Pattern interface {
	pattern()
}

// Get binds the rpc to an HTTP GET on the given path template.
type Get string

// Put binds the rpc to an HTTP PUT on the given path template.
type Put string

// Post binds the rpc to an HTTP POST on the given path template.
type Post string

// Delete binds the rpc to an HTTP DELETE on the given path template.
type Delete string

// Patch binds the rpc to an HTTP PATCH on the given path template.
type Patch string

// Custom binds the rpc to a verb outside of the standard set, such as HEAD.
// Kind is not validated.
type Custom struct {
	Kind string
	Path string
}

func (Get) pattern()    {}
func (Put) pattern()    {}
func (Post) pattern()   {}
func (Delete) pattern() {}
func (Patch) pattern()  {}
func (Custom) pattern() {}

// Rule is a single http binding for an rpc method.
type Rule struct {
	// Pattern is nil when the annotation sets no pattern; such a rule is
	// valid but unresolved, and methods carrying it are left out of the
	// published description.
	Pattern Pattern
	// Body is "" for no body, "*" when the whole request message is the
	// body, or the name of the request field carried in the body.
	Body string
	// ResponseBody names the response field returned as the HTTP body. It is
	// carried through but not interpreted.
	ResponseBody string
	// AdditionalBindings are further rules for the same method. They never
	// nest more than one level deep.
	AdditionalBindings []Rule
}

// Resolve returns the verb and path template of the rule. The standard
// patterns map to upper case verbs, a custom pattern returns its kind
// verbatim. ok is false if the rule has no pattern set.
func Resolve(rule Rule) (verb string, path string, ok bool) {
	switch p := rule.Pattern.(type) {
	case Get:
		return "GET", string(p), true
	case Put:
		return "PUT", string(p), true
	case Post:
		return "POST", string(p), true
	case Delete:
		return "DELETE", string(p), true
	case Patch:
		return "PATCH", string(p), true
	case Custom:
		return p.Kind, p.Path, true
	}
	return "", "", false
}

// FromProto converts the generated google.api.HttpRule message into a Rule.
// A nil rule yields the zero Rule.
func FromProto(pb *annotations.HttpRule) Rule {
	if pb == nil {
		return Rule{}
	}
	rule := Rule{
		Body:         pb.GetBody(),
		ResponseBody: pb.GetResponseBody(),
	}
	switch p := pb.GetPattern().(type) {
	case *annotations.HttpRule_Get:
		rule.Pattern = Get(p.Get)
	case *annotations.HttpRule_Put:
		rule.Pattern = Put(p.Put)
	case *annotations.HttpRule_Post:
		rule.Pattern = Post(p.Post)
	case *annotations.HttpRule_Delete:
		rule.Pattern = Delete(p.Delete)
	case *annotations.HttpRule_Patch:
		rule.Pattern = Patch(p.Patch)
	case *annotations.HttpRule_Custom:
		rule.Pattern = Custom{
			Kind: p.Custom.GetKind(),
			Path: p.Custom.GetPath(),
		}
	}
	for _, add := range pb.GetAdditionalBindings() {
		// Additional bindings of additional bindings are not allowed by
		// google.api.http, so they are dropped here.
		nested := FromProto(add)
		nested.AdditionalBindings = nil
		rule.AdditionalBindings = append(rule.AdditionalBindings, nested)
	}
	return rule
}

// Bindings returns the rule followed by its additional bindings.
func (r Rule) Bindings() []Rule {
	rv := make([]Rule, 0, 1+len(r.AdditionalBindings))
	primary := r
	primary.AdditionalBindings = nil
	rv = append(rv, primary)
	return append(rv, r.AdditionalBindings...)
}
