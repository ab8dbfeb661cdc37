// Package routes combines the http annotation of an rpc method with its
// parsed path template into a Route: the verb and path, the request fields
// each path parameter binds to, and where the request body comes from.
package routes

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/metaverse/restdesc/deftree"
	"github.com/metaverse/restdesc/fieldpath"
	"github.com/metaverse/restdesc/httprule"
	"github.com/metaverse/restdesc/pathtemplate"
)

// ParamBinding binds a path template variable to the chain of request
// fields it names. Chain is never empty.
type ParamBinding struct {
	Name  string
	Chain []*deftree.Field
}

// Field returns the last field of the chain, the one the parameter's value
// is written to.
func (p ParamBinding) Field() *deftree.Field {
	return p.Chain[len(p.Chain)-1]
}

// Route is the REST mapping of a single http binding of an rpc method.
type Route struct {
	Verb string
	// Path is the path template as declared in the annotation.
	Path     string
	Template *pathtemplate.Template

	Service string
	Method  string

	// Params are in the order their variables appear in Path.
	Params   []ParamBinding
	Body     fieldpath.Body
	Request  *deftree.Message
	Response *deftree.Message
}

// RelativePath returns Path without its leading slash.
func (r *Route) RelativePath() string {
	return strings.TrimPrefix(r.Path, "/")
}

// Build builds the Route for one binding of meth. tmpl is the parsed form of
// the rule's path; when nil the path is parsed here.
//
// ok is false, with a nil error, when rule has no pattern set; such methods
// are not published. Any field that cannot be resolved is an error.
func Build(meth *deftree.Method, rule httprule.Rule, req, resp *deftree.Message, tmpl *pathtemplate.Template) (route *Route, ok bool, err error) {
	verb, path, ok := httprule.Resolve(rule)
	if !ok {
		log.WithField("method", meth.FullName()).Debug("no http pattern set, skipping")
		return nil, false, nil
	}
	if tmpl == nil {
		tmpl, err = pathtemplate.Parse(path)
		if err != nil {
			return nil, false, errors.Wrapf(err, "invalid http path of %s", meth.FullName())
		}
	}

	rv := &Route{
		Verb:     verb,
		Path:     path,
		Template: tmpl,
		Method:   meth.Name,
		Request:  req,
		Response: resp,
	}
	if meth.Service != nil {
		rv.Service = meth.Service.FullName
	}

	seen := make(map[string]bool)
	for _, name := range tmpl.Params() {
		if seen[name] {
			return nil, false, errors.Errorf("path %q of %s binds %q more than once", path, meth.FullName(), name)
		}
		seen[name] = true

		chain, err := fieldpath.Resolve(req, name)
		if err != nil {
			return nil, false, errors.Wrapf(err, "cannot bind path parameter of %s", meth.FullName())
		}
		rv.Params = append(rv.Params, ParamBinding{Name: name, Chain: chain})
	}

	rv.Body, err = fieldpath.ResolveBody(req, rule.Body)
	if err != nil {
		return nil, false, errors.Wrapf(err, "cannot bind http body of %s", meth.FullName())
	}

	log.WithField("method", meth.FullName()).
		WithField("verb", verb).
		WithField("path", path).
		WithField("body", rv.Body.Kind).
		Debug("built route")
	return rv, true, nil
}
