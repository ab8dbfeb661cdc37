// Package apidesc aggregates the routes of a set of endpoints and the
// schemas of the messages they exchange into a single API description.
//
// The description is built once, on first use, and is read only after
// that. See Provider.
package apidesc

import (
	"sync/atomic"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/metaverse/restdesc/deftree"
	"github.com/metaverse/restdesc/fieldpath"
	"github.com/metaverse/restdesc/pathtemplate"
	"github.com/metaverse/restdesc/routes"
	"github.com/metaverse/restdesc/schema"
)

// JSON is the only request and response format described.
const JSON = "application/json"

// BodyParameterName is the name of the parameter describing a request body.
const BodyParameterName = "Input"

// Parameter sources.
const (
	SourcePath = "path"
	SourceBody = "body"
)

// Description is the aggregated description of all endpoints.
type Description struct {
	// Groups has one entry per service, in the order services were first
	// seen.
	Groups []Group
	// Schemas holds the schema of every response and body message, keyed
	// by message full name.
	Schemas *schema.Registry
	Policy  schema.Policy
}

// Operations returns the operations of all groups in order.
func (d *Description) Operations() []*Operation {
	var rv []*Operation
	for _, g := range d.Groups {
		rv = append(rv, g.Operations...)
	}
	return rv
}

// Group is the set of operations of one service.
type Group struct {
	Name       string
	Operations []*Operation
}

// Operation describes one route.
type Operation struct {
	// ID is unique within the description.
	ID         string
	HTTPMethod string
	// RelativePath is the path template without its leading slash.
	RelativePath string
	Template     *pathtemplate.Template
	// Controller is the full name of the service.
	Controller string
	// Action is the name of the method.
	Action string

	RequestFormats []string
	Responses      []Response
	// Parameters are the path parameters in template order followed by the
	// body parameter, if any.
	Parameters []Parameter

	Route *routes.Route
}

// Response is a described response.
type Response struct {
	StatusCode int
	Formats    []string
	Message    *deftree.Message
}

// Parameter is a described request parameter.
type Parameter struct {
	Name   string
	Source string
	// Chain is the field chain a path parameter binds to, or the single
	// field bound as body.
	Chain []*deftree.Field
	// Type is the full name of the bound message, or the descriptor type
	// name of a scalar field.
	Type string
	// Message is set when the parameter carries a message.
	Message  *deftree.Message
	Repeated bool
}

// Provider lazily builds a Description from a fixed set of endpoints and
// hands the same Description to every later caller.
//
// Concurrent first calls may each build a Description; the results are
// identical and the last one stored is kept. A failed build is not stored,
// so every call made until a build succeeds reports the failure.
type Provider struct {
	endpoints []Endpoint
	policy    schema.Policy

	desc   atomic.Pointer[Description]
	builds atomic.Int64
}

// NewProvider returns a Provider for endpoints using policy for schemas.
func NewProvider(endpoints []Endpoint, policy schema.Policy) *Provider {
	return &Provider{
		endpoints: append([]Endpoint(nil), endpoints...),
		policy:    policy,
	}
}

// Description returns the description, building it on first use.
func (p *Provider) Description() (*Description, error) {
	if d := p.desc.Load(); d != nil {
		return d, nil
	}
	p.builds.Add(1)
	d, err := Build(p.endpoints, p.policy)
	if err != nil {
		return nil, err
	}
	p.desc.Store(d)
	return d, nil
}

// Build builds a Description from endpoints. Endpoints missing metadata and
// endpoints whose rule sets no pattern are left out. Any field that cannot
// be resolved, and any message whose schema cannot be generated, fails the
// whole build.
func Build(endpoints []Endpoint, policy schema.Policy) (*Description, error) {
	gen := schema.NewGenerator(policy)
	d := &Description{
		Schemas: gen.Registry(),
		Policy:  policy,
	}
	groups := make(map[string]int)

	for _, ep := range endpoints {
		if ep.Rule == nil || ep.Method == nil || ep.Template == nil {
			continue
		}
		meth := ep.Method
		route, ok, err := routes.Build(meth, *ep.Rule, meth.RequestType, meth.ResponseType, ep.Template)
		if err != nil {
			return nil, errors.Wrap(err, "cannot describe api")
		}
		if !ok {
			continue
		}
		op, err := newOperation(ep, route, gen)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot describe %s", meth.FullName())
		}

		idx, ok := groups[op.Controller]
		if !ok {
			idx = len(d.Groups)
			groups[op.Controller] = idx
			d.Groups = append(d.Groups, Group{Name: op.Controller})
		}
		d.Groups[idx].Operations = append(d.Groups[idx].Operations, op)

		log.WithField("operation", op.ID).
			WithField("verb", op.HTTPMethod).
			WithField("path", op.RelativePath).
			Debug("described operation")
	}

	log.WithField("groups", len(d.Groups)).
		WithField("schemas", d.Schemas.Len()).
		Debug("built api description")
	return d, nil
}

func newOperation(ep Endpoint, route *routes.Route, gen *schema.Generator) (*Operation, error) {
	op := &Operation{
		ID:             ep.Label(),
		HTTPMethod:     route.Verb,
		RelativePath:   route.RelativePath(),
		Template:       route.Template,
		Controller:     route.Service,
		Action:         route.Method,
		RequestFormats: []string{JSON},
		Route:          route,
	}
	if route.Service != "" {
		op.ID = route.Service + "." + op.ID
	}

	if _, err := gen.Generate(route.Response); err != nil {
		return nil, err
	}
	op.Responses = []Response{{
		StatusCode: 200,
		Formats:    []string{JSON},
		Message:    route.Response,
	}}

	for _, pb := range route.Params {
		f := pb.Field()
		op.Parameters = append(op.Parameters, Parameter{
			Name:     pb.Name,
			Source:   SourcePath,
			Chain:    pb.Chain,
			Type:     f.Type.String(),
			Message:  f.Type.Message,
			Repeated: f.Repeated(),
		})
	}

	body, err := bodyParameter(route.Body, gen)
	if err != nil {
		return nil, err
	}
	if body != nil {
		op.Parameters = append(op.Parameters, *body)
	}
	return op, nil
}

// bodyParameter describes the body of a route and generates the schema of
// the message it carries. It returns nil for routes without a body.
func bodyParameter(body fieldpath.Body, gen *schema.Generator) (*Parameter, error) {
	p := &Parameter{
		Name:   BodyParameterName,
		Source: SourceBody,
	}
	switch body.Kind {
	case fieldpath.BodyNone:
		return nil, nil
	case fieldpath.BodyMessage:
		p.Type = body.Message.FullName
		p.Message = body.Message
	case fieldpath.BodyField:
		f := body.Field()
		p.Chain = body.Chain
		p.Type = f.Type.String()
		p.Repeated = body.Repeated
		if f.Type.Message != nil && !f.Type.Message.MapEntry {
			p.Message = f.Type.Message
		}
	}
	if p.Message != nil {
		if _, err := gen.Generate(p.Message); err != nil {
			return nil, err
		}
	}
	return p, nil
}
