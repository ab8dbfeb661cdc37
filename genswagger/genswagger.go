// Package genswagger renders an API description as a Swagger 2.0 document.
package genswagger

import (
	"encoding/json"
	"strings"

	"github.com/go-openapi/loads"
	swagger "github.com/go-openapi/spec"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/metaverse/restdesc"
	"github.com/metaverse/restdesc/apidesc"
	"github.com/metaverse/restdesc/schema"
)

// DefaultTitle is used when neither the caller nor the description provide
// a title.
const DefaultTitle = "API"

// ResponseDescription is the description of every 200 response.
const ResponseDescription = "A successful response."

// Info fills the info object of the document.
type Info struct {
	Title   string
	Version string
}

// GenerateFile renders d according to conf and returns the document as a
// file named conf.Out. With conf.Validate set the document is validated
// before it is returned.
func GenerateFile(d *apidesc.Description, conf restdesc.Config) (restdesc.NamedReadWriter, error) {
	info := Info{Title: conf.Title, Version: conf.Version}
	if info.Title == "" && len(d.Groups) > 0 {
		info.Title = d.Groups[0].Name
	}
	spec := Generate(d, info)

	if conf.Validate {
		jsonBytes, err := Marshal(spec, restdesc.FormatJSON)
		if err != nil {
			return nil, err
		}
		if err := Validate(jsonBytes); err != nil {
			return nil, err
		}
	}

	swaggerBytes, err := Marshal(spec, conf.Format())
	if err != nil {
		return nil, err
	}

	var file restdesc.SimpleFile
	file.Path = conf.Out
	file.Write(swaggerBytes)
	return &file, nil
}

// Marshal encodes spec as JSON or YAML. YAML keeps the key order of the
// JSON encoding.
func Marshal(spec *swagger.Swagger, format string) ([]byte, error) {
	swaggerBytes, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal swagger to json")
	}
	switch format {
	case restdesc.FormatJSON:
		return append(swaggerBytes, '\n'), nil
	case restdesc.FormatYAML:
		var doc yaml.MapSlice
		if err := yaml.Unmarshal(swaggerBytes, &doc); err != nil {
			return nil, errors.Wrap(err, "unable to convert swagger json to yaml")
		}
		rv, err := yaml.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "unable to marshal swagger to yaml")
		}
		return rv, nil
	}
	return nil, errors.Errorf("unknown output format %q", format)
}

// Validate checks a JSON encoded document against the Swagger 2.0
// specification.
func Validate(spec []byte) error {
	doc, err := loads.Analyzed(spec, "2.0")
	if err != nil {
		return errors.Wrap(err, "swagger file can not be loaded into swagger doc")
	}

	err = validate.Spec(doc, strfmt.Default)
	if err != nil {
		return errors.Wrap(err, "swagger file cannot be validated")
	}

	return nil
}

// Generate renders d. Operations whose verb Swagger 2.0 cannot express, and
// operations that collide with an earlier one on the same verb and path, are
// left out with a warning.
//
// Spec: https://github.com/OAI/OpenAPI-Specification/blob/master/versions/2.0.md#swagger-object
func Generate(d *apidesc.Description, info Info) *swagger.Swagger {
	var spec swagger.Swagger

	spec.Swagger = "2.0"
	spec.Info = genSwagInfo(info)
	spec.Consumes = []string{apidesc.JSON}
	spec.Produces = []string{apidesc.JSON}
	spec.Paths = genSwagPaths(d)
	spec.Definitions = genSwagDefinitions(d.Schemas)

	for _, g := range d.Groups {
		spec.Tags = append(spec.Tags, swagger.NewTag(g.Name, "", nil))
	}

	return &spec
}

// Spec: https://github.com/OAI/OpenAPI-Specification/blob/master/versions/2.0.md#infoObject
func genSwagInfo(in Info) *swagger.Info {
	var info swagger.Info

	info.Title = in.Title
	if info.Title == "" {
		info.Title = DefaultTitle
	}
	info.Version = in.Version
	if info.Version == "" {
		info.Version = "0.0.1"
	}

	return &info
}

// Spec: https://github.com/OAI/OpenAPI-Specification/blob/master/versions/2.0.md#pathsObject
func genSwagPaths(d *apidesc.Description) *swagger.Paths {
	var paths swagger.Paths
	paths.Paths = make(map[string]swagger.PathItem)

	for _, op := range d.Operations() {
		path := op.Template.SimplePath()
		item := paths.Paths[path]
		slot := operationSlot(&item, op.HTTPMethod)
		entry := log.WithField("operation", op.ID).
			WithField("verb", op.HTTPMethod).
			WithField("path", path)
		if slot == nil {
			entry.Warn("verb cannot be expressed in swagger 2.0, leaving operation out")
			continue
		}
		if *slot != nil {
			entry.WithField("existing", (*slot).ID).
				Warn("verb and path already taken, leaving operation out")
			continue
		}
		*slot = genSwagOperation(op, d.Policy)
		paths.Paths[path] = item
	}

	return &paths
}

// operationSlot returns the field of item holding the operation for verb,
// or nil if a path item has no such field.
//
// Spec: https://github.com/OAI/OpenAPI-Specification/blob/master/versions/2.0.md#pathItemObject
func operationSlot(item *swagger.PathItem, verb string) **swagger.Operation {
	switch strings.ToUpper(verb) {
	case "GET":
		return &item.Get
	case "POST":
		return &item.Post
	case "PUT":
		return &item.Put
	case "PATCH":
		return &item.Patch
	case "DELETE":
		return &item.Delete
	case "HEAD":
		return &item.Head
	case "OPTIONS":
		return &item.Options
	}
	return nil
}

// Spec: https://github.com/OAI/OpenAPI-Specification/blob/master/versions/2.0.md#operationObject
func genSwagOperation(op *apidesc.Operation, policy schema.Policy) *swagger.Operation {
	sop := swagger.NewOperation(op.ID).
		WithTags(op.Controller).
		WithConsumes(op.RequestFormats...)
	sop.Summary = op.Action

	for _, p := range op.Parameters {
		sop.AddParam(genSwagParameter(p, policy))
	}

	for _, r := range op.Responses {
		sop.WithProduces(r.Formats...)
		sop.RespondsWith(r.StatusCode, genSwagResponse(r))
	}

	return sop
}

func genSwagResponse(r apidesc.Response) *swagger.Response {
	resp := swagger.NewResponse().WithDescription(ResponseDescription)
	if r.Message != nil {
		resp.WithSchema(swagger.RefSchema(schema.DefinitionsPrefix + r.Message.FullName))
	}
	return resp
}

// Spec: https://github.com/OAI/OpenAPI-Specification/blob/master/versions/2.0.md#parameterObject
func genSwagParameter(p apidesc.Parameter, policy schema.Policy) *swagger.Parameter {
	switch p.Source {
	// param is required if it is in the path, and path params are
	// primitives
	case apidesc.SourcePath:
		t, f := paramType(p, policy)
		return swagger.PathParam(p.Name).Typed(t, f)
	}

	// If it is in the body, it must have a schema
	return swagger.BodyParam(p.Name, bodySchema(p, policy)).AsRequired()
}

// paramType returns the swagger type of a path parameter. Path parameters
// are strings unless the typed policy knows better.
func paramType(p apidesc.Parameter, policy schema.Policy) (ftype, format string) {
	if policy != schema.PolicyTyped {
		return "string", ""
	}
	if t, f, ok := schema.ScalarType(p.Type); ok {
		return t, f
	}
	return "string", ""
}

func bodySchema(p apidesc.Parameter, policy schema.Policy) *swagger.Schema {
	var item *swagger.Schema
	switch {
	case p.Message != nil:
		item = swagger.RefSchema(schema.DefinitionsPrefix + p.Message.FullName)
	case len(p.Chain) > 0 && p.Chain[len(p.Chain)-1].IsMap:
		return swagger.MapProperty(swagger.StringProperty())
	default:
		t, f := paramType(p, policy)
		item = new(swagger.Schema).Typed(t, f)
	}
	if p.Repeated {
		return swagger.ArrayProperty(item)
	}
	return item
}

// genSwagDefinitions generates swagger definitions for every schema of the
// registry, keyed by message full name.
//
// Spec: https://github.com/OAI/OpenAPI-Specification/blob/master/versions/2.0.md#definitionsObject
func genSwagDefinitions(reg *schema.Registry) swagger.Definitions {
	def := make(swagger.Definitions)
	if reg == nil {
		return def
	}
	for _, name := range reg.Names() {
		s, _ := reg.Lookup(name)
		def[name] = genSwagSchema(s)
	}
	return def
}

func genSwagSchema(s *schema.Schema) swagger.Schema {
	if s.Ref != "" {
		return *swagger.RefSchema(s.Ref)
	}

	var sch swagger.Schema
	sch.Typed(s.Type, s.Format)
	for _, e := range s.Enum {
		sch.Enum = append(sch.Enum, e)
	}
	if s.Items != nil {
		items := genSwagSchema(s.Items)
		sch.Items = &swagger.SchemaOrArray{Schema: &items}
	}
	if s.AdditionalProperties != nil {
		ap := genSwagSchema(s.AdditionalProperties)
		sch.AdditionalProperties = &swagger.SchemaOrBool{Allows: true, Schema: &ap}
	}
	if s.Type == "object" && s.AdditionalProperties == nil {
		sch.Properties = make(swagger.SchemaProperties, len(s.Properties))
		for _, p := range s.Properties {
			sch.Properties[p.Name] = genSwagSchema(p.Schema)
		}
	}
	return sch
}
