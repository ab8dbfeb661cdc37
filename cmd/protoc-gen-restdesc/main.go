// Command protoc-gen-restdesc is a protoc plugin writing a Swagger 2.0
// document for the google.api.http bindings of the files it is given.
//
//	protoc --restdesc_out=out=api/swagger.yaml,schema=typed:. service.proto
package main

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/metaverse/restdesc"
	"github.com/metaverse/restdesc/apidesc"
	"github.com/metaverse/restdesc/deftree"
	"github.com/metaverse/restdesc/genswagger"
	"github.com/metaverse/restdesc/schema"
)

// params are the plugin parameters accepted through --restdesc_opt or the
// --restdesc_out prefix.
type params struct {
	out      *string
	title    *string
	version  *string
	schema   *string
	validate *bool
	verbose  *bool
}

func newParams(flags *flag.FlagSet) *params {
	def := restdesc.DefaultConfig()
	return &params{
		out:      flags.String("out", def.Out, "output file"),
		title:    flags.String("title", "", "document title"),
		version:  flags.String("version", def.Version, "document version"),
		schema:   flags.String("schema", def.Policy.String(), "schema policy, placeholder or typed"),
		validate: flags.Bool("validate", false, "validate the generated document"),
		verbose:  flags.Bool("verbose", false, "log debug output to stderr"),
	}
}

func (p *params) config() (restdesc.Config, error) {
	cfg := restdesc.DefaultConfig()
	cfg.Out = *p.out
	cfg.Title = *p.title
	cfg.Version = *p.version
	cfg.Validate = *p.validate
	policy, err := schema.ParsePolicy(*p.schema)
	if err != nil {
		return cfg, err
	}
	cfg.Policy = policy
	return cfg, cfg.Check()
}

func main() {
	flags := flag.NewFlagSet("protoc-gen-restdesc", flag.ContinueOnError)
	p := newParams(flags)
	protogen.Options{
		ParamFunc: flags.Set,
	}.Run(func(plugin *protogen.Plugin) error {
		return generate(plugin, p)
	})
}

// generate describes the services of the files protoc asked to generate,
// resolving their types against every file of the request.
func generate(plugin *protogen.Plugin, p *params) error {
	// stdout belongs to protoc.
	log.SetOutput(os.Stderr)
	if *p.verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := p.config()
	if err != nil {
		return errors.Wrap(err, "invalid plugin parameters")
	}

	var all []protoreflect.FileDescriptor
	for _, f := range plugin.Files {
		all = append(all, f.Desc)
		if f.Generate {
			cfg.Files = append(cfg.Files, f.Desc.Path())
		}
	}

	tree, err := deftree.New(all)
	if err != nil {
		return errors.Wrap(err, "cannot build definition tree")
	}
	endpoints, err := apidesc.Endpoints(tree, cfg.Files...)
	if err != nil {
		return errors.Wrap(err, "cannot list http endpoints")
	}
	desc, err := apidesc.NewProvider(endpoints, cfg.Policy).Description()
	if err != nil {
		return errors.Wrap(err, "cannot describe services")
	}

	file, err := genswagger.GenerateFile(desc, cfg)
	if err != nil {
		return errors.Wrap(err, "cannot generate swagger document")
	}
	gf := plugin.NewGeneratedFile(file.Name(), "")
	if _, err := gf.Write(file.(*restdesc.SimpleFile).Bytes()); err != nil {
		return errors.Wrapf(err, "cannot write %v", file.Name())
	}
	return nil
}
