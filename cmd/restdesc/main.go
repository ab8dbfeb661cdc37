package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/metaverse/restdesc"
	"github.com/metaverse/restdesc/apidesc"
	"github.com/metaverse/restdesc/deftree"
	"github.com/metaverse/restdesc/genswagger"
	"github.com/metaverse/restdesc/schema"
)

var (
	outFlag      = flag.StringP("out", "o", restdesc.DefaultOut, "Path of the generated document; a .yaml or .yml extension writes YAML")
	titleFlag    = flag.String("title", "", "Document title, defaults to the name of the first service")
	docVerFlag   = flag.String("doc-version", "0.0.1", "Document version")
	schemaFlag   = flag.String("schema", schema.PolicyPlaceholder.String(), "Schema policy: placeholder renders every field as a string, typed maps field types")
	fileFlag     = flag.StringSlice("file", nil, "Only describe services declared in these proto files")
	validateFlag = flag.Bool("validate", false, "Validate the document against the Swagger 2.0 specification")
	dumpFlag     = flag.Bool("dump", false, "Dump the definition tree and the described operations to stderr")
	verboseFlag  = flag.BoolP("verbose", "v", false, "Verbose output")
	helpFlag     = flag.BoolP("help", "h", false, "Print usage")
)

var binName = filepath.Base(os.Args[0])

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "\nUsage: %s [options] <descriptor-set>...\n", binName)
		fmt.Fprintf(os.Stderr, "\nDescribes the google.api.http bindings of protobuf services as a Swagger 2.0 document.\n")
		fmt.Fprintf(os.Stderr, "Descriptor sets are written by protoc --include_imports --descriptor_set_out.\n")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	if *verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	if len(flag.Args()) == 0 {
		fmt.Fprintf(os.Stderr, "%s: missing descriptor set(s)\n", binName)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := parseInput()
	exitIfError(errors.Wrap(err, "cannot parse input"))

	var dump io.Writer
	if *dumpFlag {
		dump = os.Stderr
	}
	err = run(cfg, dump)
	exitIfError(err)
}

// parseInput constructs a restdesc.Config from the command line.
func parseInput() (restdesc.Config, error) {
	cfg := restdesc.DefaultConfig()
	cfg.DescriptorSets = flag.Args()
	cfg.Files = *fileFlag
	cfg.Out = *outFlag
	cfg.Title = *titleFlag
	cfg.Version = *docVerFlag
	cfg.Validate = *validateFlag

	policy, err := schema.ParsePolicy(*schemaFlag)
	if err != nil {
		return cfg, err
	}
	cfg.Policy = policy
	log.WithField("config", fmt.Sprintf("%+v", cfg)).Debug()

	return cfg, cfg.Check()
}

// run describes the services of cfg's descriptor sets and writes the
// document to cfg.Out. If dump is non nil the definition tree and the
// described operations are written to it.
func run(cfg restdesc.Config, dump io.Writer) error {
	set, err := readDescriptorSets(cfg.DescriptorSets)
	if err != nil {
		return err
	}
	tree, err := deftree.NewFromSet(set)
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

	if dump != nil {
		fmt.Fprintln(dump, tree.String())
		dumper := spew.ConfigState{Indent: "  ", MaxDepth: 3, DisablePointerAddresses: true}
		for _, op := range desc.Operations() {
			dumper.Fdump(dump, struct {
				ID, HTTPMethod, RelativePath string
				Parameters                   []string
			}{op.ID, op.HTTPMethod, op.RelativePath, paramSummary(op)})
		}
	}

	file, err := genswagger.GenerateFile(desc, cfg)
	if err != nil {
		return errors.Wrap(err, "cannot generate swagger document")
	}
	if err := writeGenFile(file, file.Name()); err != nil {
		return errors.Wrap(err, "cannot write output")
	}
	log.WithField("path", file.Name()).
		WithField("operations", len(desc.Operations())).
		Info("wrote swagger document")
	return nil
}

func paramSummary(op *apidesc.Operation) []string {
	var rv []string
	for _, p := range op.Parameters {
		rv = append(rv, p.Source+" "+p.Name+" "+p.Type)
	}
	return rv
}

// readDescriptorSets reads and merges binary FileDescriptorSets. A file
// present in more than one set is kept once.
func readDescriptorSets(paths []string) (*descriptorpb.FileDescriptorSet, error) {
	merged := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read descriptor set %v", path)
		}
		var set descriptorpb.FileDescriptorSet
		if err := proto.Unmarshal(b, &set); err != nil {
			return nil, errors.Wrapf(err, "cannot decode descriptor set %v", path)
		}
		for _, f := range set.GetFile() {
			if seen[f.GetName()] {
				continue
			}
			seen[f.GetName()] = true
			merged.File = append(merged.File, f)
		}
		log.WithField("path", path).
			WithField("files", len(set.GetFile())).
			Debug("read descriptor set")
	}
	if len(merged.File) == 0 {
		return nil, errors.Errorf("no files in descriptor sets %v", strings.Join(paths, ", "))
	}
	return merged, nil
}

func writeGenFile(file io.Reader, path string) error {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}

	outFile, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create file %v", path)
	}

	_, err = io.Copy(outFile, file)
	if err != nil {
		return errors.Wrapf(err, "cannot write to %v", path)
	}
	return outFile.Close()
}

func exitIfError(err error) {
	if errors.Cause(err) != nil {
		defer os.Exit(1)
		if *verboseFlag {
			fmt.Printf("%+v\n", err)
			return
		}
		fmt.Printf("%v\n", err)
	}
}
