package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/metaverse/restdesc"
	"github.com/metaverse/restdesc/fieldpath"
	"github.com/metaverse/restdesc/genswagger"
	"github.com/metaverse/restdesc/testproto"
)

func writeSet(t *testing.T, dir, name string, files ...*descriptorpb.FileDescriptorProto) string {
	t.Helper()
	b, err := proto.Marshal(&descriptorpb.FileDescriptorSet{File: files})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0666); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	set := writeSet(t, dir, "catalog.pb", testproto.Catalog())

	cfg := restdesc.DefaultConfig()
	// The same set twice must not redefine files.
	cfg.DescriptorSets = []string{set, set}
	cfg.Out = filepath.Join(dir, "out", "swagger.json")
	cfg.Validate = true

	var dump bytes.Buffer
	if err := run(cfg, &dump); err != nil {
		t.Fatalf("%+v", err)
	}

	b, err := os.ReadFile(cfg.Out)
	if err != nil {
		t.Fatal(err)
	}
	if err := genswagger.Validate(b); err != nil {
		t.Errorf("written document does not validate: %+v", err)
	}
	if !strings.Contains(string(b), `"/v1/users/{user_id}/orders/{order.id}"`) {
		t.Errorf("document lacks the GetOrder path:\n%s", b)
	}

	for _, want := range []string{
		"Name: " + testproto.CatalogService,
		"v1/users/{user_id}/orders/{order.id}",
		"path order.id TYPE_STRING",
	} {
		if !strings.Contains(dump.String(), want) {
			t.Errorf("dump lacks %q:\n%s", want, dump.String())
		}
	}
}

func TestRunUnresolvedField(t *testing.T) {
	dir := t.TempDir()
	file := testproto.File("broken.proto",
		[]*descriptorpb.DescriptorProto{testproto.Message("Req", testproto.String("id", 1))},
		&descriptorpb.ServiceDescriptorProto{
			Name: proto.String("Broken"),
			Method: []*descriptorpb.MethodDescriptorProto{
				testproto.Method("Get", testproto.Ref("Req"), testproto.Ref("Req"), &annotations.HttpRule{
					Pattern: &annotations.HttpRule_Get{Get: "/v1/things/{thing_id}"},
				}),
			},
		},
	)

	cfg := restdesc.DefaultConfig()
	cfg.DescriptorSets = []string{writeSet(t, dir, "broken.pb", file)}
	cfg.Out = filepath.Join(dir, "swagger.json")

	err := run(cfg, nil)
	nf, ok := errors.Cause(err).(*fieldpath.NotFoundError)
	if !ok {
		t.Fatalf("run error = %v, want a NotFoundError", err)
	}
	if nf.Path != "thing_id" || nf.Message != testproto.Package+".Req" {
		t.Errorf("NotFoundError = %+v", nf)
	}
	if _, err := os.Stat(cfg.Out); !os.IsNotExist(err) {
		t.Error("a document was written for a broken description")
	}
}

func TestReadDescriptorSetsErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := readDescriptorSets([]string{filepath.Join(dir, "missing.pb")}); err == nil {
		t.Error("missing file read without error")
	}

	garbage := filepath.Join(dir, "garbage.pb")
	if err := os.WriteFile(garbage, []byte("not a descriptor set"), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := readDescriptorSets([]string{garbage}); err == nil {
		t.Error("garbage decoded without error")
	}

	empty := writeSet(t, dir, "empty.pb")
	if _, err := readDescriptorSets([]string{empty}); err == nil {
		t.Error("empty set accepted")
	}
}
