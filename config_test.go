package restdesc

import (
	"testing"

	"github.com/metaverse/restdesc/schema"
)

func TestConfigFormat(t *testing.T) {
	var cases = map[string]string{
		"swagger.json":     FormatJSON,
		"api/swagger.yaml": FormatYAML,
		"API.YML":          FormatYAML,
		"swagger":          FormatJSON,
		"":                 FormatJSON,
	}
	for out, want := range cases {
		if got := (Config{Out: out}).Format(); got != want {
			t.Errorf("Config{Out: %q}.Format() = %q, want %q", out, got, want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if err := c.Check(); err != nil {
		t.Errorf("default config does not check: %v", err)
	}
	if c.Policy != schema.PolicyPlaceholder || c.Out != DefaultOut {
		t.Errorf("unexpected defaults %+v", c)
	}

	c.Out = ""
	if err := c.Check(); err == nil {
		t.Error("config without output path checks")
	}
	c = DefaultConfig()
	c.Version = ""
	if err := c.Check(); err == nil {
		t.Error("config without version checks")
	}
}

func TestSimpleFile(t *testing.T) {
	var f NamedReadWriter = &SimpleFile{Path: "out/swagger.json"}
	if _, err := f.Write([]byte("{}")); err != nil {
		t.Fatal(err)
	}
	if f.Name() != "out/swagger.json" {
		t.Errorf("Name() = %q", f.Name())
	}
	buf := make([]byte, 8)
	n, _ := f.Read(buf)
	if string(buf[:n]) != "{}" {
		t.Errorf("read back %q", buf[:n])
	}
}
