package restdesc

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/metaverse/restdesc/schema"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultOut is the file written when no output path is configured.
const DefaultOut = "swagger.json"

// Config defines the inputs to a description run
type Config struct {
	// DescriptorSets are paths of binary FileDescriptorSets, as written by
	// protoc --include_imports --descriptor_set_out.
	DescriptorSets []string
	// Files restricts the description to services declared in these proto
	// files. All services are described when empty.
	Files []string

	// Out is the path of the generated document. Its extension selects the
	// format: .yaml and .yml for YAML, anything else for JSON.
	Out string

	// Title and Version fill the info section of the document. Title
	// defaults to the name of the first service described.
	Title   string
	Version string

	Policy schema.Policy
	// Validate checks the generated document against the Swagger 2.0
	// specification before it is written.
	Validate bool
}

// DefaultConfig returns a Config with every optional value set to its
// default.
func DefaultConfig() Config {
	return Config{
		Out:     DefaultOut,
		Version: "0.0.1",
		Policy:  schema.PolicyPlaceholder,
	}
}

// Format returns the output format selected by the extension of Out.
func (c Config) Format() string {
	switch strings.ToLower(filepath.Ext(c.Out)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Check reports the first problem that would prevent a run with c.
func (c Config) Check() error {
	if c.Out == "" {
		return errors.New("no output path configured")
	}
	if c.Version == "" {
		return errors.New("no document version configured")
	}
	return nil
}
