// Package restdesc describes the REST mapping of protobuf services annotated
// with google.api.http, and holds the types shared by its generators.
package restdesc

import (
	"bytes"
	"io"
)

// NamedReadWriter represents a file name and that file's content
type NamedReadWriter interface {
	io.ReadWriter
	// Name() is the path the file is written to, relative to the output
	// directory. Note that os.File fulfills the NamedReadWriter interface.
	Name() string
}

// SimpleFile pointer implements the NamedReadWriter interface
type SimpleFile struct {
	bytes.Buffer
	Path string
}

func (s *SimpleFile) Name() string {
	return s.Path
}
