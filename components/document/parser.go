package document

import (
	"bytes"
	"context"
	"io"
)

// Parser converts a document read from reader into text written to writer
type Parser interface {
	Parse(context.Context, *bytes.Reader, io.Writer) error
}
