package extractor

import (
	"errors"
	"fmt"
)

// ErrNoPages is returned when a PDF opens but contains no pages.
var ErrNoPages = errors.New("PDF has no pages")

// DocumentReadError reports a PDF that cannot be opened or parsed
// structurally: corrupt, encrypted, or empty.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("cannot read document %q: %v", e.Path, e.Err)
}

func (e *DocumentReadError) Unwrap() error {
	return e.Err
}

// IsDocumentReadError reports whether err is or wraps a DocumentReadError.
func IsDocumentReadError(err error) bool {
	var de *DocumentReadError
	return errors.As(err, &de)
}
