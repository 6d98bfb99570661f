package extractor

import (
	"io"
	"os"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureFile records the file Open hands to the PDF reader.
func captureFile(t *testing.T, reader func(io.ReaderAt, int64) (*pdf.Reader, error)) **os.File {
	t.Helper()
	orig := newReader
	t.Cleanup(func() { newReader = orig })

	var f *os.File
	newReader = func(ra io.ReaderAt, size int64) (*pdf.Reader, error) {
		f = ra.(*os.File)
		if reader != nil {
			return reader(ra, size)
		}
		return orig(ra, size)
	}
	return &f
}

func TestOpenClosesFileOnPanic(t *testing.T) {
	path := writePDF(t, pdfPage{Texts: []pdfText{{X: 72, Y: 740, S: "Statement"}}})

	t.Run("page count", func(t *testing.T) {
		f := captureFile(t, nil)
		orig := pageCount
		t.Cleanup(func() { pageCount = orig })
		pageCount = func(*pdf.Reader) int { panic("malformed page tree") }

		doc, err := Open(path)
		assert.Nil(t, doc)
		require.Error(t, err)
		assert.True(t, IsDocumentReadError(err))
		assert.Contains(t, err.Error(), "malformed page tree")

		require.NotNil(t, *f)
		assert.ErrorIs(t, (*f).Close(), os.ErrClosed)
	})

	t.Run("reader", func(t *testing.T) {
		f := captureFile(t, func(io.ReaderAt, int64) (*pdf.Reader, error) { panic("bad xref") })

		doc, err := Open(path)
		assert.Nil(t, doc)
		assert.True(t, IsDocumentReadError(err))

		require.NotNil(t, *f)
		assert.ErrorIs(t, (*f).Close(), os.ErrClosed)
	})
}

func TestOpenClosesFileOnError(t *testing.T) {
	path := writePDF(t, pdfPage{Texts: []pdfText{{X: 72, Y: 740, S: "Statement"}}})
	f := captureFile(t, nil)
	orig := pageCount
	t.Cleanup(func() { pageCount = orig })
	pageCount = func(*pdf.Reader) int { return 0 }

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrNoPages)
	require.NotNil(t, *f)
	assert.ErrorIs(t, (*f).Close(), os.ErrClosed)
}
