package extractor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "literal strings and line moves",
			content: "BT /F1 10 Tf 72 700 Td (Total Dues) Tj 0 -14 Td (45,240.00) Tj ET",
			want:    "Total Dues\n45,240.00",
		},
		{
			name:    "TJ array with word gap",
			content: "BT [(Minimum)-300(Amount)-250(Due)] TJ ET",
			want:    "Minimum Amount Due",
		},
		{
			name:    "escaped parentheses",
			content: `BT (Rs\(INR\) 1,000) Tj ET`,
			want:    "Rs(INR) 1,000",
		},
		{
			name:    "text outside BT is ignored",
			content: "(stray) Tj BT (kept) Tj ET",
			want:    "kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeContent([]byte(tt.content), newCharMap()))
		})
	}
}

func TestCharMapDecodesHexStrings(t *testing.T) {
	cmap := newCharMap()
	cmap.parse(`
/CIDInit /ProcSet findresource begin
2 beginbfchar
<0003> <0020>
<0011> <0044>
endbfchar
1 beginbfrange
<0024> <0026> <0061>
endbfrange
endcmap`)

	got := decodeContent([]byte("BT <001100240025002600030011> Tj ET"), cmap)
	assert.Equal(t, "Dabc D", got)
}

func TestRawTextReadsCompressedStreams(t *testing.T) {
	var body bytes.Buffer
	zw := zlib.NewWriter(&body)
	_, err := zw.Write([]byte("BT /F1 10 Tf 72 700 Td (Statement Date 15/06/2024) Tj ET"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var pdf bytes.Buffer
	pdf.WriteString("%PDF-1.4\n1 0 obj\n<< /Filter /FlateDecode >>\nstream\n")
	pdf.Write(body.Bytes())
	pdf.WriteString("\nendstream\nendobj\n%%EOF\n")

	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, pdf.Bytes(), 0o600))

	text, err := rawText(path)
	require.NoError(t, err)
	assert.Equal(t, "Statement Date 15/06/2024", text)
}
