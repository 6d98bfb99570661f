package extractor

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/klauspost/compress/zlib"
)

// rawText is the last in-process text path. It scans the file's content
// streams directly, applying any ToUnicode maps it finds, for documents whose
// object structure the PDF library rejects.
func rawText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	streams := streamBodies(data)
	cmap := newCharMap()
	for _, s := range streams {
		if bytes.Contains(s, []byte("beginbfchar")) || bytes.Contains(s, []byte("beginbfrange")) {
			cmap.parse(string(s))
		}
	}

	var parts []string
	for _, s := range streams {
		if !bytes.Contains(s, []byte("BT")) {
			continue
		}
		if text := decodeContent(s, cmap); len(text) > 10 {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// streamBodies returns the inflated body of every stream object. Streams that
// are not zlib-compressed are returned as stored.
func streamBodies(data []byte) [][]byte {
	var out [][]byte
	for off := 0; off < len(data); {
		i := bytes.Index(data[off:], []byte("stream"))
		if i < 0 {
			break
		}
		start := off + i + len("stream")
		if bytes.HasSuffix(data[:off+i], []byte("end")) {
			off = start
			continue
		}
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}
		end := bytes.Index(data[start:], []byte("endstream"))
		if end < 0 {
			break
		}
		if body := data[start : start+end]; len(body) > 0 {
			out = append(out, inflate(body))
		}
		off = start + end + len("endstream")
	}
	return out
}

func inflate(body []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return body
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return body
	}
	return out
}

// decodeContent interprets the text operators of one content stream.
func decodeContent(content []byte, cmap *charMap) string {
	var (
		b       strings.Builder
		operand []string
		inText  bool
	)
	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	show := func(raw []byte, hex bool) {
		b.WriteString(cmap.decode(raw, hex))
	}

	lx := &lexer{src: content}
	for {
		tok, kind := lx.next()
		if kind == tokEOF {
			break
		}
		switch kind {
		case tokString, tokHex:
			operand = append(operand, string(kindPrefix(kind))+tok)
			continue
		case tokArray:
			operand = append(operand, tok)
			continue
		case tokNumber:
			operand = append(operand, tok)
			continue
		}

		switch tok {
		case "BT":
			inText = true
		case "ET":
			inText = false
			newline()
		case "Td", "TD":
			if len(operand) == 2 {
				if ty, err := strconv.ParseFloat(operand[1], 64); err == nil && ty != 0 {
					newline()
				} else if b.Len() > 0 {
					b.WriteByte(' ')
				}
			}
		case "T*", "Tm":
			newline()
		case "Tj", "'", "\"":
			if !inText {
				break
			}
			if tok != "Tj" {
				newline()
			}
			if n := len(operand); n > 0 {
				s := operand[n-1]
				show([]byte(s[1:]), s[0] == '<')
			}
		case "TJ":
			if !inText || len(operand) == 0 {
				break
			}
			showArray(operand[len(operand)-1], &b, cmap)
		}
		operand = operand[:0]
	}
	return strings.TrimSpace(b.String())
}

func kindPrefix(k tokenKind) byte {
	if k == tokHex {
		return '<'
	}
	return '('
}

// showArray renders a TJ array. Large negative kerning is a word gap.
func showArray(arr string, b *strings.Builder, cmap *charMap) {
	lx := &lexer{src: []byte(arr[1:])}
	for {
		tok, kind := lx.next()
		switch kind {
		case tokEOF:
			return
		case tokString:
			b.WriteString(cmap.decode([]byte(tok), false))
		case tokHex:
			b.WriteString(cmap.decode([]byte(tok), true))
		case tokNumber:
			if n, err := strconv.ParseFloat(tok, 64); err == nil && n < -200 {
				b.WriteByte(' ')
			}
		}
	}
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOperator
	tokNumber
	tokString
	tokHex
	tokArray
)

// lexer tokenizes PDF content stream syntax. Strings are returned with
// escapes resolved, hex strings as raw bytes and arrays as their source
// without the closing bracket.
type lexer struct {
	src []byte
	pos int
}

func (l *lexer) next() (string, tokenKind) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isPDFSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			return l.literal(), tokString
		case c == '<' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '<':
			l.skipDict()
		case c == '<':
			return l.hex(), tokHex
		case c == '[':
			return l.array(), tokArray
		case c == ']' || c == '>' || c == '{' || c == '}':
			l.pos++
		case c == '/':
			l.pos++
			l.word()
			return "", tokNumber
		default:
			w := l.word()
			if w == "" {
				l.pos++
				continue
			}
			if _, err := strconv.ParseFloat(w, 64); err == nil {
				return w, tokNumber
			}
			return w, tokOperator
		}
	}
	return "", tokEOF
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	return isPDFSpace(c) || strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.src) && !isDelimiter(l.src[l.pos]) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

func (l *lexer) literal() string {
	var b strings.Builder
	depth := 0
	for l.pos++; l.pos < len(l.src); l.pos++ {
		c := l.src[l.pos]
		switch c {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				l.pos++
				return b.String()
			}
			depth--
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return b.String()
			}
			b.WriteByte(l.escape())
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (l *lexer) escape() byte {
	c := l.src[l.pos]
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	}
	if c < '0' || c > '7' {
		return c
	}
	v := int(c - '0')
	for i := 0; i < 2 && l.pos+1 < len(l.src); i++ {
		d := l.src[l.pos+1]
		if d < '0' || d > '7' {
			break
		}
		v = v*8 + int(d-'0')
		l.pos++
	}
	return byte(v)
}

func (l *lexer) hex() string {
	l.pos++
	var digits []byte
	for l.pos < len(l.src) && l.src[l.pos] != '>' {
		if c := l.src[l.pos]; !isPDFSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			return string(out)
		}
		out = append(out, byte(v))
	}
	return string(out)
}

func (l *lexer) array() string {
	start := l.pos
	depth := 0
	for ; l.pos < len(l.src); l.pos++ {
		switch l.src[l.pos] {
		case '(':
			l.literal()
			l.pos--
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				l.pos++
				return string(l.src[start : l.pos-1])
			}
		}
	}
	return string(l.src[start:])
}

func (l *lexer) skipDict() {
	depth := 0
	for ; l.pos+1 < len(l.src); l.pos++ {
		switch {
		case l.src[l.pos] == '<' && l.src[l.pos+1] == '<':
			depth++
			l.pos++
		case l.src[l.pos] == '>' && l.src[l.pos+1] == '>':
			depth--
			l.pos++
			if depth == 0 {
				l.pos++
				return
			}
		}
	}
	l.pos = len(l.src)
}

// cleanControl drops non-printable runes.
func cleanControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, s)
}
