package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// charMap is a merged ToUnicode table keyed by source code width in bytes.
type charMap struct {
	codes map[int]map[uint32]string
}

func newCharMap() *charMap {
	return &charMap{codes: make(map[int]map[uint32]string)}
}

var (
	bfCharRe  = regexp.MustCompile(`(?s)beginbfchar(.*?)endbfchar`)
	bfRangeRe = regexp.MustCompile(`(?s)beginbfrange(.*?)endbfrange`)
	hexRe     = regexp.MustCompile(`<([0-9A-Fa-f]*)>`)
	rangeRe   = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*(<[0-9A-Fa-f]+>|\[[^\]]*\])`)
)

// parse adds the bfchar and bfrange entries of a CMap stream.
func (m *charMap) parse(src string) {
	for _, block := range bfCharRe.FindAllStringSubmatch(src, -1) {
		toks := hexRe.FindAllStringSubmatch(block[1], -1)
		for i := 0; i+1 < len(toks); i += 2 {
			m.set(toks[i][1], toks[i+1][1])
		}
	}
	for _, block := range bfRangeRe.FindAllStringSubmatch(src, -1) {
		for _, r := range rangeRe.FindAllStringSubmatch(block[1], -1) {
			lo, err1 := strconv.ParseUint(r[1], 16, 32)
			hi, err2 := strconv.ParseUint(r[2], 16, 32)
			if err1 != nil || err2 != nil || hi < lo || hi-lo > 0xFFFF {
				continue
			}
			width := len(r[1])
			if strings.HasPrefix(r[3], "[") {
				for i, dst := range hexRe.FindAllStringSubmatch(r[3], -1) {
					m.setCode(width, uint32(lo)+uint32(i), utf16Hex(dst[1]))
				}
				continue
			}
			dstHex := strings.Trim(r[3], "<>")
			base, err := strconv.ParseUint(dstHex, 16, 32)
			if err != nil {
				continue
			}
			for c := lo; c <= hi; c++ {
				m.setCode(width, uint32(c), utf16Hex(strconv.FormatUint(base+(c-lo), 16)))
			}
		}
	}
}

func (m *charMap) set(srcHex, dstHex string) {
	code, err := strconv.ParseUint(srcHex, 16, 32)
	if err != nil {
		return
	}
	m.setCode(len(srcHex), uint32(code), utf16Hex(dstHex))
}

func (m *charMap) setCode(hexWidth int, code uint32, s string) {
	if s == "" {
		return
	}
	n := (hexWidth + 1) / 2
	if m.codes[n] == nil {
		m.codes[n] = make(map[uint32]string)
	}
	m.codes[n][code] = s
}

// decode maps raw string bytes to text. Without a usable mapping, hex
// strings of even length are read as UTF-16BE and literals as Latin-1.
func (m *charMap) decode(raw []byte, hex bool) string {
	if out, ok := m.lookup(raw); ok {
		return out
	}
	if hex && len(raw) >= 2 && len(raw)%2 == 0 {
		units := make([]uint16, 0, len(raw)/2)
		for i := 0; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return cleanControl(string(utf16.Decode(units)))
	}
	var b strings.Builder
	for _, c := range raw {
		b.WriteRune(rune(c))
	}
	return cleanControl(b.String())
}

// lookup tries the widest code size first, falling back to narrower codes
// byte by byte. It fails when no code in raw is mapped.
func (m *charMap) lookup(raw []byte) (string, bool) {
	if len(m.codes) == 0 {
		return "", false
	}
	var b strings.Builder
	hit := false
	for i := 0; i < len(raw); {
		matched := false
		for n := 4; n >= 1; n-- {
			table := m.codes[n]
			if table == nil || i+n > len(raw) {
				continue
			}
			var code uint32
			for _, c := range raw[i : i+n] {
				code = code<<8 | uint32(c)
			}
			if s, ok := table[code]; ok {
				b.WriteString(s)
				i += n
				matched, hit = true, true
				break
			}
		}
		if !matched {
			if c := raw[i]; c >= 32 && c < 127 {
				b.WriteByte(c)
			}
			i++
		}
	}
	return b.String(), hit
}

// utf16Hex decodes a hex string of UTF-16BE code units, handling surrogate
// pairs.
func utf16Hex(h string) string {
	if len(h)%4 != 0 {
		h = strings.Repeat("0", 4-len(h)%4) + h
	}
	units := make([]uint16, 0, len(h)/4)
	for i := 0; i+4 <= len(h); i += 4 {
		v, err := strconv.ParseUint(h[i:i+4], 16, 16)
		if err != nil {
			return ""
		}
		units = append(units, uint16(v))
	}
	return string(utf16.Decode(units))
}
