package vgraph

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// lineSeparator and paragraphSeparator are the two Unicode newline-like
// code points JS source treats as line terminators even inside string
// literals in some historical parsers; escaping them keeps emitted
// output safe to paste as a single-line expression regardless of host
// quirks.
const (
	lineSeparator      rune = ' '
	paragraphSeparator rune = ' '
)

// EscapeString returns s with every byte/rune that is unsafe inside a
// double-quoted source literal escaped, per the string-encoder
// contract: backslash, double-quote, '<' (to prevent "</script>" early
// termination when the output is embedded in an HTML script context),
// U+2028/U+2029, and the C0 control range. Lone surrogates are not
// escaped: ill-formed UTF-8 in s, including an encoded surrogate half,
// decodes to U+FFFD and is written as U+FFFD. The result does not
// include the surrounding quotes.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '<':
			b.WriteString(`\u003c`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case lineSeparator:
			writeUnicodeEscape(&b, uint16(lineSeparator))
		case paragraphSeparator:
			writeUnicodeEscape(&b, uint16(paragraphSeparator))
		default:
			switch {
			case r < 0x20:
				writeUnicodeEscape(&b, uint16(r))
			case utf16.IsSurrogate(r):
				// Ranging over a string never yields a surrogate rune, so
				// this case does not fire; utf16.Encode would map one to
				// U+FFFD.
				units := utf16.Encode([]rune{r})
				for _, u := range units {
					writeUnicodeEscape(&b, u)
				}
			default:
				b.WriteRune(r)
			}
		}
	}

	return b.String()
}

func writeUnicodeEscape(b *strings.Builder, u uint16) {
	b.WriteString(`\u`)
	hex := strconv.FormatUint(uint64(u), 16)
	for len(hex) < 4 {
		hex = "0" + hex
	}
	b.WriteString(hex)
}

// QuotedString returns a double-quoted, source-safe string literal for
// s, suitable for direct embedding in emitted code.
func QuotedString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	b.WriteString(EscapeString(s))
	b.WriteByte('"')
	return b.String()
}

// IsIdentifierSafe reports whether s can be used as a bare JS property
// key (obj.key) instead of a quoted one (obj["key"]). This mirrors the
// teacher's bare-token check in canon.go, adapted to JS identifier
// grammar instead of GLYPH's own bare-token grammar.
func IsIdentifierSafe(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
			continue
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// ValidUTF8 reports whether s decodes cleanly.
func ValidUTF8(s string) bool {
	return utf8.ValidString(s)
}
