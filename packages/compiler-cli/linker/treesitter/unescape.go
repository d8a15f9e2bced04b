package treesitter

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// unescapeJS decodes the escape sequences of a JavaScript string or template
// literal body.
func unescapeJS(body string) (string, error) {
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var units []uint16
	var out strings.Builder
	flush := func() {
		if len(units) > 0 {
			out.WriteString(string(utf16.Decode(units)))
			units = units[:0]
		}
	}

	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			flush()
			r, size := utf8.DecodeRuneInString(body[i:])
			out.WriteRune(r)
			i += size
			continue
		}
		if i+1 >= len(body) {
			return "", errors.New("unterminated escape sequence")
		}
		i++
		c = body[i]
		i++
		switch c {
		case 'n':
			units = append(units, '\n')
		case 'r':
			units = append(units, '\r')
		case 't':
			units = append(units, '\t')
		case 'b':
			units = append(units, '\b')
		case 'f':
			units = append(units, '\f')
		case 'v':
			units = append(units, '\v')
		case '\r':
			// Line continuation.
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+2 > len(body) {
				return "", errors.New("malformed hexadecimal escape sequence")
			}
			v, err := strconv.ParseUint(body[i:i+2], 16, 8)
			if err != nil {
				return "", errors.New("malformed hexadecimal escape sequence")
			}
			units = append(units, uint16(v))
			i += 2
		case 'u':
			if i < len(body) && body[i] == '{' {
				end := strings.IndexByte(body[i:], '}')
				if end < 0 {
					return "", errors.New("malformed Unicode escape sequence")
				}
				v, err := strconv.ParseUint(body[i+1:i+end], 16, 32)
				if err != nil || v > utf8.MaxRune {
					return "", errors.New("malformed Unicode escape sequence")
				}
				r1, r2 := utf16.EncodeRune(rune(v))
				if r1 == utf8.RuneError {
					units = append(units, uint16(v))
				} else {
					units = append(units, uint16(r1), uint16(r2))
				}
				i += end + 1
				continue
			}
			if i+4 > len(body) {
				return "", errors.New("malformed Unicode escape sequence")
			}
			v, err := strconv.ParseUint(body[i:i+4], 16, 16)
			if err != nil {
				return "", errors.New("malformed Unicode escape sequence")
			}
			units = append(units, uint16(v))
			i += 4
		default:
			if c >= '0' && c <= '7' {
				// Legacy octal escape of up to three digits, `\0` included.
				start := i - 1
				end := start + 1
				limit := 3
				if c > '3' {
					limit = 2
				}
				for end < len(body) && end-start < limit && body[end] >= '0' && body[end] <= '7' {
					end++
				}
				v, _ := strconv.ParseUint(body[start:end], 8, 16)
				units = append(units, uint16(v))
				i = end
				continue
			}
			flush()
			r, size := utf8.DecodeRuneInString(body[i-1:])
			// U+2028 and U+2029 are line continuations too.
			if r != '\u2028' && r != '\u2029' {
				out.WriteRune(r)
			}
			i += size - 1
		}
	}
	flush()
	return out.String(), nil
}
