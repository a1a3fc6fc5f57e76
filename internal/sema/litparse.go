package sema

import (
	"strconv"
	"strings"

	"github.com/gmofishsauce/zcc/internal/cgtype"
)

// intLiteral parses the exact source spelling of an integer literal
// token (decimal, 0x hex, or leading-zero octal, with any case/order
// combination of u/l/ll suffixes) into its value and the cgtype that
// spelling denotes under the usual suffix rules.
func intLiteral(text string) (int64, *cgtype.Type) {
	digits, unsigned, longCount := splitIntSuffix(text)
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base = 16
		digits = digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base = 8
	}
	if digits == "" {
		digits = "0"
	}
	val, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		val = 0
	}
	kind := cgtype.Int
	if longCount == 1 {
		kind = cgtype.Long
	} else if longCount >= 2 {
		kind = cgtype.LongLong
	}
	// A literal too large for the signed form of its suffix-requested
	// rank is unsigned regardless of spelling, matching C's literal type
	// selection rule.
	if !unsigned && val > uint64(1)<<uint(cgtype.NewBasic(kind, false).BitWidth()-1)-1 {
		unsigned = true
	}
	return int64(val), cgtype.NewBasic(kind, unsigned)
}

func splitIntSuffix(text string) (digits string, unsigned bool, longCount int) {
	i := len(text)
	for i > 0 {
		c := text[i-1]
		switch c {
		case 'u', 'U':
			unsigned = true
		case 'l', 'L':
			longCount++
		default:
			return text[:i], unsigned, longCount
		}
		i--
	}
	return text[:i], unsigned, longCount
}

// charLiteral parses a 'c' or '\xx' token (minus any leading L for a
// wide character) into its integer value.
func charLiteral(text string) int64 {
	s := strings.TrimPrefix(text, "L")
	s = strings.Trim(s, "'")
	r := unescapeRunes(s)
	if len(r) == 0 {
		return 0
	}
	return int64(r[0])
}

// stringLiteral parses a "..." token (minus any leading L) into its
// decoded byte sequence, not including the terminating NUL that the
// caller is responsible for appending when it matters.
func stringLiteral(text string) []byte {
	s := strings.TrimPrefix(text, "L")
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	runes := unescapeRunes(s)
	out := make([]byte, len(runes))
	for i, r := range runes {
		out[i] = byte(r)
	}
	return out
}

// unescapeRunes decodes C backslash escapes in s. Octal and hex escapes
// of more than one byte's worth of value truncate to the low byte,
// matching the char/byte-oriented storage this compiler targets.
func unescapeRunes(s string) []rune {
	var out []rune
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, rune(b[i]))
			continue
		}
		i++
		switch b[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(b) && j < i+3 && b[j] >= '0' && b[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(string(b[i:j]), 8, 32)
			out = append(out, rune(byte(v)))
			i = j - 1
		case 'a':
			out = append(out, 7)
		case 'b':
			out = append(out, 8)
		case 'f':
			out = append(out, 12)
		case 'v':
			out = append(out, 11)
		case '\\', '\'', '"', '?':
			out = append(out, rune(b[i]))
		case 'x':
			j := i + 1
			for j < len(b) && isHexDigit(b[j]) {
				j++
			}
			v, _ := strconv.ParseUint(string(b[i+1:j]), 16, 32)
			out = append(out, rune(byte(v)))
			i = j - 1
		default:
			out = append(out, rune(b[i]))
		}
	}
	return out
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
