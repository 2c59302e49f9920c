package ir

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrNotCanonical is returned for values that have no canonical encoding.
var ErrNotCanonical = errors.New("not canonical")

// MarshalCanonical encodes v as RFC 8785 JSON, the form graph and BOM
// hashes are computed over. v may nest strings, ints, bools, []any,
// []string, map[string]any and map[string]string. Strings are NFC
// normalized and object keys are ordered by UTF-16 code units. Floats and
// nil are rejected; quantities travel as decimal strings.
func MarshalCanonical(v any) ([]byte, error) {
	return appendValue(nil, v)
}

func appendValue(dst []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return appendString(dst, val), nil
	case int:
		return strconv.AppendInt(dst, int64(val), 10), nil
	case int64:
		return strconv.AppendInt(dst, val, 10), nil
	case bool:
		return strconv.AppendBool(dst, val), nil
	case []string:
		dst = append(dst, '[')
		for i, s := range val {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, s)
		}
		return append(dst, ']'), nil
	case []any:
		dst = append(dst, '[')
		for i, elem := range val {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendValue(dst, elem); err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return append(dst, ']'), nil
	case map[string]string:
		return appendObject(dst, val)
	case map[string]any:
		return appendObject(dst, val)
	case nil:
		return nil, fmt.Errorf("%w: null", ErrNotCanonical)
	case float32, float64:
		return nil, fmt.Errorf("%w: float %v", ErrNotCanonical, val)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrNotCanonical, v)
	}
}

func appendObject[V any](dst []byte, obj map[string]V) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)

	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, k)
		dst = append(dst, ':')
		var err error
		if dst, err = appendValue(dst, obj[k]); err != nil {
			return nil, fmt.Errorf("%q: %w", k, err)
		}
	}
	return append(dst, '}'), nil
}

// compareUTF16 orders keys by UTF-16 code units. Byte order differs for
// runes above U+FFFF, which sort before U+E000..U+FFFF here.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

const hexDigits = "0123456789abcdef"

// appendString writes s NFC normalized. Only quote, backslash and control
// characters are escaped; HTML characters and U+2028/U+2029 are literal.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for _, r := range norm.NFC.String(s) {
		switch r {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if r < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[r>>4], hexDigits[r&0xf])
				continue
			}
			dst = utf8.AppendRune(dst, r)
		}
	}
	return append(dst, '"')
}
