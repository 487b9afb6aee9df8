package artifact

import (
	"strings"

	"github.com/arthur-debert/bcforge/pkg/errors"
)

const upperhex = "0123456789ABCDEF"

// shouldEscape reports whether b is replaced by %XX in a key. Besides control
// and non-ASCII bytes this covers path separators and characters a shell
// would interpret. '%' is escaped so that Decode is unambiguous.
func shouldEscape(b byte) bool {
	if b < 0x20 || b >= 0x7F {
		return true
	}
	switch b {
	case ' ', '"', '<', '>', '`', '/', '\\', '%':
		return true
	}
	return false
}

// Encode returns the store key for an absolute path.
func Encode(path string) string {
	n := 0
	for i := 0; i < len(path); i++ {
		if shouldEscape(path[i]) {
			n++
		}
	}
	if n == 0 {
		return path
	}

	var b strings.Builder
	b.Grow(len(path) + 2*n)
	for i := 0; i < len(path); i++ {
		c := path[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Decode reverses Encode.
func Decode(key string) (string, error) {
	if !strings.Contains(key, "%") {
		return key, nil
	}

	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(key) {
			return "", errors.Newf(errors.ErrKeyDecode, "truncated escape at offset %d in %q", i, key)
		}
		hi, okHi := unhex(key[i+1])
		lo, okLo := unhex(key[i+2])
		if !okHi || !okLo {
			return "", errors.Newf(errors.ErrKeyDecode, "invalid escape %q at offset %d in %q", key[i:i+3], i, key)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
