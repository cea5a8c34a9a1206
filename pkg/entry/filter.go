package entry

import (
	"strings"

	"github.com/newtron-network/rosctl/pkg/util"
)

// Filter is a device where-expression selecting the entries that match a Key.
type Filter string

// BuildFilter renders `where f1="v1" f2="v2"` in key order. The output is a
// pure function of the key.
func BuildFilter(key Key) (Filter, error) {
	if key.IsZero() {
		return "", util.NewValidationError("empty key")
	}
	var b strings.Builder
	b.WriteString("where")
	for _, f := range key.fields {
		if msg := checkValue(f.Name, f.Value); msg != "" {
			return "", util.NewValidationError(msg)
		}
		b.WriteByte(' ')
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(quote(f.Value))
	}
	return Filter(b.String()), nil
}

func (f Filter) String() string {
	return string(f)
}

// quote wraps s in a double-quoted device string literal. Backslash and $
// are escape and substitution characters inside the literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `$`, `\$`)
	return `"` + r.Replace(s) + `"`
}

// formatArg leaves plain tokens bare and quotes anything else.
func formatArg(s string) string {
	for _, r := range s {
		if !isBareRune(r) {
			return quote(s)
		}
	}
	return s
}

func isBareRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(".-_/:,", r)
}
