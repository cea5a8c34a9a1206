package entry

import (
	"fmt"
	"strings"

	"github.com/newtron-network/rosctl/pkg/util"
)

// Field is one name=value pair of an entry.
type Field struct {
	Name  string
	Value string
}

// Key is the natural key of an entry. Fields are held in the kind's key
// order; a Key can only be built through NewKey or NewSpec.
type Key struct {
	kind   string
	fields []Field
}

// Spec is a Key plus the creation-only attributes the caller supplied.
type Spec struct {
	Kind  Kind
	Key   Key
	attrs map[string]string
}

// NewKey validates values against the kind's key fields and returns the key.
// Every key field is required and must be embeddable in a quoted literal.
func (k Kind) NewKey(values map[string]string) (Key, error) {
	v := &util.ValidationBuilder{}
	key := Key{kind: k.Name}
	for _, name := range k.KeyFields {
		val := values[name]
		if msg := checkValue(name, val); msg != "" {
			v.AddError(msg)
			continue
		}
		key.fields = append(key.fields, Field{Name: name, Value: val})
	}
	for name := range values {
		if !k.isKeyField(name) && !k.isCreateField(name) {
			v.AddErrorf("%s: unknown field %q", k.Name, name)
		}
	}
	if err := v.Build(); err != nil {
		return Key{}, err
	}
	return key, nil
}

// NewSpec validates the key fields and any creation-only attributes present
// in values. Creation attributes may be omitted here; CreateArgs requires them.
func (k Kind) NewSpec(values map[string]string) (Spec, error) {
	key, err := k.NewKey(values)
	if err != nil {
		return Spec{}, err
	}

	v := &util.ValidationBuilder{}
	attrs := make(map[string]string)
	for _, name := range k.CreateFields {
		val, ok := values[name]
		if !ok || val == "" {
			continue
		}
		if msg := checkValue(name, val); msg != "" {
			v.AddError(msg)
			continue
		}
		attrs[name] = val
	}
	if err := v.Build(); err != nil {
		return Spec{}, err
	}
	return Spec{Kind: k, Key: key, attrs: attrs}, nil
}

// Fields returns a copy of the key fields in key order.
func (k Key) Fields() []Field {
	return append([]Field(nil), k.fields...)
}

// Get returns the value of a key field, or "" if absent.
func (k Key) Get(name string) string {
	for _, f := range k.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// IsZero reports whether the key was never built.
func (k Key) IsZero() bool {
	return len(k.fields) == 0
}

// String renders the key as "name=value" pairs for logs and audit records.
func (k Key) String() string {
	parts := make([]string, len(k.fields))
	for i, f := range k.fields {
		parts[i] = f.Name + "=" + f.Value
	}
	return strings.Join(parts, " ")
}

// Attr returns a creation-only attribute.
func (s Spec) Attr(name string) string {
	return s.attrs[name]
}

// CreateArgs renders the "add" arguments in the kind's creation order.
// Every creation-only attribute is required.
func (s Spec) CreateArgs() (string, error) {
	v := &util.ValidationBuilder{}
	parts := make([]string, 0, len(s.Kind.CreateOrder))
	for _, name := range s.Kind.CreateOrder {
		val := s.Key.Get(name)
		if val == "" {
			val = s.attrs[name]
		}
		if val == "" {
			v.AddErrorf("%s is required to create %s", name, s.Kind.Name)
			continue
		}
		parts = append(parts, name+"="+formatArg(val))
	}
	if err := v.Build(); err != nil {
		return "", err
	}
	return strings.Join(parts, " "), nil
}

// checkValue returns a validation message, or "" when val is usable.
func checkValue(name, val string) string {
	if val == "" {
		return name + " is required"
	}
	if strings.ContainsRune(val, '"') {
		return fmt.Sprintf("%s: double quotes are not supported (%q)", name, val)
	}
	for _, r := range val {
		if r < 0x20 || r == 0x7f {
			return fmt.Sprintf("%s: control characters are not allowed (%q)", name, val)
		}
	}
	return ""
}
