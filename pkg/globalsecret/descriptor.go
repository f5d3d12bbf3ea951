package globalsecret

import "fmt"

// Kind is the decoded representation of a field.
type Kind int

const (
	KindString Kind = iota
	KindSecret
	KindBytes
	KindBool
	KindInt
	KindUint
	KindFloat
	KindDuration
)

var kindNames = map[Kind]string{
	KindString:   "string",
	KindSecret:   "secret",
	KindBytes:    "bytes",
	KindBool:     "bool",
	KindInt:      "int",
	KindUint:     "uint",
	KindFloat:    "float",
	KindDuration: "duration",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Field maps one struct field to one key of the secret payload.
type Field struct {
	// Name is the Go field identifier.
	Name string
	// Key is the key looked up in the decoded payload.
	Key string
	// Kind selects the coercion applied to the value.
	Kind Kind
	// Bits is the bit size for numeric kinds, 0 meaning int/uint.
	Bits int
}

// Descriptor is the shape of a secret bundle.
type Descriptor struct {
	// Name is the struct type name.
	Name string
	// SecretName is the remote lookup key. Empty means Name.
	SecretName string
	// Fields are in declaration order.
	Fields []Field
	// Strict rejects payload keys that no field maps.
	Strict bool
}

// LookupName returns the name the secret is fetched by.
func (d Descriptor) LookupName() string {
	if d.SecretName != "" {
		return d.SecretName
	}
	return d.Name
}

// Keys returns the payload keys in field order.
func (d Descriptor) Keys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Secret is a string that prints as [REDACTED]. Convert it with string(s)
// to read the value.
type Secret string

// String implements fmt.Stringer.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v.
func (s Secret) GoString() string {
	return "[REDACTED]"
}
