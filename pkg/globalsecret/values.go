package globalsecret

import (
	"fmt"
	"strconv"
	"time"
)

// Values holds a decoded payload and coerces its entries to field types.
// Coercion failures are recorded rather than returned; the first one is
// reported by Err. Messages never include the offending value.
type Values struct {
	secret string
	m      map[string]string
	err    error
}

// NewValues wraps an already decoded key/value map.
func NewValues(secretName string, m map[string]string) *Values {
	return &Values{secret: secretName, m: m}
}

// SecretName is the name the payload was fetched by.
func (v *Values) SecretName() string {
	return v.secret
}

// Len returns the number of decoded keys.
func (v *Values) Len() int {
	return len(v.m)
}

// Err returns the first coercion failure, or nil.
func (v *Values) Err() error {
	return v.err
}

func (v *Values) fail(key, reason string, cause error) {
	if v.err != nil {
		return
	}
	v.err = &DecodeError{Secret: v.secret, Key: key, Reason: reason, Err: cause}
}

func (v *Values) raw(key string) (string, bool) {
	s, ok := v.m[key]
	if !ok {
		v.fail(key, reasonMissing, nil)
	}
	return s, ok
}

// String returns the value of key.
func (v *Values) String(key string) string {
	s, _ := v.raw(key)
	return s
}

// Secret returns the value of key as a redacting Secret.
func (v *Values) Secret(key string) Secret {
	return Secret(v.String(key))
}

// Bytes returns the value of key as raw bytes.
func (v *Values) Bytes(key string) []byte {
	s, ok := v.raw(key)
	if !ok {
		return nil
	}
	return []byte(s)
}

// Bool parses the value of key with strconv.ParseBool.
func (v *Values) Bool(key string) bool {
	s, ok := v.raw(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		v.fail(key, "cannot parse value as bool", numError(err))
	}
	return b
}

// Int parses the value of key as a base-10 integer of the given bit size.
func (v *Values) Int(key string, bits int) int64 {
	s, ok := v.raw(key)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		v.fail(key, "cannot parse value as "+sizedName("int", bits), numError(err))
		return 0
	}
	return n
}

// Uint parses the value of key as a base-10 unsigned integer of the given bit size.
func (v *Values) Uint(key string, bits int) uint64 {
	s, ok := v.raw(key)
	if !ok {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		v.fail(key, "cannot parse value as "+sizedName("uint", bits), numError(err))
		return 0
	}
	return n
}

// Float parses the value of key as a float of the given bit size.
func (v *Values) Float(key string, bits int) float64 {
	s, ok := v.raw(key)
	if !ok {
		return 0
	}
	if bits == 0 {
		bits = 64
	}
	f, err := strconv.ParseFloat(s, bits)
	if err != nil {
		v.fail(key, "cannot parse value as "+sizedName("float", bits), numError(err))
		return 0
	}
	return f
}

// Duration parses the value of key with time.ParseDuration.
func (v *Values) Duration(key string) time.Duration {
	s, ok := v.raw(key)
	if !ok {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		v.fail(key, "cannot parse value as duration", fmt.Errorf("invalid duration"))
		return 0
	}
	return d
}

func sizedName(base string, bits int) string {
	if bits == 0 {
		return base
	}
	return base + strconv.Itoa(bits)
}

// numError strips the input from strconv errors so values never leak into
// error messages.
func numError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}

// Check coerces every field of d by its kind and returns the first failure.
// It lets callers verify a payload without building the struct.
func (v *Values) Check(d Descriptor) error {
	for _, f := range d.Fields {
		switch f.Kind {
		case KindBytes:
			v.Bytes(f.Key)
		case KindBool:
			v.Bool(f.Key)
		case KindInt:
			v.Int(f.Key, f.Bits)
		case KindUint:
			v.Uint(f.Key, f.Bits)
		case KindFloat:
			v.Float(f.Key, f.Bits)
		case KindDuration:
			v.Duration(f.Key)
		default:
			v.String(f.Key)
		}
	}
	return v.Err()
}
