package globalsecret

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/systmms/globalsecrets/internal/secure"
)

// Decode parses a secret payload as a flat JSON object and checks it against
// d. Numbers and booleans keep their textual form; nested values and nulls
// are rejected. The raw payload is held in locked memory while it is parsed.
func Decode(secretName, payload string, d Descriptor) (*Values, error) {
	blob, err := secure.SealBlob(payload)
	if err != nil {
		return nil, &DecodeError{Secret: secretName, Reason: "payload is empty", Err: err}
	}
	defer blob.Destroy()

	locked, err := blob.Open()
	if err != nil {
		return nil, &DecodeError{Secret: secretName, Reason: "cannot open payload", Err: err}
	}
	defer locked.Destroy()

	doc, err := parseObject(locked.Bytes())
	if err != nil {
		return nil, &DecodeError{Secret: secretName, Reason: "payload is not a JSON object", Err: err}
	}

	if err := checkShape(secretName, d, doc); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		text, err := scalarText(doc[f.Key])
		if err != nil {
			return nil, &DecodeError{Secret: secretName, Key: f.Key, Reason: reasonNotScalar, Err: err}
		}
		values[f.Key] = text
	}

	return &Values{secret: secretName, m: values}, nil
}

var errTrailingData = errors.New("unexpected data after JSON object")

func parseObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, errors.New("top-level value is not an object")
	}
	return obj, nil
}

func scalarText(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", errors.New("not a scalar")
	}
}
