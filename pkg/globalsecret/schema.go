package globalsecret

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

var scalarTypes = []interface{}{"string", "number", "boolean"}

// Schema returns the JSON Schema a payload must satisfy for d: an object
// holding every field key with a scalar value, and nothing else when Strict.
func Schema(d Descriptor) map[string]interface{} {
	props := make(map[string]interface{}, len(d.Fields))
	required := make([]interface{}, 0, len(d.Fields))
	for _, f := range d.Fields {
		props[f.Key] = map[string]interface{}{"type": scalarTypes}
		required = append(required, f.Key)
	}

	schema := map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                d.Name,
		"type":                 "object",
		"properties":           props,
		"additionalProperties": !d.Strict,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

type shapeProblem struct {
	key    string
	reason string
}

// checkShape validates a decoded payload against Schema(d).
func checkShape(secretName string, d Descriptor, doc map[string]interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(Schema(d)),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return &DecodeError{Secret: secretName, Reason: "schema validation error", Err: err}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]shapeProblem, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, describeProblem(re))
	}
	// Missing keys first, then by key, so the reported error is stable.
	sort.SliceStable(problems, func(i, j int) bool {
		mi, mj := problems[i].reason == reasonMissing, problems[j].reason == reasonMissing
		if mi != mj {
			return mi
		}
		return problems[i].key < problems[j].key
	})

	descriptions := make([]string, len(problems))
	for i, p := range problems {
		descriptions[i] = fmt.Sprintf("%s: %s", p.key, p.reason)
	}
	return &DecodeError{
		Secret:   secretName,
		Key:      problems[0].key,
		Reason:   problems[0].reason,
		Problems: descriptions,
	}
}

const (
	reasonMissing    = "missing key"
	reasonUnexpected = "unexpected key"
	reasonNotScalar  = "value must be a string, number or boolean"
)

func describeProblem(re gojsonschema.ResultError) shapeProblem {
	property, _ := re.Details()["property"].(string)
	switch re.Type() {
	case "required":
		return shapeProblem{key: property, reason: reasonMissing}
	case "additional_property_not_allowed":
		return shapeProblem{key: property, reason: reasonUnexpected}
	case "invalid_type":
		return shapeProblem{key: re.Field(), reason: reasonNotScalar}
	default:
		return shapeProblem{key: re.Field(), reason: re.Description()}
	}
}
