package introspect

import (
	"fmt"
	"go/token"

	"github.com/systmms/globalsecrets/pkg/globalsecret"
)

// Descriptor is the build-time view of a secret bundle struct.
type Descriptor struct {
	// Name is the struct type identifier.
	Name string `json:"name" yaml:"name"`
	// Package is the name of the package declaring the type.
	Package string `json:"package" yaml:"package"`
	// SecretName is the remote lookup key.
	SecretName string `json:"secretName" yaml:"secretName"`
	// Exported reports whether Name is an exported identifier.
	Exported bool `json:"exported" yaml:"exported"`
	// Strict rejects payload keys that no field maps.
	Strict bool `json:"strict" yaml:"strict"`
	// Fields are in declaration order.
	Fields []Field `json:"fields" yaml:"fields"`
}

// Field is one struct field and the payload key it is filled from.
type Field struct {
	Name   string            `json:"name" yaml:"name"`
	Key    string            `json:"key" yaml:"key"`
	GoType string            `json:"goType" yaml:"goType"`
	Kind   globalsecret.Kind `json:"kind" yaml:"kind"`
	Bits   int               `json:"bits,omitempty" yaml:"bits,omitempty"`
}

// Runtime converts d to the descriptor the generated code hands to
// globalsecret.New.
func (d *Descriptor) Runtime() globalsecret.Descriptor {
	fields := make([]globalsecret.Field, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = globalsecret.Field{Name: f.Name, Key: f.Key, Kind: f.Kind, Bits: f.Bits}
	}
	rd := globalsecret.Descriptor{
		Name:   d.Name,
		Fields: fields,
		Strict: d.Strict,
	}
	if d.SecretName != d.Name {
		rd.SecretName = d.SecretName
	}
	return rd
}

// DeclarationError reports a type that cannot be turned into a secret bundle.
type DeclarationError struct {
	Type   string
	Field  string
	Pos    token.Position
	Reason string
}

func (e *DeclarationError) Error() string {
	var loc string
	if e.Pos.IsValid() {
		loc = e.Pos.String() + ": "
	}
	if e.Field != "" {
		return fmt.Sprintf("%s%s.%s: %s", loc, e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s%s: %s", loc, e.Type, e.Reason)
}
