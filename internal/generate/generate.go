// Package generate renders the accessor file for an inspected secret bundle.
package generate

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"

	"github.com/systmms/globalsecrets/internal/introspect"
	"github.com/systmms/globalsecrets/pkg/globalsecret"
)

//go:embed templates/bundle.go.tmpl
var bundleTemplate string

var tmpl = template.Must(template.New("bundle").Parse(bundleTemplate))

// Options controls rendering and writing.
type Options struct {
	// Output is the file path written by Write. Relative paths are resolved
	// against Dir; empty means OutputFile(desc.Name) in Dir.
	Output string
	// Dir is the package directory.
	Dir string
	// Invocation, when set, is recorded in the file header.
	Invocation string
}

var kindConsts = map[globalsecret.Kind]string{
	globalsecret.KindString:   "KindString",
	globalsecret.KindSecret:   "KindSecret",
	globalsecret.KindBytes:    "KindBytes",
	globalsecret.KindBool:     "KindBool",
	globalsecret.KindInt:      "KindInt",
	globalsecret.KindUint:     "KindUint",
	globalsecret.KindFloat:    "KindFloat",
	globalsecret.KindDuration: "KindDuration",
}

type fieldData struct {
	Name      string
	Key       string
	KindConst string
	Bits      int
	Getter    string
}

type fileData struct {
	Package    string
	Name       string
	SecretName string
	LookupName string
	Strict     bool
	Binding    string
	Load       string
	Must       string
	Invocation string
	Fields     []fieldData
}

// Render produces the gofmt'd accessor file for desc.
func Render(desc *introspect.Descriptor, opts Options) ([]byte, error) {
	if desc == nil || len(desc.Fields) == 0 {
		return nil, fmt.Errorf("nothing to generate: descriptor has no fields")
	}

	load, must := AccessorNames(desc.Name)
	data := fileData{
		Package:    desc.Package,
		Name:       desc.Name,
		LookupName: desc.SecretName,
		Strict:     desc.Strict,
		Binding:    BindingName(desc.Name),
		Load:       load,
		Must:       must,
		Invocation: opts.Invocation,
	}
	if data.LookupName == "" {
		data.LookupName = desc.Name
	}
	if data.LookupName != desc.Name {
		data.SecretName = data.LookupName
	}

	for _, f := range desc.Fields {
		kc, ok := kindConsts[f.Kind]
		if !ok {
			return nil, fmt.Errorf("field %s: unknown kind %v", f.Name, f.Kind)
		}
		data.Fields = append(data.Fields, fieldData{
			Name:      f.Name,
			Key:       f.Key,
			KindConst: kc,
			Bits:      f.Bits,
			Getter:    getter(f),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code: %w", err)
	}
	return src, nil
}

// getter is the expression that reads f from a *globalsecret.Values named v.
func getter(f introspect.Field) string {
	key := fmt.Sprintf("%q", f.Key)
	switch f.Kind {
	case globalsecret.KindSecret:
		return "v.Secret(" + key + ")"
	case globalsecret.KindBytes:
		return "v.Bytes(" + key + ")"
	case globalsecret.KindBool:
		return "v.Bool(" + key + ")"
	case globalsecret.KindDuration:
		return "v.Duration(" + key + ")"
	case globalsecret.KindInt:
		return convert(f.GoType, "int64", fmt.Sprintf("v.Int(%s, %d)", key, f.Bits))
	case globalsecret.KindUint:
		return convert(f.GoType, "uint64", fmt.Sprintf("v.Uint(%s, %d)", key, f.Bits))
	case globalsecret.KindFloat:
		return convert(f.GoType, "float64", fmt.Sprintf("v.Float(%s, %d)", key, f.Bits))
	default:
		return "v.String(" + key + ")"
	}
}

func convert(goType, native, expr string) string {
	if goType == native {
		return expr
	}
	return goType + "(" + expr + ")"
}

// Write renders desc and writes it to the output path, returning that path.
// Nothing is written if rendering fails.
func Write(desc *introspect.Descriptor, opts Options) (string, error) {
	src, err := Render(desc, opts)
	if err != nil {
		return "", err
	}

	path := opts.Output
	if path == "" {
		path = OutputFile(desc.Name)
	}
	if !filepath.IsAbs(path) && opts.Dir != "" {
		path = filepath.Join(opts.Dir, path)
	}

	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
