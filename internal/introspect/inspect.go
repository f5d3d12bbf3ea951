// Package introspect reads secret bundle struct declarations from Go source.
package introspect

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Options selects the struct to inspect.
type Options struct {
	// Dir is the package directory. Defaults to ".".
	Dir string
	// Files restricts parsing to these file names within Dir.
	Files []string
	// TypeName is the struct type identifier.
	TypeName string
	// SecretName overrides the remote lookup key. Defaults to TypeName.
	SecretName string
	// Strict is copied to the descriptor.
	Strict bool
}

// Inspect parses the package in opts.Dir and describes opts.TypeName.
// Test files and generated files are skipped.
func Inspect(opts Options) (*Descriptor, error) {
	if opts.TypeName == "" {
		return nil, fmt.Errorf("no type name given")
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}

	files, err := sourceFiles(opts)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	var (
		file   *ast.File
		target *ast.TypeSpec
		clash  *ast.TypeSpec
	)
	for _, path := range files {
		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if ast.IsGenerated(f) {
			continue
		}

		for _, ts := range typeSpecs(f) {
			switch {
			case ts.Name.Name == opts.TypeName:
				if target == nil {
					file, target = f, ts
				}
			case clash == nil && strings.EqualFold(ts.Name.Name, opts.TypeName):
				clash = ts
			}
		}
	}

	if target == nil {
		return nil, &DeclarationError{
			Type:   opts.TypeName,
			Reason: fmt.Sprintf("type not found in %s", opts.Dir),
		}
	}
	// Bundle variable and output file names fold case, so FooBar and
	// fooBar would overwrite each other.
	if clash != nil {
		return nil, &DeclarationError{
			Type: opts.TypeName,
			Pos:  fset.Position(target.Pos()),
			Reason: fmt.Sprintf("type name differs only in case from %s (%s), so both would generate the same bundle variable and output file",
				clash.Name.Name, fset.Position(clash.Pos())),
		}
	}
	return describe(fset, file, target, opts)
}

func sourceFiles(opts Options) ([]string, error) {
	if len(opts.Files) > 0 {
		paths := make([]string, 0, len(opts.Files))
		for _, name := range opts.Files {
			if !filepath.IsAbs(name) {
				name = filepath.Join(opts.Dir, name)
			}
			paths = append(paths, name)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		paths = append(paths, filepath.Join(opts.Dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

func typeSpecs(f *ast.File) []*ast.TypeSpec {
	var specs []*ast.TypeSpec
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				specs = append(specs, ts)
			}
		}
	}
	return specs
}

func describe(fset *token.FileSet, f *ast.File, spec *ast.TypeSpec, opts Options) (*Descriptor, error) {
	declErr := func(pos token.Pos, field, reason string) error {
		return &DeclarationError{Type: spec.Name.Name, Field: field, Pos: fset.Position(pos), Reason: reason}
	}

	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		return nil, declErr(spec.Pos(), "", "generic types are not supported")
	}
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return nil, declErr(spec.Pos(), "", "not a struct type")
	}

	d := &Descriptor{
		Name:       spec.Name.Name,
		Package:    f.Name.Name,
		SecretName: opts.SecretName,
		Exported:   ast.IsExported(spec.Name.Name),
		Strict:     opts.Strict,
	}
	if d.SecretName == "" {
		d.SecretName = d.Name
	}

	imports := fileImports(f)
	names := make(map[string]bool)
	keys := make(map[string]string)

	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			return nil, declErr(field.Pos(), "", "embedded fields are not supported")
		}

		key, skip, err := tagKey(field.Tag)
		if err != nil {
			return nil, declErr(field.Pos(), field.Names[0].Name, err.Error())
		}
		if skip {
			continue
		}

		ft, goType, ok := resolveType(field.Type, imports)

		for _, ident := range field.Names {
			if ident.Name == "_" {
				return nil, declErr(ident.Pos(), "", "blank fields are not supported")
			}
			if !ok {
				return nil, declErr(ident.Pos(), ident.Name, fmt.Sprintf("unsupported field type %s", exprString(field.Type)))
			}
			if names[ident.Name] {
				return nil, declErr(ident.Pos(), ident.Name, "duplicate field name")
			}
			names[ident.Name] = true

			k := key
			if k == "" {
				k = ident.Name
			} else if len(field.Names) > 1 {
				return nil, declErr(ident.Pos(), ident.Name, "a key tag cannot be shared by several fields")
			}
			if other, dup := keys[k]; dup {
				return nil, declErr(ident.Pos(), ident.Name, fmt.Sprintf("key %q is already used by field %s", k, other))
			}
			keys[k] = ident.Name

			d.Fields = append(d.Fields, Field{
				Name:   ident.Name,
				Key:    k,
				GoType: goType,
				Kind:   ft.kind,
				Bits:   ft.bits,
			})
		}
	}

	if len(d.Fields) == 0 {
		return nil, declErr(spec.Pos(), "", "struct has no fields")
	}
	return d, nil
}

// tagKey returns the payload key selected by a field's tag: the secret tag,
// else the name part of the json tag. skip is true for secret:"-" and
// json:"-". As in encoding/json, json:"-," names the key "-".
func tagKey(lit *ast.BasicLit) (key string, skip bool, err error) {
	if lit == nil {
		return "", false, nil
	}
	raw, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false, fmt.Errorf("malformed struct tag: %w", err)
	}
	tag := reflect.StructTag(raw)

	if v, ok := tag.Lookup("secret"); ok {
		name, _, _ := strings.Cut(v, ",")
		if name == "-" {
			return "", true, nil
		}
		if name == "" {
			return "", false, fmt.Errorf("empty secret tag")
		}
		return name, false, nil
	}
	if v, ok := tag.Lookup("json"); ok {
		if v == "-" {
			return "", true, nil
		}
		name, _, _ := strings.Cut(v, ",")
		return name, false, nil
	}
	return "", false, nil
}

func exprString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + exprString(t.Elt)
		}
		return "[...]" + exprString(t.Elt)
	case *ast.MapType:
		return "map[" + exprString(t.Key) + "]" + exprString(t.Value)
	default:
		return fmt.Sprintf("%T", expr)
	}
}
