package introspect

import (
	"go/ast"
	"strconv"
	"strings"

	"github.com/systmms/globalsecrets/pkg/globalsecret"
)

const runtimeImportPath = "github.com/systmms/globalsecrets/pkg/globalsecret"

type fieldType struct {
	kind globalsecret.Kind
	bits int
}

var basicTypes = map[string]fieldType{
	"string":  {kind: globalsecret.KindString},
	"bool":    {kind: globalsecret.KindBool},
	"int":     {kind: globalsecret.KindInt},
	"int8":    {kind: globalsecret.KindInt, bits: 8},
	"int16":   {kind: globalsecret.KindInt, bits: 16},
	"int32":   {kind: globalsecret.KindInt, bits: 32},
	"int64":   {kind: globalsecret.KindInt, bits: 64},
	"uint":    {kind: globalsecret.KindUint},
	"uint8":   {kind: globalsecret.KindUint, bits: 8},
	"uint16":  {kind: globalsecret.KindUint, bits: 16},
	"uint32":  {kind: globalsecret.KindUint, bits: 32},
	"uint64":  {kind: globalsecret.KindUint, bits: 64},
	"float32": {kind: globalsecret.KindFloat, bits: 32},
	"float64": {kind: globalsecret.KindFloat, bits: 64},
}

// resolveType maps a field's type expression to a kind. imports maps the
// local package names of the declaring file to import paths. The returned
// string is the type as written in the generated file.
func resolveType(expr ast.Expr, imports map[string]string) (fieldType, string, bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		switch t.Name {
		case "byte":
			return fieldType{kind: globalsecret.KindUint, bits: 8}, "byte", true
		case "rune":
			return fieldType{kind: globalsecret.KindInt, bits: 32}, "rune", true
		}
		ft, ok := basicTypes[t.Name]
		return ft, t.Name, ok
	case *ast.ArrayType:
		if t.Len != nil {
			return fieldType{}, "", false
		}
		if elem, ok := t.Elt.(*ast.Ident); ok && (elem.Name == "byte" || elem.Name == "uint8") {
			return fieldType{kind: globalsecret.KindBytes}, "[]" + elem.Name, true
		}
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return fieldType{}, "", false
		}
		switch imports[pkg.Name] {
		case "time":
			if t.Sel.Name == "Duration" {
				return fieldType{kind: globalsecret.KindDuration}, "time.Duration", true
			}
		case runtimeImportPath:
			if t.Sel.Name == "Secret" {
				return fieldType{kind: globalsecret.KindSecret}, "globalsecret.Secret", true
			}
		}
	}
	return fieldType{}, "", false
}

// fileImports returns the local name -> path table of f.
func fileImports(f *ast.File) map[string]string {
	imports := make(map[string]string, len(f.Imports))
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := path
		if i := strings.LastIndex(path, "/"); i >= 0 {
			name = path[i+1:]
		}
		if spec.Name != nil {
			name = spec.Name.Name
		}
		imports[name] = path
	}
	return imports
}
