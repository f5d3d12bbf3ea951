package generate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BindingName is the package-level variable holding typeName's bundle.
func BindingName(typeName string) string {
	return lowerCamel(typeName) + "Bundle"
}

// AccessorNames returns the load and must accessor names for typeName.
// Unexported types get unexported accessors.
func AccessorNames(typeName string) (load, must string) {
	base := upperFirst(typeName)
	r, _ := utf8.DecodeRuneInString(typeName)
	if unicode.IsUpper(r) {
		return "Load" + base, "Must" + base
	}
	return "load" + base, "must" + base
}

// OutputFile is the default file name for typeName's generated code.
func OutputFile(typeName string) string {
	return strings.ToLower(typeName) + "_globalsecret.go"
}

// lowerCamel lowercases the leading run of upper-case letters, keeping the
// last one when it starts the next word: HTTPSecrets -> httpSecrets.
func lowerCamel(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
