package emitter

import (
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
)

// reserved names are declared by every generated package, or are the
// names of its imports.
var reserved = []string{"LibraryPath", "Load", "lib", "ffiRepeat", "ffi", "fmt", "slices", "unsafe"}

// predeclared identifiers may not be shadowed: the generated code refers
// to the types by name, the rest would only confuse readers.
var predeclared = map[string]bool{
	"bool": true, "byte": true, "complex64": true, "complex128": true, "error": true,
	"float32": true, "float64": true, "int": true, "int8": true, "int16": true,
	"int32": true, "int64": true, "rune": true, "string": true, "uint": true,
	"uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"any": true, "comparable": true, "true": true, "false": true, "iota": true,
	"nil": true, "append": true, "cap": true, "clear": true, "close": true,
	"complex": true, "copy": true, "delete": true, "imag": true, "len": true,
	"make": true, "max": true, "min": true, "new": true, "panic": true,
	"print": true, "println": true, "real": true, "recover": true,
}

// PackageName derives the Go package name from a library path:
// "/usr/lib/libfoo.so.1.2" -> "foo".
func PackageName(libPath string) string {
	base := filepath.Base(libPath)
	base = strings.TrimPrefix(base, "lib")
	if i := strings.IndexByte(base, '.'); i != -1 {
		base = base[:i]
	}
	var b strings.Builder
	for _, c := range strings.ToLower(base) {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	name := b.String()
	if name == "" || name[0] >= '0' && name[0] <= '9' || token.IsKeyword(name) {
		name = "lib" + name
	}
	return name
}

func isIdentifier(s string) bool {
	return s != "_" && token.IsIdentifier(s) && !predeclared[s]
}

// GoName returns the exported Go spelling of a C identifier.
func GoName(cName string) string {
	return strcase.ToCamel(cName)
}

// namespace hands out unique identifiers within one Go scope.
type namespace struct {
	owners map[string]string
}

func newNamespace(reserved ...string) *namespace {
	ns := &namespace{owners: map[string]string{}}
	for _, name := range reserved {
		ns.owners[name] = "(reserved)"
	}
	return ns
}

// claim takes name for owner as is. It fails if name is no usable
// identifier or already taken, returning the current owner in the latter
// case.
func (ns *namespace) claim(name, owner string) (prevOwner string, ok bool) {
	if !isIdentifier(name) {
		return "", false
	}
	if prev, ok := ns.owners[name]; ok {
		return prev, false
	}
	ns.owners[name] = owner
	return "", true
}

// unique takes name, or the first free "name_N", for owner. renamed is set
// if name itself could not be used.
func (ns *namespace) unique(name, owner string) (res string, renamed bool) {
	if !isIdentifier(name) {
		name += "_"
		renamed = true
	}
	if _, ok := ns.claim(name, owner); ok {
		return name, renamed
	}
	for i := 2; ; i++ {
		cand := fmt.Sprintf("%v_%v", name, i)
		if _, ok := ns.claim(cand, owner); ok {
			return cand, true
		}
	}
}

func (ns *namespace) taken(name string) bool {
	_, ok := ns.owners[name]
	return ok
}
