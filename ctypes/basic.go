// Package ctypes maps C type spellings to Go types.
//
// Type strings throughout the generator are a base name followed by one
// '*' per level of indirection, e.g. "unsigned char**". The base name is
// either a C spelling (before resolution) or a Go type (after).
package ctypes

// Go types produced by the basic table. Void has no Go equivalent and only
// appears as a function result or behind a pointer.
const (
	Void    = "void"
	Bool    = "bool"
	Int8    = "int8"
	Uint8   = "uint8"
	Int16   = "int16"
	Uint16  = "uint16"
	Int32   = "int32"
	Uint32  = "uint32"
	Int64   = "int64"
	Uint64  = "uint64"
	Uintptr = "uintptr"
	Float32 = "float32"
	Float64 = "float64"
	String  = "string"
	Rune    = "rune"
)

// basic is the table of C primitive spellings (after [Normalize]) for an
// LP64 target. It is never written to.
var basic = map[string]string{
	"void":  Void,
	"_Bool": Bool,
	"bool":  Bool,

	"char":          Int8,
	"signed char":   Int8,
	"unsigned char": Uint8,

	"short":              Int16,
	"short int":          Int16,
	"unsigned short":     Uint16,
	"unsigned short int": Uint16,
	"short unsigned":     Uint16,
	"short unsigned int": Uint16,

	"int":          Int32,
	"unsigned":     Uint32,
	"unsigned int": Uint32,

	"long":              Int64,
	"long int":          Int64,
	"unsigned long":     Uint64,
	"unsigned long int": Uint64,
	"long unsigned":     Uint64,
	"long unsigned int": Uint64,

	"long long":              Int64,
	"long long int":          Int64,
	"unsigned long long":     Uint64,
	"unsigned long long int": Uint64,
	"long long unsigned":     Uint64,
	"long long unsigned int": Uint64,

	"float":  Float32,
	"double": Float64,

	"int8_t":    Int8,
	"uint8_t":   Uint8,
	"int16_t":   Int16,
	"uint16_t":  Uint16,
	"int32_t":   Int32,
	"uint32_t":  Uint32,
	"int64_t":   Int64,
	"uint64_t":  Uint64,
	"size_t":    Uint64,
	"ssize_t":   Int64,
	"ptrdiff_t": Int64,
	"intptr_t":  Int64,
	"uintptr_t": Uintptr,
	"off_t":     Int64,
	"wchar_t":   Int32,
	"char16_t":  Uint16,
	"char32_t":  Uint32,
}

// goTypes is the set of values of basic.
var goTypes = func() map[string]struct{} {
	m := make(map[string]struct{}, 16)
	for _, v := range basic {
		m[v] = struct{}{}
	}
	return m
}()

// Basic looks up a normalized C primitive spelling.
func Basic(name string) (string, bool) {
	t, ok := basic[name]
	return t, ok
}

// IsGoType reports whether name is a Go type the basic table produces.
func IsGoType(name string) bool {
	_, ok := goTypes[name]
	return ok
}

// Size returns the size in bytes of a Go type produced by the basic table,
// or 0 for void and unknown names.
func Size(goType string) int {
	switch goType {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32, Rune:
		return 4
	case Int64, Uint64, Uintptr, Float64:
		return 8
	default:
		return 0
	}
}
