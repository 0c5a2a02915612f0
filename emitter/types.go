package emitter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/refaktor/sobind/ctypes"
	"github.com/refaktor/sobind/macro"
)

// Type is a resolved C type as bound in Go.
type Type struct {
	// Go is the Go type expression, empty for void.
	Go string
	// FFI is the libffi descriptor expression. Empty for structs passed
	// by value, whose descriptor variable is only known after all
	// functions are bound.
	FFI string
	// Struct is the C name of a struct passed by value.
	Struct string
	// Narrow is set for results that libffi widens to a full register
	// (integers below 64 bits and bool).
	Narrow bool
	// Opaque is the name of an unknown type bound as unsafe.Pointer.
	Opaque string
}

func (t Type) IsVoid() bool {
	return t.Go == ""
}

var ffiTypes = map[string]string{
	ctypes.Void:    "&ffi.TypeVoid",
	ctypes.Bool:    "&ffi.TypeUint8",
	ctypes.Int8:    "&ffi.TypeSint8",
	ctypes.Uint8:   "&ffi.TypeUint8",
	ctypes.Int16:   "&ffi.TypeSint16",
	ctypes.Uint16:  "&ffi.TypeUint16",
	ctypes.Int32:   "&ffi.TypeSint32",
	ctypes.Uint32:  "&ffi.TypeUint32",
	ctypes.Int64:   "&ffi.TypeSint64",
	ctypes.Uint64:  "&ffi.TypeUint64",
	ctypes.Uintptr: "&ffi.TypeUint64",
	ctypes.Float32: "&ffi.TypeFloat",
	ctypes.Float64: "&ffi.TypeDouble",
}

const ffiPointer = "&ffi.TypePointer"

var errVoidValue = errors.New("void used as a value")

// OpaqueValueError is returned for unknown types used by value.
type OpaqueValueError struct {
	Name string
}

func (e *OpaqueValueError) Error() string {
	return fmt.Sprintf("opaque type %v used by value", e.Name)
}

// typeMapper maps C type strings using the typedefs and the structs that
// survived so far.
type typeMapper struct {
	typedefs ctypes.Typedefs
	// structs maps the C names of bindable structs to their Go names.
	structs map[string]string
}

func (m *typeMapper) mapType(raw string) (Type, error) {
	resolved, err := ctypes.Resolve(raw, m.typedefs)
	if err != nil {
		return Type{}, err
	}
	base, stars := ctypes.SplitPointer(resolved)

	if stars == 0 {
		switch {
		case base == ctypes.Void:
			return Type{FFI: ffiTypes[ctypes.Void]}, nil
		case ctypes.IsGoType(base):
			return Type{
				Go:     base,
				FFI:    ffiTypes[base],
				Narrow: base == ctypes.Bool || ctypes.Size(base) < 8 && base != ctypes.Float32,
			}, nil
		}
		if name, ok := m.structs[base]; ok {
			return Type{Go: name, Struct: base}, nil
		}
		return Type{}, &OpaqueValueError{Name: base}
	}

	t := Type{FFI: ffiPointer}
	switch {
	case base == ctypes.Void:
		t.Go = strings.Repeat("*", stars-1) + "unsafe.Pointer"
	case ctypes.IsGoType(base):
		t.Go = strings.Repeat("*", stars) + base
	default:
		if name, ok := m.structs[base]; ok {
			t.Go = strings.Repeat("*", stars) + name
		} else {
			t.Go = strings.Repeat("*", stars-1) + "unsafe.Pointer"
			t.Opaque = base
		}
	}
	return t, nil
}

// mapValue maps a type that is stored by value, i.e. not a result.
func (m *typeMapper) mapValue(raw string) (Type, error) {
	t, err := m.mapType(raw)
	if err == nil && t.IsVoid() {
		return Type{}, errVoidValue
	}
	return t, err
}

var arrayDimRe = regexp.MustCompile(`\[([^\]]*)\]`)

// arrayDims parses an array suffix like "[4][N]". Every dimension must be
// an integer literal or the name of an integer constant.
func arrayDims(suffix string, intConsts map[string]bool) ([]string, error) {
	var dims []string
	for _, m := range arrayDimRe.FindAllStringSubmatch(suffix, -1) {
		d := strings.TrimSpace(m[1])
		if typ, lit, ok := macro.Infer(d); ok && isIntType(typ) && !strings.HasPrefix(lit, "-") {
			dims = append(dims, lit)
			continue
		}
		if intConsts[d] {
			dims = append(dims, d)
			continue
		}
		return nil, fmt.Errorf("unsupported array size %q", m[1])
	}
	return dims, nil
}

func isIntType(goType string) bool {
	switch goType {
	case ctypes.Int8, ctypes.Uint8, ctypes.Int16, ctypes.Uint16, ctypes.Int32,
		ctypes.Uint32, ctypes.Int64, ctypes.Uint64, ctypes.Uintptr:
		return true
	}
	return false
}
