package emitter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const generatedHeader = "// Code generated by sobind. DO NOT EDIT."

// bodyImports are imported when the rendered body contains use.
var bodyImports = []struct{ path, use string }{
	{"fmt", "fmt.Errorf("},
	{"slices", "slices.Concat("},
	{"unsafe", "unsafe.Pointer"},
}

// Render writes the Go source of b.
func (b *Binding) Render() *CodeBuilder {
	var body CodeBuilder
	body.Linef("// LibraryPath is the shared library the functions are loaded from.")
	body.Linef("const LibraryPath = %v", strconv.Quote(b.LibraryPath))
	body.Linef("")

	renderConsts(&body, "", b.Constants)
	var group []Const
	for i, c := range b.Enums {
		group = append(group, c)
		if i == len(b.Enums)-1 || b.Enums[i+1].Comment != c.Comment {
			renderConsts(&body, c.Comment, group)
			group = nil
		}
	}

	b.renderLoad(&body)
	for _, f := range b.Functions {
		b.renderFunc(&body, f)
	}
	for _, s := range b.Structs {
		b.renderStruct(&body, s)
	}
	if strings.Contains(body.String(), "ffiRepeat(") {
		body.Block("func ffiRepeat(t *ffi.Type, n int) []*ffi.Type {", "}", func() {
			body.Linef("ts := make([]*ffi.Type, n)")
			body.Block("for i := range ts {", "}", func() {
				body.Linef("ts[i] = t")
			})
			body.Linef("return ts")
		})
	}

	var cb CodeBuilder
	cb.Linef("%v", generatedHeader)
	cb.Linef("")
	cb.Linef("package %v", b.Package)
	cb.Linef("")
	cb.Block("import (", ")", func() {
		for _, imp := range bodyImports {
			if strings.Contains(body.String(), imp.use) {
				cb.Linef("%v", strconv.Quote(imp.path))
			}
		}
		cb.Linef("")
		cb.Linef("%v", strconv.Quote(ffiModule))
	})
	cb.Linef("")
	cb.Write(body.String())
	return &cb
}

func renderConsts(cb *CodeBuilder, comment string, consts []Const) {
	if len(consts) == 0 {
		return
	}
	if comment != "" {
		cb.Linef("// %v values.", comment)
	}
	cb.Block("const (", ")", func() {
		for _, c := range consts {
			cb.Linef("%v %v = %v", c.Name, c.Type, c.Value)
		}
	})
	cb.Linef("")
}

func (b *Binding) renderLoad(cb *CodeBuilder) {
	cb.Linef("var lib ffi.Lib")
	cb.Linef("")
	if len(b.Functions) > 0 {
		cb.Block("var (", ")", func() {
			for _, f := range b.Functions {
				cb.Linef("%v ffi.Fun", f.Var)
			}
		})
		cb.Linef("")
	}

	cb.Linef("// Load opens LibraryPath and prepares all functions of the package.")
	cb.Linef("// It must be called before any of them.")
	cb.Block("func Load() error {", "}", func() {
		cb.Linef("var err error")
		cb.Block("if lib, err = ffi.Load(LibraryPath); err != nil {", "}", func() {
			cb.Linef(`return fmt.Errorf("load %%v: %%w", LibraryPath, err)`)
		})
		for _, f := range b.Functions {
			args := []string{strconv.Quote(f.Symbol), b.ffiType(f.Result)}
			for _, p := range f.Params {
				args = append(args, b.ffiType(p.Type))
			}
			cb.Block(fmt.Sprintf("if %v, err = lib.Prep(%v); err != nil {", f.Var, strings.Join(args, ", ")), "}", func() {
				cb.Linef(`return fmt.Errorf("%%v: %%w", %v, err)`, strconv.Quote(f.Symbol))
			})
		}
		cb.Linef("return nil")
	})
	cb.Linef("")
}

// ffiType returns the descriptor expression of t.
func (b *Binding) ffiType(t Type) string {
	if t.Struct != "" {
		s, _ := b.StructByCName(t.Struct)
		return "&" + s.FFIVar
	}
	return t.FFI
}

func (b *Binding) renderFunc(cb *CodeBuilder, f Func) {
	params := make([]string, len(f.Params))
	args := []string{"nil"}
	if !f.Result.IsVoid() {
		args[0] = "unsafe.Pointer(&ret)"
	}
	for i, p := range f.Params {
		params[i] = p.Name + " " + p.Type.Go
		args = append(args, "unsafe.Pointer(&"+p.Name+")")
	}

	cb.Linef("// %v calls %v (cdecl).", f.Name, f.Symbol)
	result := ""
	if !f.Result.IsVoid() {
		result = " " + f.Result.Go
	}
	cb.Block(fmt.Sprintf("func %v(%v)%v {", f.Name, strings.Join(params, ", "), result), "}", func() {
		call := fmt.Sprintf("%v.Call(%v)", f.Var, strings.Join(args, ", "))
		switch {
		case f.Result.IsVoid():
			cb.Linef("%v", call)
		case f.Result.Narrow:
			cb.Linef("var ret ffi.Arg")
			cb.Linef("%v", call)
			if f.Result.Go == "bool" {
				cb.Linef("return ret != 0")
			} else {
				cb.Linef("return %v(ret)", f.Result.Go)
			}
		default:
			cb.Linef("var ret %v", f.Result.Go)
			cb.Linef("%v", call)
			cb.Linef("return ret")
		}
	})
	cb.Linef("")
}

func (b *Binding) renderStruct(cb *CodeBuilder, s Struct) {
	cb.Linef("// %v is struct %v.", s.Name, s.CName)
	cb.Block(fmt.Sprintf("type %v struct {", s.Name), "}", func() {
		for _, f := range s.Fields {
			var dims strings.Builder
			for _, d := range f.Dims {
				fmt.Fprintf(&dims, "[%v]", d)
			}
			cb.Linef("%v %v%v", f.Name, dims.String(), f.Type.Go)
		}
	})
	cb.Linef("")

	if s.FFIVar == "" {
		return
	}
	// libffi has no array type; an array is laid out like that many
	// consecutive elements.
	var groups, scalars []string
	hasArrays := false
	for _, f := range s.Fields {
		elem := b.ffiType(f.Type)
		if len(f.Dims) == 0 {
			scalars = append(scalars, elem)
			continue
		}
		hasArrays = true
		if len(scalars) > 0 {
			groups = append(groups, "[]*ffi.Type{"+strings.Join(scalars, ", ")+"}")
			scalars = nil
		}
		groups = append(groups, fmt.Sprintf("ffiRepeat(%v, %v)", elem, arrayLen(f.Dims)))
	}
	if !hasArrays {
		cb.Linef("var %v = ffi.NewType(%v)", s.FFIVar, strings.Join(scalars, ", "))
		cb.Linef("")
		return
	}
	if len(scalars) > 0 {
		groups = append(groups, "[]*ffi.Type{"+strings.Join(scalars, ", ")+"}")
	}
	cb.Block(fmt.Sprintf("var %v = ffi.NewType(slices.Concat(", s.FFIVar), ")...)", func() {
		for _, g := range groups {
			cb.Linef("%v,", g)
		}
	})
	cb.Linef("")
}

// arrayLen is the element count of an array as an int expression.
// Literal dimensions are multiplied out.
func arrayLen(dims []string) string {
	n := int64(1)
	for _, d := range dims {
		v, err := strconv.ParseInt(d, 0, 64)
		if err != nil {
			return "int(" + strings.Join(dims, "*") + ")"
		}
		n *= v
	}
	return strconv.FormatInt(n, 10)
}

// WriteFile renders b to <dir>/<package>/<package>.go and returns the path.
// See [CodeBuilder.SaveToFile] for fmtErr and err.
func (b *Binding) WriteFile(dir string, format bool) (path string, fmtErr error, err error) {
	pkgDir := filepath.Join(dir, b.Package)
	if err := os.MkdirAll(pkgDir, 0777); err != nil {
		return "", nil, err
	}
	path = filepath.Join(pkgDir, b.Package+".go")
	cb := b.Render()
	if !format {
		return path, nil, os.WriteFile(path, []byte(cb.String()), 0666)
	}
	fmtErr, err = cb.SaveToFile(path)
	return path, fmtErr, err
}
