// Package emitter turns extracted C declarations into a Go binding package
// that calls the shared library through libffi
// (github.com/jupiterrider/ffi).
//
// [Build] resolves and names everything, dropping what cannot be bound and
// reporting why; [Binding.Render] writes the Go source.
package emitter

import (
	"errors"
	"fmt"
	"go/parser"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/refaktor/sobind/ctypes"
	"github.com/refaktor/sobind/decl"
	"github.com/refaktor/sobind/digraphutils"
	"github.com/refaktor/sobind/macro"
	"github.com/refaktor/sobind/report"
	"github.com/refaktor/sobind/symtab"
)

// Input is everything a binding is built from.
type Input struct {
	LibraryPath string
	// Package overrides the package name derived from LibraryPath.
	Package string
	// Symbols are the exported function symbols in table order.
	Symbols   []symtab.Entry
	Constants []macro.Constant
	Decls     *decl.Declarations
	// Names overrides wrapper names by symbol; Excluded symbols are not
	// bound.
	Names    map[string]string
	Excluded map[string]bool
}

type Const struct {
	Name  string
	Type  string
	Value string
	// Comment names the enum the constant belongs to, if any.
	Comment string
}

type Param struct {
	Name string
	Type Type
}

type Func struct {
	// Symbol is the exact exported symbol name.
	Symbol string
	// Name is the wrapper function, Var the ffi.Fun it calls.
	Name   string
	Var    string
	Params []Param
	Result Type
	Source string
}

type Field struct {
	Name  string
	CName string
	Type  Type
	// Dims are the array dimensions, outermost first.
	Dims []string
}

type Struct struct {
	CName  string
	Name   string
	Fields []Field
	// FFIVar is the libffi type descriptor, only set for structs passed
	// by value.
	FFIVar string
}

// Binding is the fully resolved content of a generated package.
type Binding struct {
	Package     string
	LibraryPath string
	Constants   []Const
	Enums       []Const
	Functions   []Func
	Structs     []Struct
}

// StructByCName returns the struct bound for a C struct name.
func (b *Binding) StructByCName(cName string) (Struct, bool) {
	for _, s := range b.Structs {
		if s.CName == cName {
			return s, true
		}
	}
	return Struct{}, false
}

func (b *Binding) Function(symbol string) (Func, bool) {
	for _, f := range b.Functions {
		if f.Symbol == symbol {
			return f, true
		}
	}
	return Func{}, false
}

type builder struct {
	in     Input
	report *report.Report
	ns     *namespace
	types  *typeMapper
	// consts maps constant names to their Go types.
	consts map[string]string
	// opaque holds reported opaque type names.
	opaque map[string]bool
	b      *Binding
}

// Build binds in. Everything left out is reported to r.
func Build(in Input, r *report.Report) *Binding {
	if r == nil {
		r = &report.Report{}
	}
	if in.Decls == nil {
		in.Decls = decl.NewDeclarations()
	}
	pkg := in.Package
	if pkg == "" {
		pkg = PackageName(in.LibraryPath)
	}
	bd := &builder{
		in:     in,
		report: r,
		ns:     newNamespace(reserved...),
		types:  &typeMapper{typedefs: in.Decls.Typedefs, structs: map[string]string{}},
		consts: map[string]string{},
		opaque: map[string]bool{},
		b:      &Binding{Package: pkg, LibraryPath: in.LibraryPath},
	}
	bd.buildConstants()
	bd.buildEnums()
	bd.buildStructs()
	bd.buildFunctions()
	bd.buildFFITypes()
	return bd.b
}

func (bd *builder) buildConstants() {
	for _, c := range bd.in.Constants {
		if c.Compound {
			if missing := bd.missingConsts(c.Value); len(missing) > 0 {
				bd.report.Addf(report.NameCollision, c.Name, c.Source,
					"references dropped %v", strings.Join(missing, ", "))
				continue
			}
		}
		if !bd.claimConst(c.Name, c.Source) {
			continue
		}
		bd.consts[c.Name] = c.Type
		bd.b.Constants = append(bd.b.Constants, Const{Name: c.Name, Type: c.Type, Value: c.Value})
	}
}

// claimConst takes a constant name as is; constants are referenced by
// their C names, so they cannot be renamed.
func (bd *builder) claimConst(name, source string) bool {
	if owner, ok := bd.ns.claim(name, "constant "+name); !ok {
		if owner == "" {
			bd.report.Addf(report.NameCollision, name, source, "not usable as a Go identifier, dropped")
		} else {
			bd.report.Addf(report.NameCollision, name, source, "clashes with %v, dropped", owner)
		}
		return false
	}
	return true
}

func (bd *builder) missingConsts(expr string) []string {
	var missing []string
	for _, id := range macro.Identifiers(expr) {
		if _, ok := bd.consts[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// buildEnums binds enumerators as int32 constants. Implicit values count
// up from the previous enumerator.
func (bd *builder) buildEnums() {
	for _, e := range bd.in.Decls.Enums {
		prev := ""
		for i, v := range e.Values {
			value, err := bd.enumValue(v, prev, i)
			prev = ""
			if err != nil {
				bd.report.Addf(report.Incomplete, v.Name, e.Source, "%v", err)
				continue
			}
			if !bd.claimConst(v.Name, e.Source) {
				continue
			}
			prev = v.Name
			bd.consts[v.Name] = ctypes.Int32
			bd.b.Enums = append(bd.b.Enums, Const{Name: v.Name, Type: ctypes.Int32, Value: value, Comment: e.Name})
		}
	}
}

func (bd *builder) enumValue(v decl.Enumerator, prev string, idx int) (string, error) {
	if v.Value == "" {
		switch {
		case idx == 0:
			return "0", nil
		case prev == "":
			return "", errors.New("follows a dropped enumerator")
		default:
			return prev + " + 1", nil
		}
	}
	if typ, lit, ok := macro.Infer(v.Value); ok && isIntType(typ) {
		return lit, nil
	}
	if _, err := parser.ParseExpr(v.Value); err != nil {
		return "", fmt.Errorf("unable to parse value %q", v.Value)
	}
	if missing := bd.missingConsts(v.Value); len(missing) > 0 {
		return "", fmt.Errorf("value references unknown %v", strings.Join(missing, ", "))
	}
	for _, id := range macro.Identifiers(v.Value) {
		if bd.consts[id] != ctypes.Int32 {
			return "int32(" + v.Value + ")", nil
		}
	}
	return v.Value, nil
}

// buildStructs binds all structs whose members can be bound. A struct
// embedding a dropped struct by value is dropped too.
func (bd *builder) buildStructs() {
	structs := bd.in.Decls.Structs
	intConsts := map[string]bool{}
	for name, typ := range bd.consts {
		intConsts[name] = isIntType(typ)
	}

	// Assume every struct is bindable, then drop until nothing changes.
	for pair := structs.Oldest(); pair != nil; pair = pair.Next() {
		bd.types.structs[pair.Key] = pair.Key
	}
	for changed := true; changed; {
		changed = false
		for pair := structs.Oldest(); pair != nil; pair = pair.Next() {
			if _, ok := bd.types.structs[pair.Key]; !ok {
				continue
			}
			if _, err := bd.fields(pair.Value, intConsts); err != nil {
				delete(bd.types.structs, pair.Key)
				bd.report.Addf(report.Incomplete, pair.Key, pair.Value.Source, "%v", err)
				changed = true
			}
		}
	}

	for pair := structs.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := bd.types.structs[pair.Key]; !ok {
			continue
		}
		name, renamed := bd.ns.unique(GoName(pair.Key), "struct "+pair.Key)
		if renamed {
			bd.report.Addf(report.NameCollision, pair.Key, pair.Value.Source, "struct bound as %v", name)
		}
		bd.types.structs[pair.Key] = name
	}

	for pair := structs.Oldest(); pair != nil; pair = pair.Next() {
		name, ok := bd.types.structs[pair.Key]
		if !ok {
			continue
		}
		fields, err := bd.fields(pair.Value, intConsts)
		if err != nil {
			panic(fmt.Sprintf("struct %v became unbindable after naming: %v", pair.Key, err))
		}
		for _, f := range fields {
			bd.noteOpaque(f.Type, "struct "+pair.Key)
		}
		bd.b.Structs = append(bd.b.Structs, Struct{CName: pair.Key, Name: name, Fields: fields})
	}
}

func (bd *builder) fields(s decl.Struct, intConsts map[string]bool) ([]Field, error) {
	ns := newNamespace()
	var fields []Field
	for i, m := range s.Members {
		t, err := bd.types.mapValue(m.Type)
		if err != nil {
			return nil, fmt.Errorf("member %v: %w", m.Name, err)
		}
		dims, err := arrayDims(m.Array, intConsts)
		if err != nil {
			return nil, fmt.Errorf("member %v: %w", m.Name, err)
		}
		name := GoName(m.Name)
		if name == "" {
			name = fmt.Sprintf("Field%v", i)
		}
		name, _ = ns.unique(name, m.Name)
		fields = append(fields, Field{Name: name, CName: m.Name, Type: t, Dims: dims})
	}
	return fields, nil
}

// buildFunctions binds every exported symbol that has a declaration, in
// symbol table order.
func (bd *builder) buildFunctions() {
	funcs := bd.in.Decls.Functions
	exported := map[string]bool{}
	for _, sym := range bd.in.Symbols {
		if exported[sym.Name] {
			continue
		}
		exported[sym.Name] = true
		fn, ok := funcs.Get(sym.Name)
		if !ok || bd.in.Excluded[sym.Name] {
			continue
		}
		if f, ok := bd.function(fn); ok {
			bd.b.Functions = append(bd.b.Functions, f)
		}
	}

	for pair := funcs.Oldest(); pair != nil; pair = pair.Next() {
		if !exported[pair.Key] {
			bd.report.Addf(report.NotExported, pair.Key, pair.Value.Source, "declared but not exported by the library")
		}
	}
}

func (bd *builder) function(fn decl.Function) (Func, bool) {
	if fn.Variadic {
		bd.report.Addf(report.Incomplete, fn.Name, fn.Source, "variadic functions are not supported")
		return Func{}, false
	}
	result, err := bd.types.mapType(fn.ReturnType)
	if err != nil {
		bd.report.Addf(report.Incomplete, fn.Name, fn.Source, "result: %v", err)
		return Func{}, false
	}
	paramTypes := make([]Type, len(fn.Params))
	for i, p := range fn.Params {
		t, err := bd.types.mapValue(p.Type)
		if err != nil {
			bd.report.Addf(report.Incomplete, fn.Name, fn.Source, "parameter %v: %v", i+1, err)
			return Func{}, false
		}
		paramTypes[i] = t
	}

	f := Func{Symbol: fn.Name, Result: result, Source: fn.Source}
	name, ok := bd.in.Names[fn.Name]
	if !ok {
		name = GoName(fn.Name)
	}
	var renamed bool
	if f.Name, renamed = bd.ns.unique(name, "function "+fn.Name); renamed {
		bd.report.Addf(report.NameCollision, fn.Name, fn.Source, "function bound as %v", f.Name)
	}
	f.Var, _ = bd.ns.unique(strcase.ToLowerCamel(fn.Name)+"Func", "function "+fn.Name)

	// "ret" holds the result; package level names used in the body must
	// not be shadowed.
	locals := newNamespace("ret")
	for i, p := range fn.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("arg%v", i)
		}
		shadows := bd.ns.taken(name)
		if shadows {
			name += "_"
		}
		name, renamed := locals.unique(name, p.Name)
		if (shadows || renamed) && p.Name != "" {
			bd.report.Addf(report.NameCollision, fn.Name, fn.Source, "parameter %v bound as %v", p.Name, name)
		}
		f.Params = append(f.Params, Param{Name: name, Type: paramTypes[i]})
		bd.noteOpaque(paramTypes[i], "function "+fn.Name)
	}
	bd.noteOpaque(result, "function "+fn.Name)
	return f, true
}

// noteOpaque reports the first use of each opaque type.
func (bd *builder) noteOpaque(t Type, user string) {
	if t.Opaque == "" || bd.opaque[t.Opaque] {
		return
	}
	bd.opaque[t.Opaque] = true
	bd.report.Addf(report.OpaquePointer, t.Opaque, "", "bound as unsafe.Pointer, first used by %v", user)
}

// buildFFITypes gives libffi descriptors to the structs that functions
// pass by value, directly or nested.
func (bd *builder) buildFFITypes() {
	var roots []string
	for _, f := range bd.b.Functions {
		if f.Result.Struct != "" {
			roots = append(roots, f.Result.Struct)
		}
		for _, p := range f.Params {
			if p.Type.Struct != "" {
				roots = append(roots, p.Type.Struct)
			}
		}
	}
	byValue := digraphutils.Reachable(roots, func(cName string) []string {
		s, _ := bd.b.StructByCName(cName)
		var res []string
		for _, f := range s.Fields {
			if f.Type.Struct != "" {
				res = append(res, f.Type.Struct)
			}
		}
		return res
	})
	for i, s := range bd.b.Structs {
		if _, ok := byValue[s.CName]; ok {
			bd.b.Structs[i].FFIVar, _ = bd.ns.unique("ffiType"+s.Name, "descriptor of struct "+s.CName)
		}
	}
}
