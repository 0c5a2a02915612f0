package decl

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Param is a function parameter. Name is empty for unnamed parameters.
type Param struct {
	Type string
	Name string
}

type Function struct {
	Name       string
	ReturnType string
	Params     []Param
	Variadic   bool
	Source     string
}

// Member is a struct member. Array holds the C array suffix ("[4]",
// "[2][3]"), if any.
type Member struct {
	Type  string
	Name  string
	Array string
}

type Struct struct {
	Name    string
	Members []Member
	Source  string
}

// FuncPointer is a function pointer declarator `ret (*name[N])(params)`.
// It is bound as an untyped pointer; see [FuncPointer.BindingType].
type FuncPointer struct {
	ReturnType string
	Stars      int
	Name       string
	Array      string
	Params     []Param
	Variadic   bool
}

// BindingType returns the type a binding uses for a value of fp's type:
// void with one star per level of indirection.
func (fp FuncPointer) BindingType() string {
	return "void" + strings.Repeat("*", fp.Stars)
}

type Enumerator struct {
	Name string
	// Value is the explicit value expression, or empty.
	Value string
}

type Enum struct {
	// Name is the typedef or tag name, empty for anonymous enums.
	Name   string
	Values []Enumerator
	Source string
}

// Declarations are the declarations of all scanned headers. Every map
// keeps the first declaration of a name, in scan order.
type Declarations struct {
	Functions    *orderedmap.OrderedMap[string, Function]
	Structs      *orderedmap.OrderedMap[string, Struct]
	Typedefs     *orderedmap.OrderedMap[string, string]
	FuncPointers *orderedmap.OrderedMap[string, FuncPointer]
	Enums        []Enum
}

func NewDeclarations() *Declarations {
	return &Declarations{
		Functions:    orderedmap.New[string, Function](),
		Structs:      orderedmap.New[string, Struct](),
		Typedefs:     orderedmap.New[string, string](),
		FuncPointers: orderedmap.New[string, FuncPointer](),
	}
}
