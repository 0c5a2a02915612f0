// Package report collects the per-item degradations of a generator run.
//
// Nothing in extraction, resolution or emission fails the run; every
// dropped, duplicated or downgraded item lands in one bucket of a [Report].
package report

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/refaktor/sobind/textutils"
)

type Category int

const (
	DuplicateMacro Category = iota
	DuplicateTypedef
	UnparseableMacro
	UnresolvedMacro
	EmptyStruct
	Incomplete
	OpaquePointer
	NotExported
	NameCollision
	SymbolListing
)

var categoryNames = [...]string{
	DuplicateMacro:   "duplicate_macros",
	DuplicateTypedef: "duplicate_typedefs",
	UnparseableMacro: "unparseable_macros",
	UnresolvedMacro:  "unresolved_macros",
	EmptyStruct:      "empty_structs",
	Incomplete:       "incomplete",
	OpaquePointer:    "opaque_pointers",
	NotExported:      "not_exported",
	NameCollision:    "name_collisions",
	SymbolListing:    "symbol_listing",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Categories returns all categories in report order.
func Categories() []Category {
	cs := make([]Category, len(categoryNames))
	for i := range cs {
		cs[i] = Category(i)
	}
	return cs
}

// Diagnostic describes one degraded item.
type Diagnostic struct {
	// Name of the macro, type, function or symbol.
	Name string `yaml:"name"`
	// Detail is a short, single-line explanation.
	Detail string `yaml:"detail,omitempty"`
	// Source is the file the item came from, if known.
	Source string `yaml:"source,omitempty"`
}

func (d Diagnostic) String() string {
	s := d.Name
	if d.Detail != "" {
		s += ": " + d.Detail
	}
	if d.Source != "" {
		s += " (" + d.Source + ")"
	}
	return s
}

// Report has one bucket per [Category]. The zero value is ready to use.
type Report struct {
	DuplicateMacros   []Diagnostic `yaml:"duplicate_macros,omitempty"`
	DuplicateTypedefs []Diagnostic `yaml:"duplicate_typedefs,omitempty"`
	UnparseableMacros []Diagnostic `yaml:"unparseable_macros,omitempty"`
	UnresolvedMacros  []Diagnostic `yaml:"unresolved_macros,omitempty"`
	EmptyStructs      []Diagnostic `yaml:"empty_structs,omitempty"`
	Incomplete        []Diagnostic `yaml:"incomplete,omitempty"`
	OpaquePointers    []Diagnostic `yaml:"opaque_pointers,omitempty"`
	NotExported       []Diagnostic `yaml:"not_exported,omitempty"`
	NameCollisions    []Diagnostic `yaml:"name_collisions,omitempty"`
	SymbolListing     []Diagnostic `yaml:"symbol_listing,omitempty"`

	// OnAdd, if set, is called for every added diagnostic.
	OnAdd func(Category, Diagnostic) `yaml:"-"`
}

func (r *Report) bucket(c Category) *[]Diagnostic {
	switch c {
	case DuplicateMacro:
		return &r.DuplicateMacros
	case DuplicateTypedef:
		return &r.DuplicateTypedefs
	case UnparseableMacro:
		return &r.UnparseableMacros
	case UnresolvedMacro:
		return &r.UnresolvedMacros
	case EmptyStruct:
		return &r.EmptyStructs
	case Incomplete:
		return &r.Incomplete
	case OpaquePointer:
		return &r.OpaquePointers
	case NotExported:
		return &r.NotExported
	case NameCollision:
		return &r.NameCollisions
	case SymbolListing:
		return &r.SymbolListing
	default:
		panic(fmt.Sprintf("invalid report category: %v", c))
	}
}

// Add appends d to the bucket of c.
func (r *Report) Add(c Category, d Diagnostic) {
	b := r.bucket(c)
	*b = append(*b, d)
	if r.OnAdd != nil {
		r.OnAdd(c, d)
	}
}

// Addf is shorthand for [Report.Add] with a formatted detail.
func (r *Report) Addf(c Category, name, source, format string, args ...any) {
	r.Add(c, Diagnostic{Name: name, Source: source, Detail: fmt.Sprintf(format, args...)})
}

// Get returns the diagnostics of c.
func (r *Report) Get(c Category) []Diagnostic {
	return *r.bucket(c)
}

// Has reports whether c holds a diagnostic for name.
func (r *Report) Has(c Category, name string) bool {
	for _, d := range r.Get(c) {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Len returns the total number of diagnostics.
func (r *Report) Len() int {
	n := 0
	for _, c := range Categories() {
		n += len(r.Get(c))
	}
	return n
}

// Summary returns one line per non-empty category.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, c := range Categories() {
		if n := len(r.Get(c)); n > 0 {
			fmt.Fprintf(&b, "%v: %v\n", c, n)
		}
	}
	return b.String()
}

// String returns the full report, one indented diagnostic per line.
func (r *Report) String() string {
	var b strings.Builder
	for _, c := range Categories() {
		ds := r.Get(c)
		if len(ds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%v:\n", c)
		var lines strings.Builder
		for _, d := range ds {
			lines.WriteString(d.String())
			lines.WriteByte('\n')
		}
		b.WriteString(textutils.IndentString(lines.String(), "  ", 1))
	}
	return b.String()
}

// WriteFile writes the report as YAML.
func (r *Report) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0666); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
