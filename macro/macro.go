// Package macro extracts object-like #define constants from raw C headers.
//
// Function-like macros, conditional compilation and arithmetic are out of
// reach: a macro becomes a constant either because its value is a single
// literal, or because its value only references such literal macros, in
// which case the expression is copied verbatim.
package macro

import (
	"go/parser"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/refaktor/sobind/report"
	"github.com/refaktor/sobind/textutils"
)

var (
	// One token or one quoted literal, alone on its line.
	strictRe = regexp.MustCompile(`^[ \t]*#[ \t]*define[ \t]+([A-Za-z_]\w*)[ \t]+("(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|\S+)[ \t]*$`)
	// Any object-like macro; the value may continue over backslash-newlines.
	// A '(' right after the name never matches, so function-like macros
	// are skipped.
	generalRe = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*define[ \t]+([A-Za-z_]\w*)(?:[ \t]+((?:[^\n\\]|\\\n|\\.)*))?[ \t]*$`)
	// Tokens of a macro value: literals are matched first so that
	// identifier-like parts of them ("10UL", "0xFF") are not identifiers.
	tokenRe = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'|\.?[0-9](?:[eEpP][+-]|[\w.])*|([A-Za-z_]\w*)`)
)

// Define is one #define of a raw header.
type Define struct {
	Name string
	// Value is the replacement text with continuations joined and
	// whitespace collapsed.
	Value string
	// Strict is set if the definition is a single token or quoted literal
	// on one line.
	Strict bool
	Source string
}

// Constant is a typed macro ready for emission.
type Constant struct {
	Name string
	// Type is a Go type name (see package ctypes).
	Type string
	// Value is a literal or, for compound macros, the verbatim expression.
	Value string
	// Compound is set if Value is an expression over other constants.
	Compound bool
	Source   string
}

// Extractor accumulates defines over several headers. The first definition
// of a name wins; later ones are reported as duplicates.
type Extractor struct {
	defines *orderedmap.OrderedMap[string, Define]
	report  *report.Report
}

func NewExtractor(r *report.Report) *Extractor {
	if r == nil {
		r = &report.Report{}
	}
	return &Extractor{
		defines: orderedmap.New[string, Define](),
		report:  r,
	}
}

// Scan extracts the defines of one raw header text.
func (x *Extractor) Scan(source, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = textutils.StripComments(text)
	for _, m := range generalRe.FindAllStringSubmatch(text, -1) {
		d := Define{
			Name:   m[1],
			Value:  textutils.CollapseSpace(strings.ReplaceAll(m[2], "\\\n", " ")),
			Strict: strictRe.MatchString(m[0]),
			Source: source,
		}
		if prev, ok := x.defines.Get(d.Name); ok {
			x.report.Addf(report.DuplicateMacro, d.Name, source,
				"redefined as %q, keeping %q from %v", d.Value, prev.Value, prev.Source)
			continue
		}
		x.defines.Set(d.Name, d)
	}
}

// Defines returns all accepted defines in definition order.
func (x *Extractor) Defines() []Define {
	res := make([]Define, 0, x.defines.Len())
	for pair := x.defines.Oldest(); pair != nil; pair = pair.Next() {
		res = append(res, pair.Value)
	}
	return res
}

// Constants types the accepted defines. Strict defines come first, in
// definition order, followed by compound ones. Dropped defines are
// reported once each.
func (x *Extractor) Constants() []Constant {
	var res []Constant
	typed := map[string]string{}
	for pair := x.defines.Oldest(); pair != nil; pair = pair.Next() {
		d := pair.Value
		if !d.Strict {
			continue
		}
		if typ, lit, ok := Infer(d.Value); ok {
			typed[d.Name] = typ
			res = append(res, Constant{Name: d.Name, Type: typ, Value: lit, Source: d.Source})
		}
	}

	for pair := x.defines.Oldest(); pair != nil; pair = pair.Next() {
		d := pair.Value
		if _, ok := typed[d.Name]; ok || d.Value == "" {
			continue
		}
		c, ok := x.compound(d, typed)
		if ok {
			res = append(res, c)
		}
	}
	return res
}

// compound types d by the strict constants it references.
func (x *Extractor) compound(d Define, typed map[string]string) (Constant, bool) {
	ids := Identifiers(d.Value)
	if len(ids) == 0 {
		x.report.Addf(report.UnparseableMacro, d.Name, d.Source, "unable to parse %q", d.Value)
		return Constant{}, false
	}
	var typ string
	var missing []string
	mixed := false
	for _, id := range ids {
		t, ok := typed[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		mixed = mixed || typ != "" && t != typ
		typ = t // the last reference decides
	}
	if len(missing) > 0 {
		x.report.Addf(report.UnresolvedMacro, d.Name, d.Source, "references unknown %v", strings.Join(missing, ", "))
		return Constant{}, false
	}
	if mixed {
		// Go has no implicit conversions between constant types.
		x.report.Addf(report.UnresolvedMacro, d.Name, d.Source, "mixes operand types in %q", d.Value)
		return Constant{}, false
	}
	if _, err := parser.ParseExpr(d.Value); err != nil {
		x.report.Addf(report.UnparseableMacro, d.Name, d.Source, "unable to parse %q", d.Value)
		return Constant{}, false
	}
	return Constant{Name: d.Name, Type: typ, Value: d.Value, Compound: true, Source: d.Source}, true
}

// Identifiers returns the identifiers of a macro value in order of
// appearance.
func Identifiers(value string) []string {
	var ids []string
	for _, m := range tokenRe.FindAllStringSubmatch(value, -1) {
		if m[1] != "" {
			ids = append(ids, m[1])
		}
	}
	return ids
}
