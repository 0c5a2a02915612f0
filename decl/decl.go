// Package decl extracts functions, structs, enums and typedefs from
// preprocessed C header text.
//
// Extraction is pattern based and line insensitive: the text is cleaned
// (comments, directives, attributes and storage keywords removed,
// whitespace collapsed) and then scanned with one pattern per declaration
// kind. Anything the patterns do not recognize is skipped silently.
package decl

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/refaktor/sobind/ctypes"
	"github.com/refaktor/sobind/report"
	"github.com/refaktor/sobind/textutils"
)

var (
	directiveRe = regexp.MustCompile(`(?m)^[ \t]*#.*$`)
	noiseRe     = regexp.MustCompile(`\b(?:__extension__|__inline__|__inline|inline|extern|static|_Noreturn|__THROW|__wur|__nonnull)\b`)

	typedefRe   = regexp.MustCompile(`typedef ((?:[A-Za-z_]\w*[\s*]+)+)([A-Za-z_]\w*)\s*;`)
	fnTypedefRe = regexp.MustCompile(`typedef ((?:[A-Za-z_]\w*[\s*]+)*[A-Za-z_]\w*[\s*]*)\(\s*(\*+)\s*([A-Za-z_]\w*)\s*((?:\[[^\]]*\]\s*)*)\)\s*\(((?:[^()]|\([^()]*\))*)\)\s*;`)
	enumRe      = regexp.MustCompile(`(typedef\s+)?enum\s*([A-Za-z_]\w*)?\s*\{([^{}]*)\}\s*([A-Za-z_]\w*)?\s*;`)
	// typedef struct [tag] { ... } Name [, *PName];
	typedefStructRe = regexp.MustCompile(`typedef struct\s*([A-Za-z_]\w*)?\s*\{([^{}]*)\}\s*([A-Za-z_]\w*)\s*(?:,[^;{}]*)?;`)
	// struct tag { ... };
	taggedStructRe = regexp.MustCompile(`struct\s+([A-Za-z_]\w*)\s*\{([^{}]*)\}\s*;`)
	functionRe     = regexp.MustCompile(`((?:[A-Za-z_]\w*[\s*]+)+)([A-Za-z_]\w*)\s*\(((?:[^()]|\([^()]*\))*)\)\s*[{;]`)

	// type, name and array suffix of a single declarator
	declaratorRe  = regexp.MustCompile(`^(.*[\s*])([A-Za-z_]\w*)\s*((?:\[[^\]]*\]\s*)*)$`)
	nameArrayRe   = regexp.MustCompile(`^([A-Za-z_]\w*)\s*((?:\[[^\]]*\]\s*)*)$`)
	funcPointerRe = regexp.MustCompile(`^(.*?)\(\s*(\*+)\s*([A-Za-z_]\w*)?\s*((?:\[[^\]]*\]\s*)*)\)\s*\((.*)\)$`)
)

// attributeKeywords are followed by a parenthesized group that is removed
// together with them.
var attributeKeywords = []string{
	"__attribute__", "__attribute", "__asm__", "__asm", "asm", "__declspec", "_Alignas", "__THROW_ATTR",
}

// statementKeywords never start or name a function declaration.
var statementKeywords = map[string]bool{
	"return": true, "typedef": true, "if": true, "else": true, "while": true,
	"for": true, "do": true, "switch": true, "case": true, "goto": true,
	"sizeof": true, "break": true, "continue": true, "default": true,
	"typeof": true, "__typeof__": true, "_Static_assert": true, "static_assert": true,
	"struct": true, "union": true, "enum": true,
}

// typeKeywords cannot be declarator names, so a parameter ending in one
// is unnamed.
var typeKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "bool": true, "const": true, "volatile": true,
	"struct": true, "union": true, "enum": true, "restrict": true,
	"__restrict": true, "__restrict__": true,
}

// Extractor accumulates declarations over several headers.
type Extractor struct {
	decls  *Declarations
	report *report.Report
}

func NewExtractor(r *report.Report) *Extractor {
	if r == nil {
		r = &report.Report{}
	}
	return &Extractor{
		decls:  NewDeclarations(),
		report: r,
	}
}

// Declarations returns everything extracted so far.
func (x *Extractor) Declarations() *Declarations {
	return x.decls
}

// Clean prepares header text for extraction.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = textutils.StripComments(text)
	text = textutils.JoinContinuations(text)
	text = directiveRe.ReplaceAllString(text, "")
	for _, kw := range attributeKeywords {
		text = textutils.StripCalls(text, kw)
	}
	text = noiseRe.ReplaceAllString(text, " ")
	return textutils.CollapseSpace(text)
}

// Scan extracts the declarations of one preprocessed header text.
func (x *Extractor) Scan(source, text string) {
	text = Clean(text)
	x.scanEnums(source, text)
	x.scanFuncPointerTypedefs(source, text)
	x.scanStructs(source, text)
	x.scanTypedefs(source, text)
	x.scanFunctions(source, text)
}

// addTypedef records name -> value. A conflicting redefinition is
// reported, an identical one ignored.
func (x *Extractor) addTypedef(source, name, value string) {
	if value == name {
		return
	}
	if prev, ok := x.decls.Typedefs.Get(name); ok {
		if prev != value {
			x.report.Addf(report.DuplicateTypedef, name, source,
				"redefined as %q, keeping %q", value, prev)
		}
		return
	}
	x.decls.Typedefs.Set(name, value)
}

func (x *Extractor) scanTypedefs(source, text string) {
	for _, m := range typedefRe.FindAllStringSubmatch(text, -1) {
		base, stars := ctypes.SplitPointer(ctypes.Normalize(m[1]))
		if base == "" {
			continue
		}
		if t, ok := ctypes.Basic(base); ok {
			base = t
		}
		x.addTypedef(source, m[2], base+strings.Repeat("*", stars))
	}
}

func (x *Extractor) scanFuncPointerTypedefs(source, text string) {
	for _, m := range fnTypedefRe.FindAllStringSubmatch(text, -1) {
		params, variadic := parseParams(m[5])
		fp := FuncPointer{
			ReturnType: ctypes.Normalize(m[1]),
			Stars:      len(m[2]),
			Name:       m[3],
			Array:      compactArray(m[4]),
			Params:     params,
			Variadic:   variadic,
		}
		if _, ok := x.decls.FuncPointers.Get(fp.Name); ok {
			continue
		}
		x.decls.FuncPointers.Set(fp.Name, fp)
		if fp.Array == "" {
			x.addTypedef(source, fp.Name, fp.BindingType())
		}
	}
}

func (x *Extractor) scanEnums(source, text string) {
	for _, m := range enumRe.FindAllStringSubmatch(text, -1) {
		isTypedef, tag, body, alias := m[1] != "", m[2], m[3], m[4]
		name := tag
		if isTypedef && alias != "" {
			name = alias
		}
		e := Enum{Name: name, Source: source}
		for _, item := range splitTopLevel(body, ',') {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			n, v, _ := strings.Cut(item, "=")
			e.Values = append(e.Values, Enumerator{
				Name:  strings.TrimSpace(n),
				Value: textutils.CollapseSpace(v),
			})
		}
		x.decls.Enums = append(x.decls.Enums, e)
		if tag != "" {
			x.addTypedef(source, tag, ctypes.Int32)
		}
		if isTypedef && alias != "" {
			x.addTypedef(source, alias, ctypes.Int32)
		}
	}
}

// scanStructs handles both the typedef and the tagged form, in order of
// appearance.
func (x *Extractor) scanStructs(source, text string) {
	type found struct {
		pos       int
		tag, name string
		body      string
	}
	var all []found
	for _, m := range typedefStructRe.FindAllStringSubmatchIndex(text, -1) {
		f := found{pos: m[0], body: text[m[4]:m[5]], name: text[m[6]:m[7]]}
		if m[2] >= 0 {
			f.tag = text[m[2]:m[3]]
		}
		all = append(all, f)
	}
	for _, m := range taggedStructRe.FindAllStringSubmatchIndex(text, -1) {
		all = append(all, found{pos: m[0], tag: text[m[2]:m[3]], name: text[m[2]:m[3]], body: text[m[4]:m[5]]})
	}
	slices.SortFunc(all, func(a, b found) int { return a.pos - b.pos })

	for _, f := range all {
		if f.tag != "" && f.tag != f.name {
			// "struct tag" names the same type as the alias
			x.addTypedef(source, f.tag, f.name)
		}
		if _, ok := x.decls.Structs.Get(f.name); ok {
			continue
		}
		members, err := parseMembers(f.body)
		if err != nil {
			x.report.Addf(report.Incomplete, f.name, source, "%v", err)
			continue
		}
		if len(members) == 0 {
			x.report.Addf(report.EmptyStruct, f.name, source, "no members")
			continue
		}
		x.decls.Structs.Set(f.name, Struct{Name: f.name, Members: members, Source: source})
	}
}

func (x *Extractor) scanFunctions(source, text string) {
	for pos := 0; pos < len(text); {
		loc := functionRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			return
		}
		group := func(i int) string { return text[pos+loc[2*i] : pos+loc[2*i+1]] }
		ret, name, args := group(1), group(2), group(3)
		end := pos + loc[1]
		pos = end
		if text[end-1] == '{' {
			// statements of a definition never declare anything
			pos = skipBody(text, end)
		}
		if statementKeywords[name] || typeKeywords[name] ||
			slices.ContainsFunc(strings.Fields(strings.ReplaceAll(ret, "*", " ")), func(w string) bool { return statementKeywords[w] }) {
			continue
		}
		if _, ok := x.decls.Functions.Get(name); ok {
			continue
		}
		params, variadic := parseParams(args)
		x.decls.Functions.Set(name, Function{
			Name:       name,
			ReturnType: ctypes.Normalize(ret),
			Params:     params,
			Variadic:   variadic,
			Source:     source,
		})
	}
}

// skipBody returns the index after the brace closing the block opened just
// before start, or len(text) if the block is not closed.
func skipBody(text string, start int) int {
	depth := 1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

// parseParams parses a comma separated parameter list. "void" and the
// empty list have no parameters.
func parseParams(args string) (params []Param, variadic bool) {
	args = strings.TrimSpace(args)
	if args == "" || args == "void" {
		return nil, false
	}
	for _, seg := range splitTopLevel(args, ',') {
		seg = strings.TrimSpace(seg)
		switch {
		case seg == "":
		case seg == "...":
			variadic = true
		default:
			if fp, ok := parseFuncPointer(seg); ok {
				typ := fp.BindingType()
				if fp.Array != "" {
					typ += "*"
				}
				params = append(params, Param{Type: typ, Name: fp.Name})
				continue
			}
			typ, name, array := splitDeclarator(seg)
			if array != "" {
				typ += "*" // arrays decay to pointers
			}
			params = append(params, Param{Type: ctypes.Normalize(typ), Name: name})
		}
	}
	return params, variadic
}

func parseFuncPointer(s string) (FuncPointer, bool) {
	m := funcPointerRe.FindStringSubmatch(s)
	if m == nil {
		return FuncPointer{}, false
	}
	params, variadic := parseParams(m[5])
	return FuncPointer{
		ReturnType: ctypes.Normalize(m[1]),
		Stars:      len(m[2]),
		Name:       m[3],
		Array:      compactArray(m[4]),
		Params:     params,
		Variadic:   variadic,
	}, true
}

// splitDeclarator splits "const char *name[4]" into type, name and array
// suffix. Declarators without a name return the whole string as type.
func splitDeclarator(s string) (typ, name, array string) {
	m := declaratorRe.FindStringSubmatch(s)
	if m == nil || typeKeywords[m[2]] || ctypes.Normalize(m[1]) == strings.Repeat("*", strings.Count(m[1], "*")) {
		return strings.TrimSpace(s), "", ""
	}
	return strings.TrimSpace(m[1]), m[2], compactArray(m[3])
}

// parseMembers parses the body of a struct definition.
func parseMembers(body string) ([]Member, error) {
	var members []Member
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if fp, ok := parseFuncPointer(stmt); ok {
			if fp.Name == "" {
				return nil, fmt.Errorf("unnamed function pointer member %q", stmt)
			}
			members = append(members, Member{Type: fp.BindingType(), Name: fp.Name, Array: fp.Array})
			continue
		}
		if strings.Contains(stmt, ":") {
			return nil, fmt.Errorf("bitfield member %q is not supported", stmt)
		}
		declarators := splitTopLevel(stmt, ',')
		typ, name, array := splitDeclarator(strings.TrimSpace(declarators[0]))
		if name == "" {
			return nil, fmt.Errorf("unable to parse member %q", stmt)
		}
		members = append(members, Member{Type: ctypes.Normalize(typ), Name: name, Array: array})

		// int *a, b[2], **c;
		base, _ := ctypes.SplitPointer(typ)
		for _, d := range declarators[1:] {
			d = strings.TrimSpace(d)
			rest := strings.TrimLeft(d, "* ")
			stars := strings.Count(d[:len(d)-len(rest)], "*")
			m := nameArrayRe.FindStringSubmatch(rest)
			if m == nil {
				return nil, fmt.Errorf("unable to parse member %q", d)
			}
			members = append(members, Member{
				Type:  ctypes.Normalize(base + strings.Repeat("*", stars)),
				Name:  m[1],
				Array: compactArray(m[2]),
			})
		}
	}
	return members, nil
}

// splitTopLevel splits s at sep outside of parentheses and brackets.
func splitTopLevel(s string, sep byte) []string {
	var res []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				res = append(res, s[start:i])
				start = i + 1
			}
		}
	}
	return append(res, s[start:])
}

func compactArray(s string) string {
	return strings.Join(strings.Fields(s), "")
}
