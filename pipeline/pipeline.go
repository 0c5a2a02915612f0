// Package pipeline runs the generator stages in order: symbol listing,
// macro and declaration extraction, binding and output.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/refaktor/sobind/config"
	"github.com/refaktor/sobind/ctypes"
	"github.com/refaktor/sobind/decl"
	"github.com/refaktor/sobind/digraphutils"
	"github.com/refaktor/sobind/emitter"
	"github.com/refaktor/sobind/logger"
	"github.com/refaktor/sobind/macro"
	"github.com/refaktor/sobind/report"
	"github.com/refaktor/sobind/symtab"
)

// File is an input file read into memory.
type File struct {
	Path string
	Text string
}

// Input is everything [Generate] works on.
type Input struct {
	Library string
	// Package overrides the package name derived from Library.
	Package string
	// Symbols is the full symbol table of Library.
	Symbols      []symtab.Entry
	Headers      []File
	Preprocessed []File
	Rules        []config.Rule
}

// Result is the outcome of [Generate].
type Result struct {
	Binding *emitter.Binding
	Decls   *decl.Declarations
	// Defines is the number of accepted macro definitions.
	Defines int
}

// Timing is the duration of one task of a run.
type Timing struct {
	Task     string
	Duration time.Duration
}

// Stats describes a finished run.
type Stats struct {
	*Result
	Report  *report.Report
	Path    string
	Timings []Timing
}

// Generate extracts and binds everything in in. It touches no files;
// equal inputs give equal results. Degraded items go to r.
func Generate(in Input, r *report.Report, log *logger.Logger) (*Result, error) {
	if r == nil {
		r = &report.Report{}
	}
	stage := func(name string) {
		l := log.With(name)
		r.OnAdd = func(c report.Category, d report.Diagnostic) {
			level := logger.WARN
			if c == report.NotExported || c == report.OpaquePointer {
				level = logger.DEBUG
			}
			l.Log(level, "%v: %v", c, d)
		}
	}
	defer func() { r.OnAdd = nil }()

	symbols := symtab.Exported(in.Symbols)
	log.With("symtab").Log(logger.DEBUG, "%v exported functions", len(symbols))

	stage("macro")
	mx := macro.NewExtractor(r)
	for _, f := range in.Headers {
		mx.Scan(f.Path, f.Text)
	}
	consts := mx.Constants()

	stage("decl")
	dx := decl.NewExtractor(r)
	for _, f := range in.Preprocessed {
		dx.Scan(f.Path, f.Text)
	}
	decls := dx.Declarations()
	log.With("decl").Log(logger.DEBUG, "%v functions, %v structs, %v typedefs, %v enums",
		decls.Functions.Len(), decls.Structs.Len(), decls.Typedefs.Len(), len(decls.Enums))

	stage("emitter")
	names, excluded, err := bindingNames(symbols, in.Rules)
	if err != nil {
		return nil, err
	}
	for sym := range excluded {
		log.With("emitter").Log(logger.DEBUG, "%v: excluded by rule", sym)
	}
	b := emitter.Build(emitter.Input{
		LibraryPath: in.Library,
		Package:     in.Package,
		Symbols:     symbols,
		Constants:   consts,
		Decls:       decls,
		Names:       names,
		Excluded:    excluded,
	}, r)
	return &Result{Binding: b, Decls: decls, Defines: len(mx.Defines())}, nil
}

func bindingNames(symbols []symtab.Entry, rules []config.Rule) (names map[string]string, excluded map[string]bool, err error) {
	if len(rules) == 0 {
		return nil, nil, nil
	}
	syms := make([]string, len(symbols))
	for i, s := range symbols {
		syms[i] = s.Name
	}
	renamed, included, err := config.ApplyRules(rules, syms)
	if err != nil {
		return nil, nil, err
	}
	names = map[string]string{}
	excluded = map[string]bool{}
	for _, s := range syms {
		if renamed[s] != s {
			names[s] = renamed[s]
		}
		if !included[s] {
			excluded[s] = true
		}
	}
	return names, excluded, nil
}

// Run executes a complete generator run as described by opts.
// The returned stats are set whenever generation itself succeeded.
func Run(ctx context.Context, opts *config.Options, log *logger.Logger) (*Stats, error) {
	r := &report.Report{}
	st := &Stats{Report: r}
	timeStart := time.Now()
	timed := func(task string) {
		st.Timings = append(st.Timings, Timing{Task: task, Duration: time.Since(timeStart)})
		timeStart = time.Now()
	}

	headers, err := readFiles(opts.Headers)
	if err != nil {
		return nil, err
	}
	preprocessed, err := readFiles(opts.Preprocessed)
	if err != nil {
		return nil, err
	}
	timed("Read headers")

	slog := log.With("symtab")
	slog.Log(logger.DEBUG, "listing symbols of %v", opts.Lib)
	lister := &symtab.Lister{Readelf: opts.Readelf}
	entries, err := lister.List(ctx, opts.Lib)
	if err != nil {
		r.Addf(report.SymbolListing, opts.Lib, "", "%v", err)
		slog.Log(logger.WARN, "listing symbols: %v", err)
		entries = nil
	} else if len(symtab.Exported(entries)) == 0 {
		r.Addf(report.SymbolListing, opts.Lib, "", "no exported functions")
		slog.Log(logger.WARN, "%v exports no functions", opts.Lib)
	}
	timed("List symbols")

	res, err := Generate(Input{
		Library:      opts.Lib,
		Package:      opts.Package,
		Symbols:      entries,
		Headers:      headers,
		Preprocessed: preprocessed,
		Rules:        opts.Rules(),
	}, r, log)
	if err != nil {
		return nil, err
	}
	st.Result = res
	timed("Extract and bind")

	elog := log.With("emitter")
	path, fmtErr, err := res.Binding.WriteFile(opts.Out, !opts.NoFormat)
	if err != nil {
		return st, fmt.Errorf("write binding: %w", err)
	}
	st.Path = path
	if fmtErr != nil {
		elog.Log(logger.ERROR, "formatting %v: %v; wrote unformatted source", path, fmtErr)
	}
	elog.Log(logger.INFO, "wrote %v", path)
	timed("Write and format code")

	if opts.Module != "" {
		modPath, err := emitter.WriteGoMod(opts.Out, opts.Module)
		if err != nil {
			return st, fmt.Errorf("write go.mod: %w", err)
		}
		elog.Log(logger.INFO, "wrote %v", modPath)
	}
	if opts.TypedefGraph != "" {
		if err := os.WriteFile(opts.TypedefGraph, TypedefGraph(res.Decls), 0666); err != nil {
			return st, fmt.Errorf("write typedef graph: %w", err)
		}
	}
	if opts.Report != "" {
		if err := r.WriteFile(opts.Report); err != nil {
			return st, err
		}
	}
	timed("Write extras")

	if r.Len() > 0 {
		log.Log(logger.DEBUG, "diagnostics:\n%v", r.String())
	}
	return st, nil
}

// TypedefGraph returns the typedef graph as graphviz DOT. Edges point from
// a typedef to the base name of its target.
func TypedefGraph(decls *decl.Declarations) []byte {
	var nodes []string
	seen := map[string]bool{}
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	target := func(name string) (string, bool) {
		v, ok := decls.Typedefs.Get(name)
		if !ok {
			return "", false
		}
		base, _ := ctypes.SplitPointer(ctypes.Normalize(v))
		return base, true
	}
	for pair := decls.Typedefs.Oldest(); pair != nil; pair = pair.Next() {
		add(pair.Key)
		if base, ok := target(pair.Key); ok {
			add(base)
		}
	}
	return digraphutils.DOTCode(nodes, func(name string) []string {
		if base, ok := target(name); ok {
			return []string{base}
		}
		return nil
	}, "typedefs", "node [shape=box]")
}

// readFiles reads paths whole, in order.
func readFiles(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		files = append(files, File{Path: p, Text: string(data)})
	}
	return files, nil
}
