package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	"github.com/refaktor/sobind/logger"
	"github.com/refaktor/sobind/symtab"
)

// EnvPrefix is the name prefix of the environment variables.
const EnvPrefix = "SOBIND_"

// Options are the inputs of one generator run.
type Options struct {
	Lib          string   `env:"LIB"`
	Headers      []string `env:"HEADERS"`
	Preprocessed []string `env:"PREPROCESSED"`
	Out          string   `env:"OUT" envDefault:"."`
	Package      string   `env:"PACKAGE"`
	Readelf      string   `env:"READELF"`
	Module       string   `env:"MODULE"`
	Report       string   `env:"REPORT"`
	TypedefGraph string   `env:"TYPEDEF_GRAPH"`
	NoFormat     bool     `env:"NO_FORMAT"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	Config       string   `env:"CONFIG"`

	// Help is set by -h/--help; nothing else is validated then.
	Help bool

	rules []Rule
}

// Rules returns the rules of the config file, if any.
func (o *Options) Rules() []Rule {
	return o.rules
}

func newFlagSet(name string, o *Options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.Lib, "lib", o.Lib, "shared library to bind (required)")
	fs.StringSliceVar(&o.Headers, "headers", o.Headers, "raw headers to read macros from (required)")
	fs.StringSliceVar(&o.Preprocessed, "preprocessed", o.Preprocessed, "preprocessed headers to read declarations from (required)")
	fs.StringVar(&o.Out, "out", o.Out, "output directory")
	fs.StringVar(&o.Package, "package", o.Package, "package name (default derived from --lib)")
	fs.StringVar(&o.Readelf, "readelf", o.Readelf, "readelf binary (default "+symtab.DefaultReadelf+")")
	fs.StringVar(&o.Module, "module", o.Module, "also write a go.mod declaring this module path")
	fs.StringVar(&o.Report, "report", o.Report, "write the diagnostics report as YAML")
	fs.StringVar(&o.TypedefGraph, "typedef-graph", o.TypedefGraph, "write the typedef graph as graphviz DOT")
	fs.BoolVar(&o.NoFormat, "no-format", o.NoFormat, "write the generated source unformatted")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "debug, info, warn or error")
	fs.StringVar(&o.Config, "config", o.Config, "TOML file with binding rules")
	fs.BoolVarP(&o.Help, "help", "h", false, "print usage")
	return fs
}

// Parse reads the environment, then args on top of it, then the config
// file the two name. environ holds the environment variables; nil means
// the process environment.
func Parse(args []string, environ map[string]string) (*Options, error) {
	o := &Options{}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(o, opts); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	fs := newFlagSet("sobind", o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if o.Help {
		return o, nil
	}
	o.Headers = dedup(o.Headers)
	o.Preprocessed = dedup(o.Preprocessed)

	if o.Config != "" {
		f, err := LoadFile(o.Config)
		if err != nil {
			return nil, err
		}
		o.rules = f.Rules
	}
	return o, nil
}

// Validate checks that all inputs are given and exist.
func (o *Options) Validate() error {
	var errs []error
	if o.Lib == "" {
		errs = append(errs, errors.New("missing --lib"))
	}
	if len(o.Headers) == 0 {
		errs = append(errs, errors.New("missing --headers"))
	}
	if len(o.Preprocessed) == 0 {
		errs = append(errs, errors.New("missing --preprocessed"))
	}
	for _, path := range append(append([]string{o.Lib}, o.Headers...), o.Preprocessed...) {
		if path == "" {
			continue
		}
		if st, err := os.Stat(path); err != nil {
			errs = append(errs, err)
		} else if st.IsDir() {
			errs = append(errs, fmt.Errorf("%v is a directory", path))
		}
	}
	if _, err := logger.ParseLevel(o.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateRules(o.rules); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Usage writes the command line help to w.
func Usage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: %v --lib PATH --headers H1,H2 --preprocessed P1,P2 [flags]\n\n", name)
	fmt.Fprintf(w, "Generates a Go package calling the functions of a shared library.\n")
	fmt.Fprintf(w, "Every flag can also be set as %vNAME, e.g. %vLOG_LEVEL=debug.\n\nFlags:\n", EnvPrefix, EnvPrefix)
	fmt.Fprint(w, newFlagSet(name, &Options{Out: ".", LogLevel: "info"}).FlagUsages())
}

// dedup removes repeated and empty entries, keeping the first occurrence.
func dedup(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var res []string
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		res = append(res, p)
	}
	return res
}
