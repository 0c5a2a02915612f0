package symtab

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// DefaultReadelf is the lister binary looked up in PATH.
const DefaultReadelf = "readelf"

// Lister runs readelf against a shared library.
type Lister struct {
	// Readelf is the path or name of the readelf binary.
	// Empty means [DefaultReadelf].
	Readelf string
}

// Args returns the lister arguments for library.
func (l *Lister) Args(library string) []string {
	return []string{"--dyn-syms", "--wide", library}
}

// List runs the lister and parses its standard output. It waits for the
// process to exit; only ctx can interrupt it.
func (l *Lister) List(ctx context.Context, library string) ([]Entry, error) {
	bin := l.Readelf
	if bin == "" {
		bin = DefaultReadelf
	}
	cmd := exec.CommandContext(ctx, bin, l.Args(library)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%v %v: %w: %s", bin, library, err, msg)
		}
		return nil, fmt.Errorf("%v %v: %w", bin, library, err)
	}
	return Parse(bytes.NewReader(out))
}
