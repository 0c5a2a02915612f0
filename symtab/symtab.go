// Package symtab reads the dynamic symbol table of a shared library from
// the text output of readelf.
package symtab

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Undefined is the section index readelf prints for symbols the library
// references but does not define.
const Undefined = "UND"

// Entry is one row of `readelf --dyn-syms`.
type Entry struct {
	Index      int
	Value      uint64
	Size       uint64
	Type       string // FUNC, OBJECT, NOTYPE, ...
	Bind       string // GLOBAL, WEAK, LOCAL
	Visibility string // DEFAULT, HIDDEN, ...
	Section    string // section index or [Undefined]
	Name       string // without version
	Version    string // text after '@' or "@@", if any
}

// Exported reports whether e is a function defined in and callable from
// the library.
func (e Entry) Exported() bool {
	return e.Type == "FUNC" && e.Bind == "GLOBAL" && e.Section != Undefined
}

//   Num:    Value          Size Type    Bind   Vis      Ndx Name
//     1: 0000000000001139    22 FUNC    GLOBAL DEFAULT   14 bar@@LIBFOO_1.0
var lineRe = regexp.MustCompile(`^\s*(\d+):\s+([0-9a-fA-F]+)\s+(0x[0-9a-fA-F]+|\d+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)`)

// ParseLine parses a single line of lister output.
func ParseLine(line string) (Entry, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return Entry{}, false
	}
	value, err := strconv.ParseUint(m[2], 16, 64)
	if err != nil {
		return Entry{}, false
	}
	size, err := strconv.ParseUint(m[3], 0, 64)
	if err != nil {
		return Entry{}, false
	}
	name, version := m[8], ""
	if at := strings.IndexByte(name, '@'); at > 0 {
		name, version = name[:at], strings.TrimLeft(name[at:], "@")
	}
	return Entry{
		Index:      idx,
		Value:      value,
		Size:       size,
		Type:       m[4],
		Bind:       m[5],
		Visibility: m[6],
		Section:    m[7],
		Name:       name,
		Version:    version,
	}, true
}

// Parse reads lister output. Lines that are not symbol rows (headers,
// blank lines, section titles) are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if e, ok := ParseLine(sc.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Exported returns the exported entries of entries, keeping the first
// entry per name, in table order.
func Exported(entries []Entry) []Entry {
	var res []Entry
	seen := map[string]struct{}{}
	for _, e := range entries {
		if !e.Exported() {
			continue
		}
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		res = append(res, e)
	}
	return res
}
