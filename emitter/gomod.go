package emitter

import (
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

const (
	ffiModule        = "github.com/jupiterrider/ffi"
	ffiModuleVersion = "v0.5.0"
	goVersion        = "1.23"
)

// GoMod returns a go.mod for a module holding the generated package.
func GoMod(modulePath string) ([]byte, error) {
	if err := module.CheckPath(modulePath); err != nil {
		return nil, err
	}
	f := new(modfile.File)
	if err := f.AddModuleStmt(modulePath); err != nil {
		return nil, err
	}
	if err := f.AddGoStmt(goVersion); err != nil {
		return nil, err
	}
	if err := f.AddRequire(ffiModule, ffiModuleVersion); err != nil {
		return nil, err
	}
	f.Cleanup()
	return f.Format()
}

// WriteGoMod writes GoMod(modulePath) to dir/go.mod.
func WriteGoMod(dir, modulePath string) (string, error) {
	data, err := GoMod(modulePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "go.mod")
	return path, os.WriteFile(path, data, 0666)
}
