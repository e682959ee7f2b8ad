package introspect

import (
	"go/build"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
)

var stdlib = struct {
	sync.Mutex
	paths map[string]bool
}{paths: make(map[string]bool)}

// IsStandardLibrary reports whether an import path is a package of the Go
// distribution. Packages are looked up in the GOROOT source tree. Binaries
// running without one fall back to the import path shape, excluding the
// modules listed in the build info.
func IsStandardLibrary(pkgPath string) bool {
	if pkgPath == "" {
		return true
	}
	if pkgPath == "main" {
		return false
	}

	stdlib.Lock()
	defer stdlib.Unlock()

	if known, ok := stdlib.paths[pkgPath]; ok {
		return known
	}

	var known bool
	if src, ok := gorootSource(); ok {
		known = isDir(filepath.Join(src, filepath.FromSlash(pkgPath)))
	} else {
		info, _ := debug.ReadBuildInfo()
		known = standardPathShape(pkgPath, info)
	}
	stdlib.paths[pkgPath] = known
	return known
}

func gorootSource() (string, bool) {
	if build.Default.GOROOT == "" {
		return "", false
	}
	src := filepath.Join(build.Default.GOROOT, "src")
	return src, isDir(src)
}

// standardPathShape reports whether pkgPath looks like a standard library
// path: no dot in its first element, and not inside a module of the build
func standardPathShape(pkgPath string, info *debug.BuildInfo) bool {
	if pkgPath == "main" {
		return false
	}
	first, _, _ := strings.Cut(pkgPath, "/")
	if strings.Contains(first, ".") {
		return false
	}
	if info == nil {
		return true
	}

	modules := []string{info.Main.Path}
	for _, dep := range info.Deps {
		modules = append(modules, dep.Path)
	}
	for _, mod := range modules {
		if mod != "" && (pkgPath == mod || strings.HasPrefix(pkgPath, mod+"/")) {
			return false
		}
	}
	return true
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
