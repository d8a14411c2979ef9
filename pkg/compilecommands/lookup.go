package compilecommands

import (
	"path/filepath"
	"strings"

	"github.com/containifyci/foundry/pkg/ferr"
)

// cSourceSuffixes is the fallback order names for a C/C++
// file that has no direct entry: same basename, these suffixes in turn.
var cSourceSuffixes = []string{".c", ".cc", ".cpp", ".cxx", ".c++"}

// Lookup resolves file to a filtered argv, argv[0] being the original
// compiler program name. systemIncludes are inserted as "-I"+include
// entries directly after argv[0] for C/C++ lookups. Returns NotFound if no entry, direct or
// via fallback, covers file.
func (cc *CompileCommands) Lookup(file string, systemIncludes []string) ([]string, error) {
	entry, resolvedVia, ok := cc.resolve(file)
	if !ok {
		if strings.HasSuffix(file, ".vala") {
			if argv, ok := cc.lookupValaSidecar(file); ok {
				return argv, nil
			}
		}
		return nil, ferr.New(ferr.NotFound, "no compile command entry for "+file)
	}

	args := shellSplit(entry.Command)
	if strings.HasSuffix(resolvedVia, ".vala") {
		return filterVala(args, entry.Directory), nil
	}
	return filterCxx(args, entry.Directory, systemIncludes), nil
}

// resolve applies the *-private.h and C/C++ suffix fallback chain,
// returning the entry found and the path it was found under.
func (cc *CompileCommands) resolve(file string) (Entry, string, bool) {
	if e, ok := cc.byFile[file]; ok {
		return e, file, true
	}
	if strings.HasSuffix(file, "-private.h") {
		candidate := strings.TrimSuffix(file, "-private.h") + ".c"
		if e, ok := cc.byFile[candidate]; ok {
			return e, candidate, true
		}
	}
	ext := filepath.Ext(file)
	if ext == ".h" || ext == ".hh" || ext == ".hpp" || ext == ".hxx" {
		base := strings.TrimSuffix(file, ext)
		for _, suffix := range cSourceSuffixes {
			candidate := base + suffix
			if e, ok := cc.byFile[candidate]; ok {
				return e, candidate, true
			}
		}
	}
	return Entry{}, "", false
}

func (cc *CompileCommands) lookupValaSidecar(file string) ([]string, bool) {
	for _, sc := range cc.valaFiles {
		args := shellSplit(sc.entry.Command)
		for _, a := range args {
			if strings.Contains(a, ".vala") && normalize(a, sc.entry.Directory) == file {
				return filterVala(args, sc.entry.Directory), true
			}
		}
	}
	return nil, false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// filterCxx implements C/C++ filtering rule.
func filterCxx(args []string, directory string, systemIncludes []string) []string {
	if len(args) == 0 {
		return nil
	}
	out := []string{args[0]}
	for _, inc := range systemIncludes {
		out = append(out, "-I"+inc)
	}
	for i := 1; i < len(args); i++ {
		a := args[i]
		switch {
		case strings.HasPrefix(a, "-M"):
			continue
		case strings.HasPrefix(a, "-I"):
			val := strings.TrimPrefix(a, "-I")
			if val == "" && i+1 < len(args) {
				i++
				val = args[i]
			}
			out = append(out, "-I"+absolutize(val, directory))
		case a == "-include" && i+1 < len(args):
			i++
			out = append(out, "-include", absolutize(args[i], directory))
		case a == "-isystem" && i+1 < len(args):
			i++
			out = append(out, "-isystem", absolutize(args[i], directory))
		case hasAnyPrefix(a, "-f", "-W", "-m", "-O", "-D", "-x", "-std=", "--std=") || a == "-pthread":
			out = append(out, a)
		}
	}
	return out
}

// filterVala implements Vala filtering rule.
func filterVala(args []string, directory string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--pkg" || a == "--target-glib":
			out = append(out, a)
			if i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
		case strings.HasSuffix(a, ".vapi"):
			out = append(out, a)
		case a == "--vapidir" || a == "--girdir" || a == "--metadatadir":
			out = append(out, a)
			if i+1 < len(args) {
				i++
				out = append(out, absolutize(args[i], directory))
			}
		}
	}
	return out
}

func absolutize(path, directory string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(directory, path))
}
