// Package fsutil collects small filesystem helpers shared across
// Foundry's components, adapted from pkg/filesystem:
// existence checks return values instead of logging and swallowing,
// per propagation policy (library code never
// logs-and-swallows).
package fsutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/containifyci/foundry/pkg/ferr"
)

// FileExists reports whether filename exists and is not a directory.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDirectory creates dirName (and any missing parents) with 0700
// permissions if it does not already exist. Returns InvalidArgument if
// the path exists but is not a directory.
func EnsureDirectory(dirName string) error {
	info, err := os.Stat(dirName)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dirName, 0o700); err != nil {
			return ferr.Wrap(ferr.Io, err, "creating directory "+dirName)
		}
		return nil
	}
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "statting directory "+dirName)
	}
	if !info.IsDir() {
		return ferr.New(ferr.InvalidArgument, dirName+" exists but is not a directory")
	}
	return nil
}

// FindFilesBySuffix walks root and returns every file whose name ends
// in suffix, grounded on FileCache.FindFilesBySuffix but
// without its disk-backed query cache.
func FindFilesBySuffix(root, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "finding files with suffix "+suffix+" under "+root)
	}
	return files, nil
}

// HomeDir returns the current user's home directory, or an Io error if
// it cannot be determined.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ferr.Wrap(ferr.Io, err, "determining home directory")
	}
	return home, nil
}
