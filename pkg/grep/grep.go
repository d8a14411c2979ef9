// Package grep backs `foundry grep PATTERN [TARGETS...]`
// using stdlib regexp over the target files and directories it is
// given; the CLI passes the current directory when no TARGETS are named.
package grep

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/containifyci/foundry/pkg/ferr"
)

// Options mirrors the `-r -i -E -w -m COUNT -C LINES` flag set.
type Options struct {
	Recursive     bool
	CaseSensitive bool // false selects -i (ignore case)
	ExtendedRegex bool // -E: pattern is already a Go/POSIX-ERE-flavored regex either way
	WholeWord     bool // -w
	MaxMatches    int  // -m COUNT; 0 means unlimited
	ContextLines  int  // -C LINES
}

// Match is one matched line plus any requested context lines.
type Match struct {
	Path       string
	LineNumber int
	Line       string
	Before     []string
	After      []string
}

// Search compiles pattern per opts and scans every target (file or, if
// opts.Recursive, directory walked recursively), returning matches in
// target order.
func Search(pattern string, targets []string, opts Options) ([]Match, error) {
	expr := pattern
	if opts.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, ferr.Wrap(ferr.InvalidArgument, err, "compiling grep pattern")
	}

	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, ferr.Wrap(ferr.Io, err, "statting grep target "+target)
		}
		if !info.IsDir() {
			files = append(files, target)
			continue
		}
		if !opts.Recursive {
			return nil, ferr.New(ferr.InvalidArgument, target+" is a directory; pass -r to recurse")
		}
		err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, ferr.Wrap(ferr.Io, err, "walking grep target "+target)
		}
	}

	var results []Match
	for _, file := range files {
		matches, err := searchFile(file, re, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, matches...)
		if opts.MaxMatches > 0 && len(results) >= opts.MaxMatches {
			return results[:opts.MaxMatches], nil
		}
	}
	return results, nil
}

func searchFile(path string, re *regexp.Regexp, opts Options) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "opening "+path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "reading "+path)
	}

	var matches []Match
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		m := Match{Path: path, LineNumber: i + 1, Line: line}
		if opts.ContextLines > 0 {
			m.Before = contextSlice(lines, i-opts.ContextLines, i)
			m.After = contextSlice(lines, i+1, i+1+opts.ContextLines)
		}
		matches = append(matches, m)
		if opts.MaxMatches > 0 && len(matches) >= opts.MaxMatches {
			break
		}
	}
	return matches, nil
}

func contextSlice(lines []string, start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	return lines[start:end]
}

// Format renders a Match the way `grep -n` does: "path:line:text".
func Format(m Match) string {
	var b strings.Builder
	for i, line := range m.Before {
		fmt.Fprintf(&b, "%s-%d-%s\n", m.Path, m.LineNumber-len(m.Before)+i, line)
	}
	fmt.Fprintf(&b, "%s:%d:%s\n", m.Path, m.LineNumber, m.Line)
	for i, line := range m.After {
		fmt.Fprintf(&b, "%s-%d-%s\n", m.Path, m.LineNumber+1+i, line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
