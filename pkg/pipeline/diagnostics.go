package pipeline

import (
	"bufio"
	"regexp"
	"strings"
)

// enteringDirRE matches GNU make's "Entering directory '<path>'" marker,
// which the extractor uses to track current_dir for resolving relative
// paths reported in subsequent diagnostic lines.
var enteringDirRE = regexp.MustCompile(`Entering directory '([^']*)'`)

// stripANSI implements specific stripping rule: remove
// "ESC [" sequences up to the first character that is not a digit, ';',
// or space, and bare "\e[...]" literal sequences. This is narrower than
// a general CSI-sequence stripper (acarl005/stripansi strips the whole
// escape including its final byte regardless of what that byte is) —
// the rule only consumes the parameter bytes, not the final
// command byte, so it's hand-rolled rather than delegated.
func stripANSI(line string) string {
	var b strings.Builder
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		start := -1
		if runes[i] == 0x1b && i+1 < len(runes) && runes[i+1] == '[' {
			start = i + 2
		} else if runes[i] == '\\' && i+2 < len(runes) && runes[i+1] == 'e' && runes[i+2] == '[' {
			start = i + 3
		}
		if start >= 0 {
			j := start
			for j < len(runes) {
				r := runes[j]
				if (r >= '0' && r <= '9') || r == ';' || r == ' ' {
					j++
					continue
				}
				break
			}
			i = j - 1
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// DiagnosticLine is one regex match against a stripped, directory-
// resolved log line.
type DiagnosticLine struct {
	Dir     string
	Line    string
	Pattern string
	Matches []string
}

// Extractor scans lines read from a Pipeline's PTY consumer side for
// "Entering directory" markers and an application-supplied set of
// diagnostic regexes. It runs synchronously with reads
// on whatever scheduler drives the PTY reader, so ordering between the
// directory marker and subsequent matches is preserved.
type Extractor struct {
	TopDir     string
	CurrentDir string
	Patterns   map[string]*regexp.Regexp

	onDiagnostic func(DiagnosticLine)
}

// NewExtractor creates an Extractor rooted at topDir with the given
// named diagnostic patterns.
func NewExtractor(topDir string, patterns map[string]*regexp.Regexp) *Extractor {
	return &Extractor{TopDir: topDir, CurrentDir: topDir, Patterns: patterns}
}

// OnDiagnostic registers the handler invoked for every matched line.
func (e *Extractor) OnDiagnostic(fn func(DiagnosticLine)) {
	e.onDiagnostic = fn
}

// Feed processes one raw PTY line: strips ANSI, updates CurrentDir on an
// Entering-directory marker, and otherwise matches it against every
// registered pattern.
func (e *Extractor) Feed(raw string) {
	line := stripANSI(raw)
	if m := enteringDirRE.FindStringSubmatch(line); m != nil {
		if e.TopDir == "" {
			e.TopDir = m[1]
		}
		if m[1] == "" {
			e.CurrentDir = e.TopDir
		} else {
			e.CurrentDir = m[1]
		}
		return
	}
	if e.onDiagnostic == nil {
		return
	}
	for name, re := range e.Patterns {
		if matches := re.FindStringSubmatch(line); matches != nil {
			e.onDiagnostic(DiagnosticLine{Dir: e.CurrentDir, Line: line, Pattern: name, Matches: matches})
		}
	}
}

// Scan reads newline-delimited lines from r, calling Feed on each, until
// r is exhausted or returns an error.
func (e *Extractor) Scan(r *bufio.Scanner) {
	for r.Scan() {
		e.Feed(r.Text())
	}
}
