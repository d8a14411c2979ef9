package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/moby/term"
)

const (
	altEnter   = "\x1b[?1049h\x1b[H" // switch to alt buffer, go Home
	altExit    = "\x1b[?1049l"       // leave alt buffer
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
	homeClear  = "\x1b[H\x1b[2J" // go Home + clear screen
	eraseLine  = "\x1b[2K"
)

// AltScreen draws a full-screen, redrawn-in-place view of a running
// build into the terminal's alternate buffer, leaving the normal
// scrollback untouched until Exit restores it.
type AltScreen struct {
	w         io.Writer
	lastFrame []string
	enabled   bool
}

func NewAlt(out io.Writer) *AltScreen { return &AltScreen{w: out} }

// Enter switches to the alternate screen buffer if w is a terminal;
// otherwise it's a no-op, so piping `foundry build --progress=alt` to a
// file never emits escape sequences. A SIGINT/SIGTERM handler is
// installed so the alternate buffer is always left cleanly.
func (a *AltScreen) Enter() {
	if !isTTY(a.w) {
		return
	}
	enableWindowsVT()
	fmt.Fprint(a.w, altEnter, hideCursor)
	a.enabled = true
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() { <-ch; a.Exit(); os.Exit(1) }()
}

// Exit leaves the alternate buffer, replaying the last rendered frame
// into normal scrollback so the final build state survives the screen
// switch.
func (a *AltScreen) Exit() {
	if !a.enabled {
		return
	}
	fmt.Fprint(a.w, showCursor, altExit)
	if len(a.lastFrame) > 0 {
		for _, ln := range a.lastFrame {
			fmt.Fprintln(a.w, ln)
		}
	}
	fmt.Fprint(a.w, showCursor)
	a.enabled = false
}

// Render redraws the full frame from scratch: home cursor, clear, one
// line per entry in lines.
func (a *AltScreen) Render(lines []string) {
	if !a.enabled {
		return
	}
	a.lastFrame = append(a.lastFrame[:0], lines...)
	var b bytes.Buffer
	b.WriteString(homeClear)
	for _, ln := range lines {
		b.WriteString(eraseLine)
		b.WriteString(ln)
		b.WriteByte('\n')
	}
	_, _ = a.w.Write(b.Bytes())
}

// StageStatus is one pipeline stage's render state for RenderStages.
type StageStatus struct {
	Title string
	Done  bool
}

// RenderStages draws a full-screen pipeline stage list, marking
// completed stages with "x" and the rest with "-".
func (a *AltScreen) RenderStages(stages []StageStatus) {
	lines := make([]string, 0, len(stages)+1)
	lines = append(lines, "foundry build")
	for _, s := range stages {
		mark := "-"
		if s.Done {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf("  [%s] %s", mark, s.Title))
	}
	a.Render(lines)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// enableWindowsVT is a no-op placeholder; Windows VT processing would
// need golang.org/x/sys/windows to set ENABLE_VIRTUAL_TERMINAL_PROCESSING.
func enableWindowsVT() {
	if runtime.GOOS != "windows" {
		return
	}
}
