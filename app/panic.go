package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"

	"xrbridge/device"
	"xrbridge/hal"
)

var panicInk = color.RGBA{A: 255}

// recoverFrame stops the frame loop after a panicking frame and leaves a
// panic screen on the canvas.
func (a *App) recoverFrame(id device.SessionID) {
	v := recover()
	if v == nil {
		return
	}
	stack := debug.Stack()
	a.running.Store(false)
	a.panics.Add(1)
	a.log.Error("frame panicked", "session", id, "panic", v, "stack", string(stack))

	lines := []string{
		"XR frame panic:",
		fmt.Sprintf("session: %d", id),
		fmt.Sprintf("panic: %v", v),
		"stack:",
	}
	for _, line := range strings.Split(string(stack), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}

	a.canvas.ClearRGB(255, 255, 255)
	cols, rows := hal.StatusGrid(a.canvas)
	hal.DrawStatus(a.canvas, 0, 0, wrapLines(lines, cols, rows), panicInk)
}

// wrapLines splits lines at cols runes and keeps at most rows of them.
func wrapLines(lines []string, cols, rows int) []string {
	if cols <= 0 {
		cols = 1
	}
	var out []string
	for _, line := range lines {
		for len(line) > 0 {
			if len(out) >= rows {
				return out
			}
			chunk, rest := takeRunes(line, cols)
			out = append(out, chunk)
			line = strings.TrimLeft(rest, " \t")
		}
	}
	return out
}

func takeRunes(s string, n int) (string, string) {
	if n <= 0 || s == "" {
		return "", s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}
