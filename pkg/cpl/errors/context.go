package errors

import (
	"fmt"
	"strings"
)

// contextWindow bounds how many runes of the pattern are shown on each
// side of the error offset before the display is truncated.
const contextWindow = 30

// FormatPatternContext renders the pattern with a caret under the given
// rune offset for error context display. Patterns longer than the context
// window are truncated around the offset with "..." markers. An offset of
// NoPos (or one past either end) renders the pattern without a caret.
func FormatPatternContext(pattern string, pos int) string {
	runes := []rune(pattern)

	caret := pos
	if caret < 0 || caret > len(runes) {
		caret = NoPos
	}

	// Calculate display window
	start := 0
	end := len(runes)
	prefix := ""
	suffix := ""

	if caret != NoPos {
		if caret-contextWindow > 0 {
			start = caret - contextWindow
			prefix = "..."
		}
		if caret+contextWindow < len(runes) {
			end = caret + contextWindow
			suffix = "..."
		}
	} else if len(runes) > 2*contextWindow {
		end = 2 * contextWindow
		suffix = "..."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  | %s%s%s\n", prefix, string(runes[start:end]), suffix))

	// Caret line under the offending rune
	if caret != NoPos {
		padding := strings.Repeat(" ", len(prefix)+caret-start)
		sb.WriteString(fmt.Sprintf("  | %s^\n", padding))
	}

	return sb.String()
}
