// Package textedit holds the line-sequence primitives shared by the header and
// disclaimer engines. A text is a slice of lines, each keeping its own line
// terminator. Every function except Surround returns a fresh slice.
package textedit

import "strings"

// Span is an inclusive line range.
type Span struct {
	Start int
	End   int
}

// Len returns the number of lines covered by the span.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

// Overlaps reports whether the two spans share at least one line.
func (s Span) Overlaps(other Span) bool {
	return s.Start <= other.End && other.Start <= s.End
}

// SplitLines splits text after every "\n", keeping the terminators.
// The last line has no terminator when the text does not end with one.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Join concatenates lines back into a text.
func Join(lines []string) string {
	return strings.Join(lines, "")
}

// Newline returns the terminator used by the first terminated line, "\n" by default.
func Newline(lines []string) string {
	for _, line := range lines {
		if strings.HasSuffix(line, "\r\n") {
			return "\r\n"
		}
		if strings.HasSuffix(line, "\n") {
			return "\n"
		}
	}
	return "\n"
}

// TrimEOL strips the line terminator.
func TrimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// IsBlank reports whether the line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Equal reports whether two texts are identical line by line.
func Equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Insert returns a copy of lines with block inserted before index at.
// A last line lacking its terminator gets one when block lands after it.
func Insert(lines []string, at int, block []string, newline string) []string {
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	if at > 0 && at == len(lines) && !strings.HasSuffix(out[at-1], "\n") {
		out[at-1] += newline
	}
	out = append(out, block...)
	out = append(out, lines[at:]...)
	return out
}

// Replace returns a copy of lines with span replaced by block.
func Replace(lines []string, span Span, block []string) []string {
	out := make([]string, 0, len(lines)-span.Len()+len(block))
	out = append(out, lines[:span.Start]...)
	out = append(out, block...)
	out = append(out, lines[span.End+1:]...)
	return out
}

// Surround pads span with one blank line on each side, unless the adjacent
// line is missing or already blank. Lines are inserted in place in the
// slice it is given, so it must only be called on a freshly produced text.
// The returned span is the shifted position of the padded block.
func Surround(lines []string, span Span, newline string) ([]string, Span) {
	if span.Start > 0 && !IsBlank(lines[span.Start-1]) {
		lines = append(lines, "")
		copy(lines[span.Start+1:], lines[span.Start:])
		lines[span.Start] = newline
		span.Start++
		span.End++
	}
	if span.End < len(lines)-1 && !IsBlank(lines[span.End+1]) {
		lines = append(lines, "")
		copy(lines[span.End+2:], lines[span.End+1:])
		lines[span.End+1] = newline
	}
	return lines, span
}
