package language

import "strings"

// CommentOptions controls how text is turned into comment lines.
type CommentOptions struct {
	// Padding is the number of spaces between a marker and the text.
	Padding int
	// DisableMultiline forces one single-line comment per text line.
	DisableMultiline bool
	// Newline terminates every produced line; "\n" when empty.
	Newline string
}

// Comment renders text lines as comment lines. Block style is used when
// there is more than one line and the language has block markers, unless
// disabled. Text lines are trimmed; blank ones are rendered without padding.
func (l *Language) Comment(text []string, opts CommentOptions) []string {
	newline := opts.Newline
	if newline == "" {
		newline = "\n"
	}
	pad := strings.Repeat(" ", max(opts.Padding, 0))

	if len(text) > 1 && l.HasMultiline() && !opts.DisableMultiline {
		out := make([]string, 0, len(text)+2)
		out = append(out, l.multilineStart+newline)
		for _, line := range text {
			line = strings.TrimSpace(line)
			if line == "" {
				out = append(out, newline)
				continue
			}
			out = append(out, pad+line+newline)
		}
		return append(out, l.multilineEnd+newline)
	}

	out := make([]string, 0, len(text))
	for _, line := range text {
		line = strings.TrimSpace(line)
		if line == "" {
			out = append(out, l.commentMarker+l.singleLineEnd+newline)
			continue
		}
		out = append(out, l.commentMarker+pad+line+l.singleLineEnd+newline)
	}
	return out
}
