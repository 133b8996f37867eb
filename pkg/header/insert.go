package header

import (
	"strings"

	"github.com/multimediallc/copyright-headers/pkg/language"
	"github.com/multimediallc/copyright-headers/pkg/textedit"
)

// InsertRules lists the extensions whose files start with a prologue that
// must stay ahead of the header.
type InsertRules struct {
	// XMLExtensions mark languages whose declaration ("?>") comes first.
	XMLExtensions []string
	// YAMLExtensions mark languages whose document start ("---") comes first.
	YAMLExtensions []string
}

func DefaultInsertRules() InsertRules {
	return InsertRules{
		XMLExtensions:  []string{".xml"},
		YAMLExtensions: []string{".yml", ".yaml"},
	}
}

func hasAny(lang *language.Language, exts []string) bool {
	for _, ext := range exts {
		if lang.HasExtension(ext) {
			return true
		}
	}
	return false
}

// InsertLine returns the first line a new header may be inserted before.
// It skips a shebang, an XML declaration and a YAML document start; when
// several apply the furthest one wins.
func InsertLine(lines []string, lang *language.Language, rules InsertRules) int {
	at := 0
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		at = 1
	}
	if hasAny(lang, rules.XMLExtensions) {
		at = max(at, firstLineAfter(lines, func(line string) bool {
			return strings.Contains(line, "?>") || strings.Contains(line, "?->")
		}))
	}
	if hasAny(lang, rules.YAMLExtensions) {
		at = max(at, firstLineAfter(lines, func(line string) bool {
			return strings.TrimSpace(line) == "---"
		}))
	}
	return at
}

func firstLineAfter(lines []string, match func(string) bool) int {
	for i, line := range lines {
		if match(line) {
			return i + 1
		}
	}
	return 0
}

// Insert adds a fresh header covering start to end. Headers are always
// written with single-line comments. The returned span is the new header.
func (e *Engine) Insert(lines []string, lang *language.Language, start, end int, rules InsertRules, opts language.CommentOptions) ([]string, textedit.Span, error) {
	rendered, err := e.Render(start, end)
	if err != nil {
		return nil, textedit.Span{}, err
	}
	opts.DisableMultiline = true
	block := lang.Comment(rendered, opts)

	at := InsertLine(lines, lang, rules)
	out := textedit.Insert(lines, at, block, opts.Newline)
	return out, textedit.Span{Start: at, End: at + len(block) - 1}, nil
}

// Update rewrites the header at found so its years run from its creation
// year to end. Inside a block comment the lines stay uncommented and the
// block markers found on the original first and last lines are kept.
func (e *Engine) Update(lines []string, lang *language.Language, found Span, end int, opts language.CommentOptions) ([]string, textedit.Span, error) {
	existing := lines[found.Start : found.End+1]
	start, err := e.CreationYear(existing)
	if err != nil {
		return nil, textedit.Span{}, err
	}
	rendered, err := e.Render(start, end)
	if err != nil {
		return nil, textedit.Span{}, err
	}

	newline := opts.Newline
	if newline == "" {
		newline = "\n"
	}

	var block []string
	mlStart, mlEnd, hasMultiline := lang.Multiline()
	if !found.Multiline || !hasMultiline {
		opts.DisableMultiline = true
		block = lang.Comment(rendered, opts)
	} else {
		pad := strings.Repeat(" ", max(opts.Padding, 0))
		first := strings.TrimSpace(existing[0])
		last := strings.TrimSpace(existing[len(existing)-1])
		opened := strings.HasPrefix(first, mlStart)
		if opened && len(existing) == 1 {
			last = strings.TrimSpace(strings.Replace(last, mlStart, "", 1))
		}

		if opened {
			block = append(block, mlStart+newline)
		}
		for _, line := range rendered {
			block = append(block, pad+line+newline)
		}
		if strings.HasPrefix(last, mlEnd) || strings.HasSuffix(last, mlEnd) {
			block = append(block, mlEnd+newline)
		}
	}

	out := textedit.Replace(lines, found.Span, block)
	return out, textedit.Span{Start: found.Start, End: found.Start + len(block) - 1}, nil
}
