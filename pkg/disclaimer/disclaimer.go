// Package disclaimer locates, inserts and replaces the long-form legal
// disclaimer that follows a copyright header.
package disclaimer

import (
	"bufio"
	"bytes"
	_ "embed"
	"io"
	"slices"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/pkg/comments"
	"github.com/multimediallc/copyright-headers/pkg/header"
	"github.com/multimediallc/copyright-headers/pkg/language"
	"github.com/multimediallc/copyright-headers/pkg/textedit"
)

var (
	ErrMissingHeader = errors.Base("disclaimer requires a copyright header")
	ErrEmptyTemplate = errors.Base("disclaimer template is empty")
)

//go:embed default_disclaimer.txt
var defaultTemplate []byte

// DefaultTemplate returns the lines of the embedded disclaimer.
func DefaultTemplate() []string {
	lines, _ := ReadTemplate(bytes.NewReader(defaultTemplate))
	return lines
}

// ReadTemplate returns the template lines verbatim, without terminators.
func ReadTemplate(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading disclaimer template")
	}
	if len(lines) == 0 {
		return nil, errors.WithStack(ErrEmptyTemplate)
	}
	return lines, nil
}

// Engine finds and writes one disclaimer text.
type Engine struct {
	heuristic Heuristic
	template  []string
}

func New(h Heuristic, template []string) (*Engine, error) {
	if len(template) == 0 {
		return nil, errors.WithStack(ErrEmptyTemplate)
	}
	return &Engine{heuristic: h, template: slices.Clone(template)}, nil
}

// Candidate is a scored comment region.
type Candidate struct {
	textedit.Span
	Score float64
	// Embedded is set for the text following the header inside the block
	// comment that holds it. The span then excludes the comment markers.
	Embedded bool
	// Closed is set when the last line of an embedded candidate also ends
	// the block comment.
	Closed bool
}

// Candidates scores the comment blocks of lines, best first. Lines of hdr,
// when given, are never part of a candidate: a single-line block holding
// the header is split around it, and in a block comment holding it only
// the text after the header is scored.
func (e *Engine) Candidates(lines []string, lang *language.Language, hdr *header.Span) []Candidate {
	_, mlEnd, _ := lang.Multiline()

	var candidates []Candidate
	add := func(region comments.Block, c Candidate) {
		c.Span = region.Span()
		c.Score = e.heuristic.Score(region.Lines)
		candidates = append(candidates, c)
	}
	for _, block := range comments.Scan(lines, lang) {
		if hdr == nil || !block.Span().Overlaps(hdr.Span) {
			add(block, Candidate{})
			continue
		}
		if block.Multiline {
			if region, ok := embeddedRegion(block, hdr.End); ok {
				last := strings.TrimSpace(region.Lines[len(region.Lines)-1])
				add(region, Candidate{Embedded: true, Closed: strings.HasSuffix(last, mlEnd)})
			}
			continue
		}
		if hdr.Start > block.Start {
			add(subBlock(block, block.Start, hdr.Start-1), Candidate{})
		}
		if hdr.End < block.End {
			add(subBlock(block, hdr.End+1, block.End), Candidate{})
		}
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return candidates
}

// embeddedRegion returns the lines of a block comment after line
// headerEnd, less the separator lines at either end of them.
func embeddedRegion(block comments.Block, headerEnd int) (comments.Block, bool) {
	start, end := headerEnd+1, block.End
	for start <= end && isSeparator(block.Lines[start-block.Start]) {
		start++
	}
	for end >= start && isSeparator(block.Lines[end-block.Start]) {
		end--
	}
	if start > end {
		return comments.Block{}, false
	}
	return subBlock(block, start, end), true
}

// isSeparator reports whether line holds no text, only markers and blanks.
func isSeparator(line string) bool {
	return !strings.ContainsFunc(line, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

func subBlock(block comments.Block, start, end int) comments.Block {
	return comments.Block{
		Start:     start,
		End:       end,
		Lines:     block.Lines[start-block.Start : end-block.Start+1],
		Multiline: block.Multiline,
	}
}

// Locate returns the best scoring candidate when it reaches the threshold.
// Ties go to the earliest block.
func (e *Engine) Locate(lines []string, lang *language.Language, hdr *header.Span) (Candidate, bool) {
	candidates := e.Candidates(lines, lang, hdr)
	if len(candidates) == 0 || candidates[0].Score < e.heuristic.Threshold {
		return Candidate{}, false
	}
	return candidates[0], true
}

// Render comments the template in the language's preferred style.
func (e *Engine) Render(lang *language.Language, opts language.CommentOptions) []string {
	return lang.Comment(e.template, opts)
}

// Insert places the disclaimer right after the header, or after the block
// comment enclosing it. A nil header is an error.
func (e *Engine) Insert(lines []string, lang *language.Language, hdr *header.Span, opts language.CommentOptions) ([]string, textedit.Span, error) {
	if hdr == nil {
		return nil, textedit.Span{}, errors.WithStack(ErrMissingHeader)
	}
	at := hdr.End + 1
	if hdr.Multiline {
		at = hdr.Block.End + 1
	}

	block := e.Render(lang, opts)
	out := textedit.Insert(lines, at, block, opts.Newline)
	return out, textedit.Span{Start: at, End: at + len(block) - 1}, nil
}

// Update replaces the disclaimer at found with a fresh rendering. An
// embedded disclaimer is rewritten in place inside its block comment.
func (e *Engine) Update(lines []string, lang *language.Language, found Candidate, opts language.CommentOptions) ([]string, textedit.Span) {
	block := e.Render(lang, opts)
	if found.Embedded {
		block = e.renderEmbedded(lang, found.Closed, opts)
	}
	out := textedit.Replace(lines, found.Span, block)
	return out, textedit.Span{Start: found.Start, End: found.Start + len(block) - 1}
}

// renderEmbedded renders the template as the inner lines of a block
// comment, closing the comment when closed is set. Blank template lines at
// either end are dropped so the result locates to the same lines again.
func (e *Engine) renderEmbedded(lang *language.Language, closed bool, opts language.CommentOptions) []string {
	newline := opts.Newline
	if newline == "" {
		newline = "\n"
	}
	pad := strings.Repeat(" ", max(opts.Padding, 0))

	text := e.template
	for len(text) > 0 && isSeparator(text[0]) {
		text = text[1:]
	}
	for len(text) > 0 && isSeparator(text[len(text)-1]) {
		text = text[:len(text)-1]
	}

	out := make([]string, 0, len(text)+1)
	for _, line := range text {
		line = strings.TrimSpace(line)
		if line == "" {
			out = append(out, newline)
			continue
		}
		out = append(out, pad+line+newline)
	}
	if _, mlEnd, ok := lang.Multiline(); ok && closed {
		out = append(out, mlEnd+newline)
	}
	return out
}
