// Package header locates, renders and rewrites the copyright header of a text.
package header

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/pkg/comments"
	f "github.com/multimediallc/copyright-headers/pkg/functional"
	"github.com/multimediallc/copyright-headers/pkg/language"
	"github.com/multimediallc/copyright-headers/pkg/textedit"
	"github.com/multimediallc/copyright-headers/pkg/years"
)

// LineFormat is the text of one header line: year range, then owner.
const LineFormat = "(c) Copyright %s %s, Inc. All Rights reserved."

var (
	ErrMultipleHeaders = errors.Base("multiple copyright headers found")
	ErrNoYear          = errors.Base("no year found in copyright header")
	ErrInvalidPolicy   = errors.Base("invalid header policy")
)

// Policy names the legal owners and the year ownership changed hands.
type Policy struct {
	// TransitionYear is the last year owned by Before.
	TransitionYear int
	Before         string
	After          string
	// Recognized lists the owner names an existing header may carry.
	// Before and After are always recognized.
	Recognized []string
}

// Engine finds and produces headers for one Policy.
type Engine struct {
	policy  Policy
	pattern *regexp.Regexp
	yearIdx int
}

// New validates p and compiles its header pattern.
func New(p Policy) (*Engine, error) {
	if p.Before == "" || p.After == "" {
		return nil, errors.WithDetails(ErrInvalidPolicy, "reason", "owner names must not be empty")
	}
	names := f.RemoveDuplicates(append([]string{p.Before, p.After}, p.Recognized...))
	// Longest first, so that "Advanced ABC" is preferred over "ABC".
	slices.SortStableFunc(names, func(a, b string) int { return len(b) - len(a) })
	p.Recognized = names

	pattern := regexp.MustCompile(
		`(?i)^\s*\S{0,5}\s*(?:\(c\)\s*)?Copyright\s+(?:\(c\)\s*)?(?P<year_range>` + years.Pattern + `)\s+(?:` +
			strings.Join(f.Map(names, regexp.QuoteMeta), "|") + `).*$`,
	)
	return &Engine{
		policy:  p,
		pattern: pattern,
		yearIdx: pattern.SubexpIndex("year_range"),
	}, nil
}

// Matches reports whether a single line looks like a header line.
func (e *Engine) Matches(line string) bool {
	return e.pattern.MatchString(textedit.TrimEOL(line))
}

// Span is the location of a header. Multiline is set when the header sits
// inside a block comment; Block is the comment block holding it.
type Span struct {
	textedit.Span
	Multiline bool
	Block     comments.Block
}

// Locate finds the header among the comment blocks of lines. Consecutive
// matching lines of one block form one header. More than one header is an
// error.
func (e *Engine) Locate(lines []string, lang *language.Language) (Span, bool, error) {
	var found []Span
	for _, block := range comments.Scan(lines, lang) {
		first := -1
		for i, line := range block.Lines {
			if e.Matches(line) {
				if first < 0 {
					first = i
				}
				continue
			}
			if first >= 0 {
				found = append(found, newSpan(block, first, i-1))
				first = -1
			}
		}
		if first >= 0 {
			found = append(found, newSpan(block, first, len(block.Lines)-1))
		}
	}

	switch len(found) {
	case 0:
		return Span{}, false, nil
	case 1:
		return found[0], true, nil
	default:
		starts := f.Map(found, func(s Span) int { return s.Start + 1 })
		return Span{}, false, errors.WithDetails(ErrMultipleHeaders, "lines", starts)
	}
}

func newSpan(block comments.Block, first, last int) Span {
	return Span{
		Span:      textedit.Span{Start: block.Start + first, End: block.Start + last},
		Multiline: block.Multiline,
		Block:     block,
	}
}

// CreationYear returns the earliest start year among header lines.
func (e *Engine) CreationYear(headerLines []string) (int, error) {
	creation := 0
	for _, line := range headerLines {
		match := e.pattern.FindStringSubmatch(textedit.TrimEOL(line))
		if match == nil {
			continue
		}
		r, err := years.Parse(match[e.yearIdx])
		if err != nil {
			return 0, err
		}
		if creation == 0 || r.Start < creation {
			creation = r.Start
		}
	}
	if creation == 0 {
		return 0, errors.WithStack(ErrNoYear)
	}
	return creation, nil
}

// Render returns the uncommented header lines for the years start to end.
// A range crossing the transition year is split between both owners.
func (e *Engine) Render(start, end int) ([]string, error) {
	if _, err := years.NewRange(start, end); err != nil {
		return nil, err
	}
	transition := e.policy.TransitionYear

	switch {
	case end <= transition:
		return e.lines(years.Range{Start: start, End: end}, e.policy.Before), nil
	case start <= transition:
		return append(
			e.lines(years.Range{Start: start, End: transition}, e.policy.Before),
			e.lines(years.Range{Start: transition + 1, End: end}, e.policy.After)...,
		), nil
	default:
		return e.lines(years.Range{Start: start, End: end}, e.policy.After), nil
	}
}

func (e *Engine) lines(r years.Range, owner string) []string {
	return []string{fmt.Sprintf(LineFormat, r, owner)}
}
