// Package excludes decides which files are processed, using a
// CODEOWNERS-like rules file:
//
//	# comment
//	vendor/        @thirdparty
//	vendor/ours/   @include
//	src/**/*.py    @disclaimer
//
// The last matching line decides whether a path is included. Any tag other
// than @include and @disclaimer excludes the path.
package excludes

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	f "github.com/multimediallc/copyright-headers/pkg/functional"
)

// DisclaimerMode selects which files receive a disclaimer.
type DisclaimerMode string

const (
	DisclaimerNever  DisclaimerMode = "never"
	DisclaimerAlways DisclaimerMode = "always"
	// DisclaimerConfig leaves the choice to @disclaimer tags.
	DisclaimerConfig DisclaimerMode = "config"
)

//go:embed default_excludes
var defaultExcludes []byte

type rule struct {
	globs []string
	tags  []Tag
}

func (r rule) matches(path string) bool {
	for _, glob := range r.globs {
		// globs are validated when the rule is parsed
		if ok, _ := doublestar.Match(glob, path); ok {
			return true
		}
	}
	return false
}

func (r rule) hasTag(tag Tag) bool {
	_, found := f.Find(r.tags, tag.Equals)
	return found
}

func (r rule) excludes() bool {
	_, found := f.Find(r.tags, Tag.excludes)
	return found
}

// Rules is a parsed excludes file. The zero value includes every path.
type Rules struct {
	rules []rule
}

// Decision is the verdict for one path.
type Decision struct {
	Include    bool
	Disclaimer bool
}

// Default returns the built-in rules.
func Default() *Rules {
	rules, _ := Parse(bytes.NewReader(defaultExcludes), io.Discard)
	return rules
}

// Parse reads rules from r. Malformed lines are reported to warningWriter
// and skipped. Only read failures are returned as errors.
func Parse(r io.Reader, warningWriter io.Writer) (*Rules, error) {
	rules := &Rules{}
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(warningWriter, "WARNING: Invalid line %d in excludes file: %s\n", lineNumber, line)
			continue
		}
		globs := translate(parts[0])
		if invalid, found := f.Find(globs, func(g string) bool { return !doublestar.ValidatePattern(g) }); found {
			_, _ = fmt.Fprintf(warningWriter, "WARNING: Invalid pattern on line %d in excludes file: %s\n", lineNumber, invalid)
			continue
		}
		rules.rules = append(rules.rules, rule{
			globs: globs,
			tags:  f.Map(parts[1:], NewTag),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading excludes file")
	}
	return rules, nil
}

// translate turns one CODEOWNERS-style pattern into doublestar globs. A
// leading "/" anchors the pattern to the root; otherwise a pattern without
// an inner "/" matches at any depth. Every pattern also matches everything
// below a directory of that name.
func translate(pattern string) []string {
	anchored := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")
	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	if !anchored && !strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "**") {
		pattern = "**/" + pattern
	}
	if strings.HasSuffix(pattern, "/**") {
		return []string{pattern}
	}
	if dirOnly {
		return []string{pattern + "/**"}
	}
	return []string{pattern, pattern + "/**"}
}

// Len returns the number of valid rules.
func (r *Rules) Len() int {
	return len(r.rules)
}

// match returns the last rule matching path.
func (r *Rules) match(path string) (rule, bool) {
	for i := len(r.rules) - 1; i >= 0; i-- {
		if r.rules[i].matches(path) {
			return r.rules[i], true
		}
	}
	return rule{}, false
}

// Decide returns whether path, relative to the root, is processed and
// whether it gets a disclaimer under mode. In config mode the last matching
// rule must carry @disclaimer.
func (r *Rules) Decide(path string, mode DisclaimerMode) Decision {
	path = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "./")

	last, matched := r.match(path)
	decision := Decision{Include: !matched || !last.excludes()}
	if !decision.Include {
		return decision
	}

	switch mode {
	case DisclaimerAlways:
		decision.Disclaimer = true
	case DisclaimerConfig:
		decision.Disclaimer = matched && last.hasTag(TagDisclaimer)
	}
	return decision
}
