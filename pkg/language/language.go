// Package language describes the comment grammar of the languages whose files
// can carry a copyright header.
package language

import (
	"regexp"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"

	f "github.com/multimediallc/copyright-headers/pkg/functional"
)

var (
	ErrInvalidLanguage     = errors.Base("invalid language definition")
	ErrAmbiguousLanguage   = errors.Base("file matches more than one language")
	ErrUnsupportedLanguage = errors.Base("file matches no language")
)

// Definition is the raw record of a language as it appears in a language file.
type Definition struct {
	Name            string   `yaml:"name"`
	CommentMarker   string   `yaml:"comment_marker"`
	MultilineStart  *string  `yaml:"multiline_start"`
	MultilineEnd    *string  `yaml:"multiline_end"`
	SingleLineEnd   string   `yaml:"single_line_end"`
	Extensions      []string `yaml:"extensions"`
	FilenamePattern *string  `yaml:"filename_pattern"`
}

// Language is a validated comment grammar. Use New to construct one.
type Language struct {
	name            string
	commentMarker   string
	multilineStart  string
	multilineEnd    string
	singleLineEnd   string
	extensions      []string
	filenamePattern *regexp.Regexp
}

// New validates def and builds a Language from it.
func New(def Definition) (*Language, error) {
	invalid := func(reason string) error {
		return errors.WithDetails(ErrInvalidLanguage, "language", def.Name, "reason", reason)
	}

	if def.CommentMarker == "" {
		return nil, invalid("comment_marker is required")
	}
	if (def.MultilineStart == nil) != (def.MultilineEnd == nil) {
		return nil, invalid("multiline_start and multiline_end must be set together")
	}
	l := &Language{
		name:          def.Name,
		commentMarker: def.CommentMarker,
		singleLineEnd: def.SingleLineEnd,
	}
	if def.MultilineStart != nil {
		if *def.MultilineStart == "" || *def.MultilineEnd == "" {
			return nil, invalid("multiline markers must not be empty")
		}
		l.multilineStart = *def.MultilineStart
		l.multilineEnd = *def.MultilineEnd
	}

	l.extensions = f.RemoveDuplicates(f.Map(def.Extensions, NormalizeExtension))
	slices.Sort(l.extensions)

	if def.FilenamePattern != nil {
		re, err := regexp.Compile(`^(?:` + *def.FilenamePattern + `)`)
		if err != nil {
			return nil, errors.WithDetails(ErrInvalidLanguage, "language", def.Name, "reason", err.Error())
		}
		l.filenamePattern = re
	}
	if len(l.extensions) == 0 && l.filenamePattern == nil {
		return nil, invalid("extensions or filename_pattern is required")
	}
	return l, nil
}

// NormalizeExtension lower-cases ext and prefixes it with a dot. The empty
// extension stays empty.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func (l *Language) Name() string {
	return l.name
}

func (l *Language) CommentMarker() string {
	return l.commentMarker
}

func (l *Language) SingleLineEnd() string {
	return l.singleLineEnd
}

// Multiline returns the block comment markers, if the language has any.
func (l *Language) Multiline() (start, end string, ok bool) {
	return l.multilineStart, l.multilineEnd, l.multilineStart != ""
}

func (l *Language) HasMultiline() bool {
	return l.multilineStart != ""
}

// Extensions returns the sorted, normalized extension set.
func (l *Language) Extensions() []string {
	return slices.Clone(l.extensions)
}

func (l *Language) HasExtension(ext string) bool {
	_, found := slices.BinarySearch(l.extensions, NormalizeExtension(ext))
	return found
}

func (l *Language) HasFilenamePattern() bool {
	return l.filenamePattern != nil
}

// MatchesFilename reports whether stem, a file name without its extension,
// satisfies the language's filename pattern. Languages without a pattern
// match every name.
func (l *Language) MatchesFilename(stem string) bool {
	if l.filenamePattern == nil {
		return true
	}
	return l.filenamePattern.MatchString(stem)
}

func (l *Language) keys() []Key {
	if len(l.extensions) == 0 {
		return []Key{Extensionless()}
	}
	return f.Map(l.extensions, HasExtension)
}
