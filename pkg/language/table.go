package language

import (
	"path/filepath"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"

	f "github.com/multimediallc/copyright-headers/pkg/functional"
)

// Table is an immutable, validated set of languages indexed by Key.
type Table struct {
	languages []*Language
	byKey     map[Key][]*Language
}

// NewTable indexes languages. Languages sharing a key must all carry a
// filename pattern, otherwise the set is rejected.
func NewTable(languages ...*Language) (*Table, error) {
	t := &Table{
		languages: slices.Clone(languages),
		byKey:     make(map[Key][]*Language),
	}
	for _, l := range languages {
		for _, key := range l.keys() {
			t.byKey[key] = append(t.byKey[key], l)
		}
	}
	for key, candidates := range t.byKey {
		if len(candidates) < 2 {
			continue
		}
		for _, l := range candidates {
			if !l.HasFilenamePattern() {
				return nil, errors.WithDetails(
					ErrInvalidLanguage,
					"key", key.String(),
					"languages", languageNames(candidates),
					"reason", "shared extension requires a filename_pattern on every language",
				)
			}
		}
	}
	return t, nil
}

// Languages returns the languages in definition order.
func (t *Table) Languages() []*Language {
	return slices.Clone(t.languages)
}

// Lookup resolves the language of the file at path. Languages claiming the
// file's extension are tried first, then the extensionless ones. Candidates
// are filtered by filename pattern and exactly one must remain.
func (t *Table) Lookup(path string) (*Language, error) {
	ext, stem := SplitName(path)

	candidates := t.byKey[HasExtension(ext)]
	if len(candidates) == 0 {
		candidates = t.byKey[Extensionless()]
	}
	matching := f.Filtered(candidates, func(l *Language) bool {
		return l.MatchesFilename(stem)
	})

	switch len(matching) {
	case 1:
		return matching[0], nil
	case 0:
		return nil, errors.WithDetails(ErrUnsupportedLanguage, "path", path)
	default:
		return nil, errors.WithDetails(ErrAmbiguousLanguage, "path", path, "languages", languageNames(matching))
	}
}

// SplitName returns the extension and the extension-less file name of path.
// Dotfiles such as ".bashrc" have no extension.
func SplitName(path string) (ext, stem string) {
	name := filepath.Base(path)
	ext = filepath.Ext(name)
	if ext == name {
		ext = ""
	}
	return ext, strings.TrimSuffix(name, ext)
}

func languageNames(languages []*Language) string {
	return strings.Join(f.Map(languages, (*Language).Name), ", ")
}
