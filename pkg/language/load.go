package language

import (
	"bytes"
	_ "embed"
	"io"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default_languages.yml
var defaultLanguages []byte

type languageFile struct {
	Languages []Definition `yaml:"languages"`
}

// Default returns the table built from the embedded language file.
func Default() (*Table, error) {
	return Load(bytes.NewReader(defaultLanguages))
}

// Load decodes a YAML language file with a top-level "languages" list.
// Unknown fields are rejected.
func Load(r io.Reader) (*Table, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var lf languageFile
	if err := decoder.Decode(&lf); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.WithDetails(ErrInvalidLanguage, "reason", err.Error())
	}

	languages := make([]*Language, 0, len(lf.Languages))
	for _, def := range lf.Languages {
		l, err := New(def)
		if err != nil {
			return nil, err
		}
		languages = append(languages, l)
	}
	return NewTable(languages...)
}
