// Package config reads copyright.toml, the per-repository tool settings.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/pkg/disclaimer"
	"github.com/multimediallc/copyright-headers/pkg/excludes"
	"github.com/multimediallc/copyright-headers/pkg/header"
)

const FileName = "copyright.toml"

var ErrInvalidConfig = errors.Base("invalid configuration")

func ParseDisclaimerMode(s string) (excludes.DisclaimerMode, error) {
	switch m := excludes.DisclaimerMode(strings.ToLower(strings.TrimSpace(s))); m {
	case excludes.DisclaimerNever, excludes.DisclaimerAlways, excludes.DisclaimerConfig:
		return m, nil
	case "":
		return excludes.DisclaimerNever, nil
	default:
		return "", errors.WithDetails(ErrInvalidConfig, "disclaimer_mode", s)
	}
}

type Config struct {
	TransitionYear     int        `toml:"transition_year"`
	FirstYear          int        `toml:"first_year"`
	CurrentYear        int        `toml:"current_year"`
	Owners             *Owners    `toml:"owners"`
	Padding            *int       `toml:"padding"`
	WhitespaceSurround bool       `toml:"whitespace_surround"`
	DisclaimerMode     string     `toml:"disclaimer_mode"`
	LanguagesPath      string     `toml:"languages_path"`
	ExcludesPath       string     `toml:"excludes_path"`
	DisclaimerPath     string     `toml:"disclaimer_path"`
	Disclaimer         *Heuristic `toml:"disclaimer"`
	Insertion          *Insertion `toml:"insertion"`
}

type Owners struct {
	Before     string   `toml:"before"`
	After      string   `toml:"after"`
	Recognized []string `toml:"recognized"`
}

// Heuristic overrides individual fields of the default disclaimer heuristic.
type Heuristic struct {
	MinLines          *int     `toml:"min_lines"`
	Threshold         *float64 `toml:"threshold"`
	MustHave          []string `toml:"must_have"`
	Keywords          []string `toml:"keywords"`
	KeyPhrases        []string `toml:"key_phrases"`
	KeywordWeight     *float64 `toml:"keyword_weight"`
	KeyPhraseWeight   *float64 `toml:"key_phrase_weight"`
	StdDevWeight      *float64 `toml:"std_dev_weight"`
	MinMeasuredLength *int     `toml:"min_measured_length"`
}

type Insertion struct {
	XMLExtensions  []string `toml:"xml_extensions"`
	YAMLExtensions []string `toml:"yaml_extensions"`
}

// FileReader abstracts where copyright.toml comes from, so it can be read
// from a git ref instead of the worktree.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
	PathExists(path string) bool
}

// FilesystemReader reads from the working tree.
type FilesystemReader struct{}

func (FilesystemReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (FilesystemReader) PathExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

func Default() *Config {
	padding := 1
	return &Config{
		TransitionYear: 2021,
		FirstYear:      2015,
		Owners: &Owners{
			Before:     "XYZ",
			After:      "Advanced ABC",
			Recognized: []string{"ABC"},
		},
		Padding:        &padding,
		DisclaimerMode: string(excludes.DisclaimerNever),
		Disclaimer:     &Heuristic{},
		Insertion:      &Insertion{},
	}
}

// ReadConfig reads copyright.toml from dir. A missing file yields the
// defaults, and tables missing from the file keep their defaults. reader may
// be nil to read from the filesystem.
func ReadConfig(dir string, reader FileReader) (*Config, error) {
	if reader == nil {
		reader = FilesystemReader{}
	}
	defaultConfig := Default()

	fileName := filepath.Join(dir, FileName)
	if !reader.PathExists(fileName) {
		return defaultConfig, nil
	}
	file, err := reader.ReadFile(fileName)
	if err != nil {
		return defaultConfig, errors.WithDetails(errors.Wrap(err, "reading config"), "path", fileName)
	}

	config := Default()
	if err := toml.Unmarshal(file, config); err != nil {
		return defaultConfig, errors.WithDetails(errors.Wrap(err, "parsing config"), "path", fileName)
	}
	if config.Owners == nil {
		config.Owners = defaultConfig.Owners
	}
	if config.Padding == nil {
		config.Padding = defaultConfig.Padding
	}
	if config.Disclaimer == nil {
		config.Disclaimer = defaultConfig.Disclaimer
	}
	if config.Insertion == nil {
		config.Insertion = defaultConfig.Insertion
	}
	if err := config.Validate(); err != nil {
		return defaultConfig, err
	}
	return config, nil
}

// Validate checks the values a TOML decoder cannot.
func (c *Config) Validate() error {
	if c.Padding != nil && *c.Padding < 0 {
		return errors.WithDetails(ErrInvalidConfig, "padding", *c.Padding)
	}
	if c.CurrentYear < 0 {
		return errors.WithDetails(ErrInvalidConfig, "current_year", c.CurrentYear)
	}
	if c.FirstYear > 0 && c.CurrentYear > 0 && c.FirstYear > c.CurrentYear {
		return errors.WithDetails(ErrInvalidConfig, "first_year", c.FirstYear, "current_year", c.CurrentYear)
	}
	if _, err := ParseDisclaimerMode(c.DisclaimerMode); err != nil {
		return err
	}
	return nil
}

// Resolve turns a configured path into one rooted at dir. Empty stays empty.
func Resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (c *Config) Policy() header.Policy {
	return header.Policy{
		TransitionYear: c.TransitionYear,
		Before:         c.Owners.Before,
		After:          c.Owners.After,
		Recognized:     c.Owners.Recognized,
	}
}

// HeuristicSettings applies the [disclaimer] overrides to the default heuristic.
func (c *Config) HeuristicSettings() disclaimer.Heuristic {
	h := disclaimer.DefaultHeuristic()
	o := c.Disclaimer
	if o == nil {
		return h
	}
	if o.MinLines != nil {
		h.MinLines = *o.MinLines
	}
	if o.Threshold != nil {
		h.Threshold = *o.Threshold
	}
	if o.MustHave != nil {
		h.MustHave = o.MustHave
	}
	if o.Keywords != nil {
		h.Keywords = o.Keywords
	}
	if o.KeyPhrases != nil {
		h.KeyPhrases = o.KeyPhrases
	}
	if o.KeywordWeight != nil {
		h.KeywordWeight = *o.KeywordWeight
	}
	if o.KeyPhraseWeight != nil {
		h.KeyPhraseWeight = *o.KeyPhraseWeight
	}
	if o.StdDevWeight != nil {
		h.StdDevWeight = *o.StdDevWeight
	}
	if o.MinMeasuredLength != nil {
		h.MinMeasuredLength = *o.MinMeasuredLength
	}
	return h
}

// InsertRules applies the [insertion] overrides to the default rules.
func (c *Config) InsertRules() header.InsertRules {
	rules := header.DefaultInsertRules()
	if c.Insertion == nil {
		return rules
	}
	if c.Insertion.XMLExtensions != nil {
		rules.XMLExtensions = c.Insertion.XMLExtensions
	}
	if c.Insertion.YAMLExtensions != nil {
		rules.YAMLExtensions = c.Insertion.YAMLExtensions
	}
	return rules
}
