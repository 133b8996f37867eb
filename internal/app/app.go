package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/internal/config"
	"github.com/multimediallc/copyright-headers/internal/git"
	gh "github.com/multimediallc/copyright-headers/internal/github"
	"github.com/multimediallc/copyright-headers/internal/history"
	"github.com/multimediallc/copyright-headers/internal/walk"
	"github.com/multimediallc/copyright-headers/pkg/copyright"
	"github.com/multimediallc/copyright-headers/pkg/disclaimer"
	"github.com/multimediallc/copyright-headers/pkg/excludes"
	"github.com/multimediallc/copyright-headers/pkg/header"
	"github.com/multimediallc/copyright-headers/pkg/language"
	"github.com/multimediallc/copyright-headers/pkg/textedit"
)

// DefaultExcludesFile is read from the repository root when the config
// names no excludes file.
const DefaultExcludesFile = ".copyright-excludes"

// OutputData holds the data that will be written to GITHUB_OUTPUT
type OutputData struct {
	Updated   []string `json:"updated"`
	Unchanged []string `json:"unchanged"`
	Failed    []string `json:"failed"`
	Success   bool     `json:"success"`
	Message   string   `json:"message"`

	Results []copyright.Result `json:"-"`
}

func newOutputData(results []copyright.Result, check bool) *OutputData {
	od := &OutputData{
		Updated:   []string{},
		Unchanged: []string{},
		Failed:    []string{},
		Results:   results,
	}
	for _, r := range results {
		switch {
		case r.Failed():
			od.Failed = append(od.Failed, r.Path)
		case r.Changed:
			od.Updated = append(od.Updated, r.Path)
		default:
			od.Unchanged = append(od.Unchanged, r.Path)
		}
	}

	switch {
	case len(od.Failed) > 0:
		od.Message = "Some files could not be processed"
	case check && len(od.Updated) > 0:
		od.Message = "Some files need copyright updates"
	default:
		od.Success = true
		od.Message = "Copyright headers are up to date"
	}
	return od
}

// Config holds the application configuration
type Config struct {
	RepoDir string
	// Targets are files or directories to process. Empty means RepoDir.
	Targets []string
	// Token and Repo enable commit history from the GitHub API.
	Token string
	Repo  string
	// ConfigRef reads copyright.toml and the files it names from a git ref
	// instead of the worktree.
	ConfigRef string
	// Check reports files that need changes without writing them.
	Check bool
	// DryRun logs the changes as unified diffs without writing them.
	DryRun bool
	// The fields below override copyright.toml when set. Paths are
	// relative to RepoDir.
	DisclaimerMode     string
	CurrentYear        int
	Padding            *int
	WhitespaceSurround *bool
	LanguagesPath      string
	ExcludesPath       string
	DisclaimerPath     string

	WarningBuffer io.Writer
	// History replaces the git and GitHub history providers.
	History history.Provider
}

// App represents the application with its dependencies
type App struct {
	Conf      *config.Config
	config    *Config
	mode      excludes.DisclaimerMode
	languages *language.Table
	excludes  *excludes.Rules
	engine    *copyright.Engine
}

// New reads the configuration and builds the engines once for the whole run.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.WarningBuffer == nil {
		cfg.WarningBuffer = io.Discard
	}
	log := zerolog.Ctx(ctx)

	var reader config.FileReader = config.FilesystemReader{}
	if cfg.ConfigRef != "" {
		log.Debug().Str("ref", cfg.ConfigRef).Msg("Reading configuration from git ref")
		reader = git.NewGitRefFileReader(cfg.ConfigRef, cfg.RepoDir)
	}

	conf, err := config.ReadConfig(cfg.RepoDir, reader)
	if err != nil {
		return nil, err
	}
	if cfg.DisclaimerMode != "" {
		conf.DisclaimerMode = cfg.DisclaimerMode
	}
	if cfg.CurrentYear != 0 {
		conf.CurrentYear = cfg.CurrentYear
	}
	if cfg.Padding != nil {
		conf.Padding = cfg.Padding
	}
	if cfg.WhitespaceSurround != nil {
		conf.WhitespaceSurround = *cfg.WhitespaceSurround
	}
	if cfg.LanguagesPath != "" {
		conf.LanguagesPath = cfg.LanguagesPath
	}
	if cfg.ExcludesPath != "" {
		conf.ExcludesPath = cfg.ExcludesPath
	}
	if cfg.DisclaimerPath != "" {
		conf.DisclaimerPath = cfg.DisclaimerPath
	}
	if conf.CurrentYear == 0 {
		conf.CurrentYear = time.Now().Year()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	mode, err := config.ParseDisclaimerMode(conf.DisclaimerMode)
	if err != nil {
		return nil, err
	}

	a := &App{
		Conf:   conf,
		config: &cfg,
		mode:   mode,
	}
	if a.languages, err = a.loadLanguages(reader); err != nil {
		return nil, err
	}
	if a.excludes, err = a.loadExcludes(reader); err != nil {
		return nil, err
	}
	log.Debug().
		Int("languages", len(a.languages.Languages())).
		Int("excludes", a.excludes.Len()).
		Str("disclaimer_mode", string(mode)).
		Msg("Loaded configuration")
	if a.engine, err = a.buildEngine(ctx, reader); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) Languages() *language.Table {
	return a.languages
}

func (a *App) Excludes() *excludes.Rules {
	return a.excludes
}

func (a *App) DisclaimerMode() excludes.DisclaimerMode {
	return a.mode
}

func (a *App) loadLanguages(reader config.FileReader) (*language.Table, error) {
	path := config.Resolve(a.config.RepoDir, a.Conf.LanguagesPath)
	if path == "" {
		return language.Default()
	}
	data, err := reader.ReadFile(path)
	if err != nil {
		return nil, errors.WithDetails(errors.Wrap(err, "reading languages file"), "path", path)
	}
	table, err := language.Load(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithDetails(err, "path", path)
	}
	return table, nil
}

func (a *App) loadExcludes(reader config.FileReader) (*excludes.Rules, error) {
	path := config.Resolve(a.config.RepoDir, a.Conf.ExcludesPath)
	if path == "" {
		path = filepath.Join(a.config.RepoDir, DefaultExcludesFile)
		if !reader.PathExists(path) {
			return excludes.Default(), nil
		}
	}
	data, err := reader.ReadFile(path)
	if err != nil {
		return nil, errors.WithDetails(errors.Wrap(err, "reading excludes file"), "path", path)
	}
	rules, err := excludes.Parse(bytes.NewReader(data), a.config.WarningBuffer)
	if err != nil {
		return nil, errors.WithDetails(err, "path", path)
	}
	return rules, nil
}

func (a *App) loadTemplate(reader config.FileReader) ([]string, error) {
	path := config.Resolve(a.config.RepoDir, a.Conf.DisclaimerPath)
	if path == "" {
		return disclaimer.DefaultTemplate(), nil
	}
	data, err := reader.ReadFile(path)
	if err != nil {
		return nil, errors.WithDetails(errors.Wrap(err, "reading disclaimer file"), "path", path)
	}
	template, err := disclaimer.ReadTemplate(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithDetails(err, "path", path)
	}
	return template, nil
}

func (a *App) buildEngine(ctx context.Context, reader config.FileReader) (*copyright.Engine, error) {
	headers, err := header.New(a.Conf.Policy())
	if err != nil {
		return nil, err
	}

	var disclaimers *disclaimer.Engine
	if a.mode != excludes.DisclaimerNever {
		template, err := a.loadTemplate(reader)
		if err != nil {
			return nil, err
		}
		if disclaimers, err = disclaimer.New(a.Conf.HeuristicSettings(), template); err != nil {
			return nil, err
		}
	}

	settings := copyright.Settings{
		CurrentYear:        a.Conf.CurrentYear,
		Padding:            *a.Conf.Padding,
		WhitespaceSurround: a.Conf.WhitespaceSurround,
		Insert:             a.Conf.InsertRules(),
	}
	return copyright.New(settings, headers, disclaimers, a.history(ctx))
}

// history prefers the GitHub API when it is configured, since CI checkouts
// are often shallow and local git log would report the clone date.
func (a *App) history(ctx context.Context) history.Provider {
	if a.config.History != nil {
		return history.Floor(a.config.History, a.Conf.FirstYear)
	}
	providers := history.Chain{}
	if a.config.Token != "" && a.config.Repo != "" {
		owner, repo, err := gh.ParseRepository(a.config.Repo)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("Ignoring GitHub history")
		} else {
			providers = append(providers, gh.NewHistory(owner, repo, a.config.Token))
		}
	}
	providers = append(providers, git.NewHistory(a.config.RepoDir))
	return history.Floor(providers, a.Conf.FirstYear)
}

// Run processes every candidate file one at a time. A failing file never
// stops the run; it is reported in the output instead.
func (a *App) Run(ctx context.Context) (*OutputData, error) {
	log := zerolog.Ctx(ctx)

	candidates, err := walk.Files(ctx, a.config.RepoDir, a.config.Targets, walk.Options{
		Languages: a.languages,
		Excludes:  a.excludes,
		Mode:      a.mode,
		Skip:      []string{config.FileName},
	})
	if err != nil {
		return &OutputData{}, err
	}
	log.Debug().Int("files", len(candidates)).Msg("Collected files")

	results := make([]copyright.Result, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return newOutputData(results, a.config.Check), errors.WithStack(err)
		}
		results = append(results, a.processFile(ctx, c))
	}

	od := newOutputData(results, a.config.Check)
	log.Info().
		Int("updated", len(od.Updated)).
		Int("unchanged", len(od.Unchanged)).
		Int("failed", len(od.Failed)).
		Msg(od.Message)
	return od, nil
}

func (a *App) processFile(ctx context.Context, c walk.Candidate) copyright.Result {
	log := zerolog.Ctx(ctx).With().Str("path", c.RelPath).Logger()

	if c.Err != nil {
		return copyright.Result{Path: c.RelPath, Err: c.Err}
	}
	content, err := os.ReadFile(c.Path)
	if err != nil {
		return copyright.Result{Path: c.RelPath, Language: c.Language.Name(), Err: errors.WithDetails(errors.Wrap(err, "reading file"), "path", c.RelPath)}
	}
	lines := textedit.SplitLines(string(content))

	result := a.engine.Process(ctx, c.RelPath, lines, c.Language, c.Disclaimer)
	if !result.Changed || a.config.Check {
		return result
	}

	if a.config.DryRun {
		diff, err := git.UnifiedDiff(c.RelPath, lines, result.Lines)
		if err != nil {
			log.Warn().Err(err).Msg("Could not render diff")
			return result
		}
		log.Info().Msg("Would update\n" + diff)
		return result
	}

	if err := writeFile(c.Path, result.Text()); err != nil {
		result.Err = errors.WithDetails(err, "path", c.RelPath)
		result.Lines = lines
		result.Changed = false
		return result
	}
	log.Debug().Stringer("header", result.Header).Stringer("disclaimer", result.Disclaimer).Msg("Updated")
	return result
}

// writeFile replaces the content of path, keeping its permissions.
func writeFile(path, content string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "reading file mode")
	}
	if err := os.WriteFile(path, []byte(content), stat.Mode().Perm()); err != nil {
		return errors.Wrap(err, "writing file")
	}
	return nil
}
