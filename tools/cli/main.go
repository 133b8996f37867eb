package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/internal/app"
	"github.com/multimediallc/copyright-headers/internal/logging"
	"github.com/multimediallc/copyright-headers/internal/report"
)

// errChangesNeeded makes the process exit non-zero after the report has
// already explained why.
var errChangesNeeded = errors.Base("files need changes")

type options struct {
	repo string
}

func rootFlag(o *options) cli.Flag {
	return &cli.StringFlag{
		Name:        "root",
		Aliases:     []string{"r", "repo"},
		Value:       "./",
		Usage:       "Path to local Git repo",
		Destination: &o.repo,
	}
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config-ref",
			Usage: "Git ref to read copyright.toml and the files it names from",
		},
		&cli.StringFlag{
			Name:    "disclaimer",
			Aliases: []string{"d"},
			Usage:   "Disclaimer mode, overriding copyright.toml. Allowed values are: never, always, and config",
		},
		&cli.IntFlag{
			Name:  "year",
			Usage: "Current year, overriding copyright.toml and the clock",
		},
		&cli.IntFlag{
			Name:  "padding",
			Usage: "Spaces between a comment marker and the text, overriding copyright.toml",
		},
		&cli.BoolFlag{
			Name:    "whitespace-surround",
			Aliases: []string{"whitespace_surround"},
			Usage:   "Surround headers and disclaimers with blank lines, overriding copyright.toml",
		},
		&cli.StringFlag{
			Name:    "languages-path",
			Aliases: []string{"languages_path"},
			Usage:   "Language definitions file, relative to the root, overriding copyright.toml",
		},
		&cli.StringFlag{
			Name:    "excludes-path",
			Aliases: []string{"excludes_path"},
			Usage:   "Excludes file, relative to the root, overriding copyright.toml",
		},
		&cli.StringFlag{
			Name:    "disclaimer-path",
			Aliases: []string{"disclaimer_path"},
			Usage:   "Disclaimer template file, relative to the root, overriding copyright.toml",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "GitHub token, enables commit history from the GitHub API",
			EnvVars: []string{"GITHUB_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "github-repo",
			Usage:   "GitHub repository (owner/repo) for commit history",
			EnvVars: []string{"GITHUB_REPOSITORY"},
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   string(report.FormatDefault),
			Usage:   "Output format.  Allowed values are: " + strings.Join(report.AllowedFormats, ", "),
		},
	}
}

func newApp() *cli.App {
	o := &options{}
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "Print version",
	}
	cli.VersionPrinter = func(cCtx *cli.Context) {
		_, _ = fmt.Fprintln(cCtx.App.Writer, cCtx.App.Version)
	}

	return &cli.App{
		Name:        "copyright-cli",
		Usage:       "CLI tool for keeping copyright headers up to date",
		Version:     "v0.1.0.dev",
		Description: "",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print debug logs",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print warnings and errors",
			},
		},
		Before: func(cCtx *cli.Context) error {
			logger, err := logging.New(cCtx.App.ErrWriter, cCtx.Bool("verbose"), cCtx.Bool("quiet"), false)
			if err != nil {
				return err
			}
			cCtx.Context = logger.WithContext(cCtx.Context)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:        "update",
				Aliases:     []string{"u"},
				Usage:       "Insert or update copyright headers",
				UsageText:   "copyright-cli update [options] [target...]",
				Description: "Bring copyright headers, and disclaimers when configured, up to date. Targets are files or directories under the root; the whole root is processed when none are given. Paths may also be piped on stdin.",
				Flags: append(append([]cli.Flag{
					rootFlag(o),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Log the changes as diffs without writing them",
					},
				}, configFlags()...), outputFlags()...),
				Action: func(cCtx *cli.Context) error {
					return process(cCtx, o, false)
				},
			},
			{
				Name:        "check",
				Aliases:     []string{"c"},
				Usage:       "Report files whose copyright header is missing or stale",
				UsageText:   "copyright-cli check [options] [target...]",
				Description: "Like update, but nothing is written. Exits with status 1 when any file needs a change.",
				Flags:       append(append([]cli.Flag{rootFlag(o)}, configFlags()...), outputFlags()...),
				Action: func(cCtx *cli.Context) error {
					return process(cCtx, o, true)
				},
			},
			{
				Name:        "language",
				Aliases:     []string{"l"},
				Usage:       "Print the language of one or more files",
				UsageText:   "copyright-cli language [options] <file1> [file2] [file3]...",
				Description: "Print the comment language resolved for each file, and whether the excludes file skips it.",
				Flags:       append(append([]cli.Flag{rootFlag(o)}, configFlags()...), outputFlags()...),
				Action: func(cCtx *cli.Context) error {
					targets := cCtx.Args().Slice()
					if len(targets) == 0 {
						return errors.New("at least one target file is required")
					}
					format, err := report.ValidateFormat(cCtx.String("format"))
					if err != nil {
						return err
					}
					a, err := newCopyrightApp(cCtx, o, nil, false, false, cCtx.App.ErrWriter)
					if err != nil {
						return err
					}
					return printLanguages(cCtx, a, o.repo, targets, format)
				},
			},
			{
				Name:        "verify",
				Usage:       "Verify the copyright configuration",
				UsageText:   "copyright-cli verify [options]",
				Description: "Load copyright.toml and the languages, excludes and disclaimer files it names, and report every problem found.",
				Flags:       append([]cli.Flag{rootFlag(o)}, configFlags()...),
				Action: func(cCtx *cli.Context) error {
					return verifyConfig(cCtx, o)
				},
			},
		},
	}
}

func main() {
	err := newApp().RunContext(context.Background(), os.Args)
	if errors.Is(err, errChangesNeeded) {
		os.Exit(1)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newCopyrightApp(cCtx *cli.Context, o *options, targets []string, check, dryRun bool, warnings io.Writer) (*app.App, error) {
	if repoStat, err := os.Lstat(o.repo); err != nil || !repoStat.IsDir() {
		return nil, errors.Errorf("root is not a directory: %s", o.repo)
	}
	conf := app.Config{
		RepoDir:        o.repo,
		Targets:        targets,
		Token:          cCtx.String("token"),
		Repo:           cCtx.String("github-repo"),
		ConfigRef:      cCtx.String("config-ref"),
		Check:          check,
		DryRun:         dryRun,
		DisclaimerMode: cCtx.String("disclaimer"),
		CurrentYear:    cCtx.Int("year"),
		LanguagesPath:  cCtx.String("languages-path"),
		ExcludesPath:   cCtx.String("excludes-path"),
		DisclaimerPath: cCtx.String("disclaimer-path"),
		WarningBuffer:  warnings,
	}
	if cCtx.IsSet("padding") {
		padding := cCtx.Int("padding")
		conf.Padding = &padding
	}
	if cCtx.IsSet("whitespace-surround") {
		surround := cCtx.Bool("whitespace-surround")
		conf.WhitespaceSurround = &surround
	}
	return app.New(cCtx.Context, conf)
}

func process(cCtx *cli.Context, o *options, check bool) error {
	format, err := report.ValidateFormat(cCtx.String("format"))
	if err != nil {
		return err
	}
	targets := cCtx.Args().Slice()
	if len(targets) == 0 && isPiped(cCtx.App.Reader) {
		if targets, err = readTargets(cCtx.App.Reader); err != nil {
			return err
		}
		zerolog.Ctx(cCtx.Context).Debug().Int("targets", len(targets)).Msg("Read targets from stdin")
	}

	a, err := newCopyrightApp(cCtx, o, targets, check, cCtx.Bool("dry-run"), cCtx.App.ErrWriter)
	if err != nil {
		return err
	}
	od, err := a.Run(cCtx.Context)
	if err != nil {
		return err
	}
	opts := report.Options{Format: format, Check: check, ShowUnchanged: cCtx.Bool("verbose")}
	if err := report.Write(cCtx.App.Writer, od, opts); err != nil {
		return err
	}
	if !od.Success {
		return errChangesNeeded
	}
	return nil
}

type languageJSON struct {
	Language string `json:"language,omitempty"`
	Excluded bool   `json:"excluded"`
	Error    string `json:"error,omitempty"`
}

func printLanguages(cCtx *cli.Context, a *app.App, repo string, targets []string, format report.Format) error {
	absRoot, err := filepath.Abs(repo)
	if err != nil {
		return errors.WithStack(err)
	}
	results := make(map[string]languageJSON, len(targets))
	for _, target := range targets {
		entry := languageJSON{}
		rel := target
		if abs, err := filepath.Abs(target); err == nil {
			if r, err := filepath.Rel(absRoot, abs); err == nil && !strings.HasPrefix(r, "..") {
				rel = filepath.ToSlash(r)
			}
		}
		lang, err := a.Languages().Lookup(rel)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Language = lang.Name()
		}
		entry.Excluded = !a.Excludes().Decide(rel, a.DisclaimerMode()).Include
		results[target] = entry
	}

	if format == report.FormatJSON {
		jsonString, err := json.Marshal(results)
		if err != nil {
			return errors.WithStack(err)
		}
		_, _ = fmt.Fprintln(cCtx.App.Writer, string(jsonString))
		return nil
	}

	sep := "\n"
	if format == report.FormatOneLine {
		sep = ", "
	}
	lines := make([]string, 0, len(targets))
	for _, target := range targets {
		lines = append(lines, fmt.Sprintf("%s: %s", target, describeLanguage(results[target])))
	}
	_, _ = fmt.Fprintln(cCtx.App.Writer, strings.Join(lines, sep))
	return nil
}

func describeLanguage(entry languageJSON) string {
	text := entry.Language
	if entry.Error != "" {
		text = "unknown (" + entry.Error + ")"
	}
	if entry.Excluded {
		text += " (excluded)"
	}
	return text
}

func verifyConfig(cCtx *cli.Context, o *options) error {
	warningBuffer := bytes.NewBuffer([]byte{})
	_, err := newCopyrightApp(cCtx, o, nil, true, false, warningBuffer)
	if err != nil {
		return err
	}
	if warningBuffer.Len() > 0 {
		return errors.Errorf("\n%s", strings.ReplaceAll(warningBuffer.String(), "WARNING: ", ""))
	}
	_, _ = fmt.Fprintln(cCtx.App.Writer, "Configuration is valid")
	return nil
}
