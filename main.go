// The GitHub Action entrypoint. Inputs arrive as INPUT_* environment
// variables, which supply the flag defaults.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/internal/app"
	"github.com/multimediallc/copyright-headers/internal/logging"
	"github.com/multimediallc/copyright-headers/internal/report"
)

func ignoreError[V any, E error](res V, _ E) V {
	return res
}

type actionFlags struct {
	token          string
	repoDir        string
	repo           string
	configRef      string
	disclaimerMode string
	format         string
	check          bool
	dryRun         bool
	verbose        bool
	quiet          bool
	targets        []string
}

func parseFlags(args []string, getEnv func(key, fallback string) string) (*actionFlags, error) {
	fs := flag.NewFlagSet("copyright-headers", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	af := &actionFlags{}
	fs.StringVar(&af.token, "token", getEnv("INPUT_GITHUB-TOKEN", ""), "GitHub authentication token, enables history from the GitHub API")
	fs.StringVar(&af.repoDir, "dir", getEnv("GITHUB_WORKSPACE", "."), "Path to local Git repo")
	fs.StringVar(&af.repo, "repo", getEnv("INPUT_REPOSITORY", getEnv("GITHUB_REPOSITORY", "")), "GitHub repo name (owner/repo)")
	fs.StringVar(&af.configRef, "config-ref", getEnv("INPUT_CONFIG-REF", ""), "Git ref to read copyright.toml from")
	fs.StringVar(&af.disclaimerMode, "disclaimer", getEnv("INPUT_DISCLAIMER-MODE", ""), "Disclaimer mode: never, always or config")
	fs.StringVar(&af.format, "format", getEnv("INPUT_FORMAT", string(report.FormatDefault)), "Output format: default, one-line or json")
	fs.BoolVar(&af.check, "check", ignoreError(strconv.ParseBool(getEnv("INPUT_CHECK", "0"))), "Report files needing changes without writing them")
	fs.BoolVar(&af.dryRun, "dry-run", ignoreError(strconv.ParseBool(getEnv("INPUT_DRY-RUN", "0"))), "Log changes as diffs without writing them")
	fs.BoolVar(&af.verbose, "v", ignoreError(strconv.ParseBool(getEnv("INPUT_VERBOSE", "0"))), "Verbose output")
	fs.BoolVar(&af.quiet, "q", ignoreError(strconv.ParseBool(getEnv("INPUT_QUIET", "0"))), "Only print warnings and errors")

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parsing flags")
	}
	af.targets = fs.Args()
	if len(af.targets) == 0 {
		af.targets = strings.Fields(getEnv("INPUT_TARGETS", ""))
	}
	return af, nil
}

// writeOutput appends the run summary to the file GitHub Actions reads step
// outputs from.
func writeOutput(path string, od *app.OutputData) error {
	data, err := json.Marshal(od)
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithDetails(errors.Wrap(err, "opening output file"), "path", path)
	}
	defer func() {
		_ = file.Close()
	}()
	if _, err := fmt.Fprintf(file, "success=%t\nresult=%s\n", od.Success, data); err != nil {
		return errors.WithDetails(errors.Wrap(err, "writing output file"), "path", path)
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getEnv func(key, fallback string) string) int {
	af, err := parseFlags(args, getEnv)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	format, err := report.ValidateFormat(af.format)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger, err := logging.New(stderr, af.verbose, af.quiet, false)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	ctx = logger.WithContext(ctx)

	a, err := app.New(ctx, app.Config{
		RepoDir:        af.repoDir,
		Targets:        af.targets,
		Token:          af.token,
		Repo:           af.repo,
		ConfigRef:      af.configRef,
		Check:          af.check,
		DryRun:         af.dryRun,
		DisclaimerMode: af.disclaimerMode,
		WarningBuffer:  stderr,
	})
	if err != nil {
		logger.Error().Msgf("%+v", err)
		return 1
	}

	od, err := a.Run(ctx)
	if err != nil {
		logger.Error().Msgf("%+v", err)
		return 1
	}
	if err := report.Write(stdout, od, report.Options{Format: format, Check: af.check, ShowUnchanged: af.verbose}); err != nil {
		logger.Error().Err(err).Msg("Writing report")
	}
	if path := getEnv("GITHUB_OUTPUT", ""); path != "" {
		if err := writeOutput(path, od); err != nil {
			logger.Error().Err(err).Msg("Writing GitHub output")
		}
	}

	if !od.Success {
		return 1
	}
	return 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, getEnv))
}
