// Package report prints the outcome of a run for people and for scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/internal/app"
	"github.com/multimediallc/copyright-headers/pkg/copyright"
	f "github.com/multimediallc/copyright-headers/pkg/functional"
)

type Format string

const (
	FormatDefault Format = "default"
	FormatOneLine Format = "one-line"
	FormatJSON    Format = "json"
)

var AllowedFormats = []string{string(FormatDefault), string(FormatOneLine), string(FormatJSON)}

func ValidateFormat(format string) (Format, error) {
	if !slices.Contains(AllowedFormats, format) {
		return "", errors.Errorf("invalid format %s. Must be one of %s", format, strings.Join(AllowedFormats, ", "))
	}
	return Format(format), nil
}

type Options struct {
	Format Format
	// Check words changed files as needing an update.
	Check bool
	// ShowUnchanged lists files that needed nothing.
	ShowUnchanged bool
}

// Write prints od to w in the requested format.
func Write(w io.Writer, od *app.OutputData, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, od)
	case FormatOneLine:
		return writeOneLine(w, od, opts)
	default:
		return writeDefault(w, od, opts)
	}
}

type fileJSON struct {
	Path       string           `json:"path"`
	Language   string           `json:"language,omitempty"`
	Header     copyright.Action `json:"header"`
	Disclaimer copyright.Action `json:"disclaimer"`
	Changed    bool             `json:"changed"`
	Error      string           `json:"error,omitempty"`
}

func writeJSON(w io.Writer, od *app.OutputData) error {
	out := struct {
		*app.OutputData
		Files []fileJSON `json:"files"`
	}{
		OutputData: od,
		Files: f.Map(od.Results, func(r copyright.Result) fileJSON {
			file := fileJSON{
				Path:       r.Path,
				Language:   r.Language,
				Header:     r.Header,
				Disclaimer: r.Disclaimer,
				Changed:    r.Changed,
			}
			if r.Err != nil {
				file.Error = r.Err.Error()
			}
			return file
		}),
	}
	encoder := json.NewEncoder(w)
	if err := encoder.Encode(out); err != nil {
		return errors.Wrap(err, "encoding report")
	}
	return nil
}

func writeOneLine(w io.Writer, od *app.OutputData, opts Options) error {
	updated := "updated"
	if opts.Check {
		updated = "needs update"
	}
	parts := []string{}
	if len(od.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s", updated, strings.Join(od.Updated, ", ")))
	}
	if len(od.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("failed: %s", strings.Join(od.Failed, ", ")))
	}
	if len(parts) == 0 {
		parts = append(parts, od.Message)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, "; "))
	return err
}

func writeDefault(w io.Writer, od *app.OutputData, opts Options) error {
	width := 0
	for _, r := range od.Results {
		width = max(width, len(r.Path))
	}

	failures := []copyright.Result{}
	for _, r := range od.Results {
		var line string
		switch {
		case r.Failed():
			failures = append(failures, r)
			line = formatLine(color.FgRed, '✗', r.Path, width, "failed")
		case r.Changed && opts.Check:
			line = formatLine(color.FgYellow, '⟳', r.Path, width, "needs update"+describe(r))
		case r.Changed:
			line = formatLine(color.FgGreen, '✓', r.Path, width, "updated"+describe(r))
		case opts.ShowUnchanged:
			line = formatLine(color.Faint, '•', r.Path, width, "unchanged")
		default:
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d updated, %d unchanged, %d failed", len(od.Updated), len(od.Unchanged), len(od.Failed))
	if opts.Check {
		summary = fmt.Sprintf("%d need update, %d unchanged, %d failed", len(od.Updated), len(od.Unchanged), len(od.Failed))
	}
	statusColor := color.FgGreen
	if !od.Success {
		statusColor = color.FgRed
	}
	if _, err := fmt.Fprintf(w, "\n%s %s\n", color.New(color.Bold).Sprint(summary), color.New(statusColor).Sprint(od.Message)); err != nil {
		return err
	}

	if len(failures) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", color.New(color.Bold, color.FgRed).Sprint("Failures:")); err != nil {
		return err
	}
	for _, r := range failures {
		if _, err := fmt.Fprintf(w, "\n%s\n%+v\n", color.New(color.FgRed).Sprint(r.Path), r.Err); err != nil {
			return err
		}
	}
	return nil
}

func formatLine(c color.Attribute, symbol rune, path string, width int, status string) string {
	return fmt.Sprintf("%s %-*s %s", color.New(c).Sprint(string(symbol)), width, path, status)
}

// describe names what changed, e.g. " (header inserted, disclaimer updated)".
func describe(r copyright.Result) string {
	parts := []string{}
	if r.Header == copyright.Inserted || r.Header == copyright.Updated {
		parts = append(parts, "header "+r.Header.String())
	}
	if r.Disclaimer == copyright.Inserted || r.Disclaimer == copyright.Updated {
		parts = append(parts, "disclaimer "+r.Disclaimer.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
