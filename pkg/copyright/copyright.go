// Package copyright applies the header and disclaimer engines to one file.
package copyright

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/pkg/disclaimer"
	"github.com/multimediallc/copyright-headers/pkg/header"
	"github.com/multimediallc/copyright-headers/pkg/language"
	"github.com/multimediallc/copyright-headers/pkg/textedit"
)

var ErrInvalidSettings = errors.Base("invalid settings")

// History returns the year a file was created, for files without a header.
type History interface {
	CreationYear(ctx context.Context, path string) (int, error)
}

// Settings are the per-run rendering options.
type Settings struct {
	CurrentYear        int
	Padding            int
	WhitespaceSurround bool
	Insert             header.InsertRules
}

// Engine processes files with fixed settings. It holds no mutable state and
// is safe to share.
type Engine struct {
	settings    Settings
	headers     *header.Engine
	disclaimers *disclaimer.Engine
	history     History
}

// New builds an Engine. disclaimers may be nil when no file asks for one.
func New(settings Settings, headers *header.Engine, disclaimers *disclaimer.Engine, history History) (*Engine, error) {
	if settings.CurrentYear <= 0 {
		return nil, errors.WithDetails(ErrInvalidSettings, "current_year", settings.CurrentYear)
	}
	if settings.Padding < 0 {
		return nil, errors.WithDetails(ErrInvalidSettings, "padding", settings.Padding)
	}
	if headers == nil || history == nil {
		return nil, errors.WithDetails(ErrInvalidSettings, "reason", "header engine and history are required")
	}
	return &Engine{
		settings:    settings,
		headers:     headers,
		disclaimers: disclaimers,
		history:     history,
	}, nil
}

// Process brings the header, and the disclaimer when asked, of one file up
// to date. The input lines are never modified. Any failure, panics
// included, is reported in Result.Err with the original lines kept.
func (e *Engine) Process(ctx context.Context, path string, lines []string, lang *language.Language, withDisclaimer bool) (result Result) {
	result = Result{Path: path, Language: lang.Name(), Lines: lines}
	log := zerolog.Ctx(ctx).With().Str("path", path).Str("language", lang.Name()).Logger()

	defer func() {
		if r := recover(); r != nil {
			result.Lines = lines
			result.Changed = false
			result.Err = errors.WithDetails(errors.Errorf("panic: %v", r), "path", path)
		}
	}()

	opts := language.CommentOptions{
		Padding: e.settings.Padding,
		Newline: textedit.Newline(lines),
	}

	out, headerAction, err := e.processHeader(ctx, log, path, lines, lang, opts)
	if err != nil {
		result.Err = errors.WithDetails(err, "path", path)
		return result
	}
	result.Header = headerAction

	if withDisclaimer {
		out, result.Disclaimer, err = e.processDisclaimer(log, out, lang, opts)
		if err != nil {
			result.Header = Skipped
			result.Err = errors.WithDetails(err, "path", path)
			return result
		}
	}

	result.Lines = out
	result.Changed = !textedit.Equal(lines, out)
	return result
}

func (e *Engine) processHeader(
	ctx context.Context, log zerolog.Logger, path string, lines []string, lang *language.Language, opts language.CommentOptions,
) ([]string, Action, error) {
	found, ok, err := e.headers.Locate(lines, lang)
	if err != nil {
		return nil, Skipped, err
	}

	var out []string
	var span textedit.Span
	action := Inserted
	if !ok {
		log.Debug().Msg("Header not found, adding new one")
		year, err := e.history.CreationYear(ctx, path)
		if err != nil {
			return nil, Skipped, err
		}
		out, span, err = e.headers.Insert(lines, lang, year, e.settings.CurrentYear, e.settings.Insert, opts)
		if err != nil {
			return nil, Skipped, err
		}
	} else {
		log.Debug().Int("start", found.Start+1).Int("end", found.End+1).Bool("multiline", found.Multiline).Msg("Header found")
		out, span, err = e.headers.Update(lines, lang, found, e.settings.CurrentYear, opts)
		if err != nil {
			return nil, Skipped, err
		}
		action = Updated
	}

	if e.settings.WhitespaceSurround {
		out, _ = textedit.Surround(out, span, opts.Newline)
	}
	if action == Updated && textedit.Equal(lines, out) {
		action = Unchanged
	}
	log.Debug().Stringer("action", action).Msg("Header processed")
	return out, action, nil
}

func (e *Engine) processDisclaimer(log zerolog.Logger, lines []string, lang *language.Language, opts language.CommentOptions) ([]string, Action, error) {
	if e.disclaimers == nil {
		return nil, Skipped, errors.New("disclaimer requested but no disclaimer template is loaded")
	}

	var hdr *header.Span
	found, ok, err := e.headers.Locate(lines, lang)
	if err != nil {
		return nil, Skipped, err
	}
	if ok {
		hdr = &found
	}

	var out []string
	var span textedit.Span
	action := Inserted
	embedded := false
	if existing, ok := e.disclaimers.Locate(lines, lang, hdr); ok {
		log.Debug().Int("start", existing.Start+1).Int("end", existing.End+1).Bool("embedded", existing.Embedded).Msg("Disclaimer found")
		out, span = e.disclaimers.Update(lines, lang, existing, opts)
		action = Updated
		embedded = existing.Embedded
	} else {
		log.Debug().Msg("Disclaimer not found, adding new one")
		out, span, err = e.disclaimers.Insert(lines, lang, hdr, opts)
		if err != nil {
			return nil, Skipped, err
		}
	}

	// An embedded disclaimer shares its comment with the header.
	if e.settings.WhitespaceSurround && !embedded {
		out, _ = textedit.Surround(out, span, opts.Newline)
	}
	if action == Updated && textedit.Equal(lines, out) {
		action = Unchanged
	}
	log.Debug().Stringer("action", action).Msg("Disclaimer processed")
	return out, action, nil
}
