// Package logging builds the console logger shared by the entrypoints.
package logging

import (
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var ErrConflictingLevels = errors.Base("verbose and quiet cannot be used together")

// Level maps the verbosity flags to a log level.
func Level(verbose, quiet bool) (zerolog.Level, error) {
	switch {
	case verbose && quiet:
		return zerolog.NoLevel, errors.WithStack(ErrConflictingLevels)
	case verbose:
		return zerolog.DebugLevel, nil
	case quiet:
		return zerolog.WarnLevel, nil
	default:
		return zerolog.InfoLevel, nil
	}
}

// New returns a human-readable logger writing to w.
func New(w io.Writer, verbose, quiet, noColor bool) (zerolog.Logger, error) {
	level, err := Level(verbose, quiet)
	if err != nil {
		return zerolog.Nop(), err
	}
	console := zerolog.ConsoleWriter{Out: w, NoColor: noColor, PartsExclude: []string{zerolog.TimestampFieldName}}
	return zerolog.New(console).Level(level).With().Timestamp().Logger(), nil
}
