// Package history finds the year a file was first committed.
package history

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var ErrNoHistory = errors.Base("no history found for file")

// Provider returns the earliest year in the history of path, relative to
// the repository root.
type Provider interface {
	CreationYear(ctx context.Context, path string) (int, error)
}

// Chain asks each provider in turn and returns the first answer.
// When all fail, the last error is returned.
type Chain []Provider

func (c Chain) CreationYear(ctx context.Context, path string) (int, error) {
	var err error = errors.WithDetails(ErrNoHistory, "path", path)
	for _, p := range c {
		var year int
		year, err = p.CreationYear(ctx, path)
		if err == nil {
			return year, nil
		}
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("History lookup failed")
	}
	return 0, err
}

type floored struct {
	provider Provider
	first    int
}

// Floor raises years earlier than first to first.
func Floor(p Provider, first int) Provider {
	return floored{provider: p, first: first}
}

func (f floored) CreationYear(ctx context.Context, path string) (int, error) {
	year, err := f.provider.CreationYear(ctx, path)
	if err != nil {
		return 0, err
	}
	return max(year, f.first), nil
}
