package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLevel(t *testing.T) {
	tt := []struct {
		verbose, quiet bool
		want           zerolog.Level
	}{
		{false, false, zerolog.InfoLevel},
		{true, false, zerolog.DebugLevel},
		{false, true, zerolog.WarnLevel},
	}
	for _, tc := range tt {
		got, err := Level(tc.verbose, tc.quiet)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := Level(true, true)
	assert.True(t, errors.Is(err, ErrConflictingLevels))
}

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(buf, false, true, true)
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("path", "a.go").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "path=a.go")
}
