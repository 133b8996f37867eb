package years

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestParse(t *testing.T) {
	tt := []struct {
		name    string
		input   string
		want    Range
		wantErr error
	}{
		{name: "single year", input: "2022", want: Range{2022, 2022}},
		{name: "compact range", input: "2019-2021", want: Range{2019, 2021}},
		{name: "spaced range", input: "2019 - 2021", want: Range{2019, 2021}},
		{name: "surrounding spaces", input: " 2019 -2021 ", want: Range{2019, 2021}},
		{name: "two dashes", input: "2019-2020-2021", wantErr: ErrParse},
		{name: "not a number", input: "20x9", wantErr: ErrParse},
		{name: "empty end", input: "2019-", wantErr: ErrParse},
		{name: "reversed", input: "2024 - 2022", wantErr: ErrOrder},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	tt := []struct {
		start, end int
		want       string
		wantErr    bool
	}{
		{2022, 2022, "2022", false},
		{2022, 2024, "2022 - 2024", false},
		{2024, 2022, "", true},
	}

	for _, tc := range tt {
		got, err := Format(tc.start, tc.end)
		if tc.wantErr {
			assert.True(t, errors.Is(err, ErrOrder), "(%d, %d): expected order error, got %v", tc.start, tc.end, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestFormatParseAgree(t *testing.T) {
	for _, r := range []Range{{2015, 2015}, {2015, 2026}} {
		parsed, err := Parse(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
}

func TestPatternMatchesRenderedRanges(t *testing.T) {
	re := regexp.MustCompile(`^` + Pattern + `$`)
	for _, s := range []string{"2022", "2019 - 2021", "2019-2021", "2019  -2021"} {
		assert.True(t, re.MatchString(s), s)
	}
	assert.False(t, re.MatchString("22"))
}
