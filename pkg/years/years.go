// Package years parses and formats the year ranges used in copyright headers.
package years

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Pattern matches a single year or an inclusive year range, e.g. "2020" or "2020 - 2022".
const Pattern = `[0-9]{4}(?:\s*-\s*[0-9]{4})?`

var (
	ErrParse = errors.Base("malformed year range")
	ErrOrder = errors.Base("start year is after end year")
)

// Range is an inclusive pair of years. Start is never after End.
type Range struct {
	Start int
	End   int
}

// NewRange validates the ordering of the endpoints.
func NewRange(start, end int) (Range, error) {
	if start > end {
		return Range{}, errors.WithDetails(ErrOrder, "start", start, "end", end)
	}
	return Range{Start: start, End: end}, nil
}

// Single returns the range covering one year.
func Single(year int) Range {
	return Range{Start: year, End: year}
}

// String renders the range; see Format.
func (r Range) String() string {
	s, err := Format(r.Start, r.End)
	if err != nil {
		return fmt.Sprintf("%d - %d", r.Start, r.End)
	}
	return s
}

// Parse reads "Y", "Y1-Y2" or "Y1 - Y2". A single year parses to (Y, Y).
func Parse(s string) (Range, error) {
	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return Range{}, errors.WithDetails(ErrParse, "value", s)
	}

	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, errors.WithDetails(ErrParse, "value", s)
	}
	if len(parts) == 1 {
		return Single(start), nil
	}

	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, errors.WithDetails(ErrParse, "value", s)
	}
	return NewRange(start, end)
}

// Format renders equal endpoints as one bare year and unequal ones as "Y1 - Y2".
func Format(start, end int) (string, error) {
	if start > end {
		return "", errors.WithDetails(ErrOrder, "start", start, "end", end)
	}
	if start == end {
		return strconv.Itoa(start), nil
	}
	return fmt.Sprintf("%d - %d", start, end), nil
}
