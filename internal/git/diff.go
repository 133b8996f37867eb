package git

import (
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
	"gitlab.com/tozd/go/errors"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 3

// UnifiedDiff renders the change from before to after as a unified diff of
// path. Equal texts produce an empty diff.
func UnifiedDiff(path string, before, after []string) (string, error) {
	if slices.Equal(before, after) {
		return "", nil
	}

	matcher := difflib.NewMatcher(before, after)
	fileDiff := &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
	}
	for _, group := range matcher.GetGroupedOpCodes(diffContext) {
		fileDiff.Hunks = append(fileDiff.Hunks, newHunk(group, before, after))
	}

	out, err := diff.PrintFileDiff(fileDiff)
	if err != nil {
		return "", errors.WithDetails(errors.Wrap(err, "printing diff"), "path", path)
	}
	return string(out), nil
}

func newHunk(group []difflib.OpCode, before, after []string) *diff.Hunk {
	var body strings.Builder
	writeLines := func(mark byte, lines []string) {
		for _, line := range lines {
			body.WriteByte(mark)
			body.WriteString(strings.TrimRight(line, "\r\n"))
			body.WriteByte('\n')
		}
	}
	for _, op := range group {
		switch op.Tag {
		case 'e':
			writeLines(' ', before[op.I1:op.I2])
		case 'r':
			writeLines('-', before[op.I1:op.I2])
			writeLines('+', after[op.J1:op.J2])
		case 'd':
			writeLines('-', before[op.I1:op.I2])
		case 'i':
			writeLines('+', after[op.J1:op.J2])
		}
	}

	first, last := group[0], group[len(group)-1]
	return &diff.Hunk{
		OrigStartLine: hunkStart(first.I1, last.I2-first.I1),
		OrigLines:     int32(last.I2 - first.I1),
		NewStartLine:  hunkStart(first.J1, last.J2-first.J1),
		NewLines:      int32(last.J2 - first.J1),
		Body:          []byte(body.String()),
	}
}

// hunkStart is the 1-based first line of a hunk, or the line before an
// empty one.
func hunkStart(start, count int) int32 {
	if count == 0 {
		return int32(start)
	}
	return int32(start + 1)
}
