package textedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	tt := []struct {
		text string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a\nb\n", []string{"a\n", "b\n"}},
		{"a\r\nb", []string{"a\r\n", "b"}},
		{"\n\n", []string{"\n", "\n"}},
	}
	for _, tc := range tt {
		got := SplitLines(tc.text)
		assert.Equal(t, tc.want, got, "%q", tc.text)
		assert.Equal(t, tc.text, Join(got))
	}
}

func TestNewline(t *testing.T) {
	assert.Equal(t, "\r\n", Newline([]string{"a\r\n", "b\n"}))
	assert.Equal(t, "\n", Newline([]string{"a\n", "b\r\n"}))
	assert.Equal(t, "\n", Newline([]string{"no terminator"}))
	assert.Equal(t, "\n", Newline(nil))
}

func TestInsert(t *testing.T) {
	lines := []string{"a\n", "b"}

	assert.Equal(t, []string{"x\n", "a\n", "b"}, Insert(lines, 0, []string{"x\n"}, "\n"))
	assert.Equal(t, []string{"a\n", "x\n", "b"}, Insert(lines, 1, []string{"x\n"}, "\n"))
	assert.Equal(t, []string{"a\n", "b\r\n", "x\n"}, Insert(lines, 2, []string{"x\n"}, "\r\n"))
	assert.Equal(t, []string{"a\n", "b"}, lines, "input must not change")
}

func TestReplace(t *testing.T) {
	lines := []string{"a\n", "b\n", "c\n", "d\n"}

	assert.Equal(t, []string{"a\n", "x\n", "d\n"}, Replace(lines, Span{Start: 1, End: 2}, []string{"x\n"}))
	assert.Equal(t, []string{"x\n", "y\n", "z\n", "b\n", "c\n", "d\n"}, Replace(lines, Span{Start: 0, End: 0}, []string{"x\n", "y\n", "z\n"}))
	assert.Equal(t, []string{"a\n", "b\n", "c\n", "d\n"}, lines, "input must not change")
}

func TestSpan(t *testing.T) {
	s := Span{Start: 2, End: 4}
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Overlaps(Span{Start: 4, End: 9}))
	assert.False(t, s.Overlaps(Span{Start: 0, End: 1}))
}

func TestSurround(t *testing.T) {
	tt := []struct {
		name     string
		lines    []string
		span     Span
		want     []string
		wantSpan Span
	}{
		{
			name:     "pads both sides",
			lines:    []string{"a\n", "h\n", "b\n"},
			span:     Span{Start: 1, End: 1},
			want:     []string{"a\n", "\n", "h\n", "\n", "b\n"},
			wantSpan: Span{Start: 2, End: 2},
		},
		{
			name:     "start of file",
			lines:    []string{"h1\n", "h2\n", "code\n"},
			span:     Span{Start: 0, End: 1},
			want:     []string{"h1\n", "h2\n", "\n", "code\n"},
			wantSpan: Span{Start: 0, End: 1},
		},
		{
			name:     "end of file",
			lines:    []string{"code\n", "h\n"},
			span:     Span{Start: 1, End: 1},
			want:     []string{"code\n", "\n", "h\n"},
			wantSpan: Span{Start: 2, End: 2},
		},
		{
			name:     "already blank around",
			lines:    []string{"a\n", "  \n", "h\n", "\n", "b\n"},
			span:     Span{Start: 2, End: 2},
			want:     []string{"a\n", "  \n", "h\n", "\n", "b\n"},
			wantSpan: Span{Start: 2, End: 2},
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			once, span := Surround(append([]string(nil), tc.lines...), tc.span, "\n")
			assert.Equal(t, tc.want, once)
			assert.Equal(t, tc.wantSpan, span)

			twice, span2 := Surround(append([]string(nil), once...), span, "\n")
			assert.Equal(t, once, twice)
			assert.Equal(t, span, span2)
		})
	}
}
