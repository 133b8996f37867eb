package copyright

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/pkg/disclaimer"
	"github.com/multimediallc/copyright-headers/pkg/header"
	"github.com/multimediallc/copyright-headers/pkg/language"
	"github.com/multimediallc/copyright-headers/pkg/textedit"
)

var errUntracked = errors.Base("untracked")

type fakeHistory map[string]int

func (h fakeHistory) CreationYear(_ context.Context, path string) (int, error) {
	year, ok := h[path]
	if !ok {
		return 0, errors.WithDetails(errUntracked, "path", path)
	}
	return year, nil
}

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func newEngine(t *testing.T, surround bool) *Engine {
	t.Helper()
	headers, err := header.New(header.Policy{TransitionYear: 2021, Before: "XYZ", After: "Advanced ABC", Recognized: []string{"ABC"}})
	require.NoError(t, err)
	disclaimers, err := disclaimer.New(disclaimer.DefaultHeuristic(), disclaimer.DefaultTemplate())
	require.NoError(t, err)

	e, err := New(
		Settings{CurrentYear: 2026, Padding: 1, WhitespaceSurround: surround, Insert: header.DefaultInsertRules()},
		headers,
		disclaimers,
		fakeHistory{"new.py": 2019, "main.c": 2023, "run.sh": 2015},
	)
	require.NoError(t, err)
	return e
}

func lookup(t *testing.T, path string) *language.Language {
	t.Helper()
	table, err := language.Default()
	require.NoError(t, err)
	l, err := table.Lookup(path)
	require.NoError(t, err)
	return l
}

func TestNewValidatesSettings(t *testing.T) {
	headers, err := header.New(header.Policy{TransitionYear: 2021, Before: "XYZ", After: "ABC"})
	require.NoError(t, err)

	_, err = New(Settings{CurrentYear: 0}, headers, nil, fakeHistory{})
	assert.True(t, errors.Is(err, ErrInvalidSettings))

	_, err = New(Settings{CurrentYear: 2026, Padding: -1}, headers, nil, fakeHistory{})
	assert.True(t, errors.Is(err, ErrInvalidSettings))

	_, err = New(Settings{CurrentYear: 2026}, nil, nil, fakeHistory{})
	assert.True(t, errors.Is(err, ErrInvalidSettings))
}

func TestProcessInsertsHeader(t *testing.T) {
	e := newEngine(t, false)
	lines := textedit.SplitLines("#!/usr/bin/env python\nprint(1)\n")

	res := e.Process(testContext(), "new.py", lines, lookup(t, "new.py"), false)
	require.NoError(t, res.Err)
	assert.True(t, res.Changed)
	assert.Equal(t, Inserted, res.Header)
	assert.Equal(t, Skipped, res.Disclaimer)
	assert.Equal(t, "#!/usr/bin/env python\n"+
		"# (c) Copyright 2019 - 2021 XYZ, Inc. All Rights reserved.\n"+
		"# (c) Copyright 2022 - 2026 Advanced ABC, Inc. All Rights reserved.\n"+
		"print(1)\n", res.Text())
	assert.Equal(t, "#!/usr/bin/env python\nprint(1)\n", textedit.Join(lines), "input must not change")
}

func TestProcessKeepsLineEndings(t *testing.T) {
	e := newEngine(t, true)
	lines := textedit.SplitLines("int main() {}\r\n")

	res := e.Process(testContext(), "main.c", lines, lookup(t, "main.c"), false)
	require.NoError(t, res.Err)
	assert.Equal(t, "// (c) Copyright 2023 - 2026 Advanced ABC, Inc. All Rights reserved.\r\n\r\nint main() {}\r\n", res.Text())
}

func TestProcessIsIdempotent(t *testing.T) {
	tt := []struct {
		name       string
		path       string
		text       string
		surround   bool
		disclaimer bool
	}{
		{name: "header only", path: "main.c", text: "#include <stdio.h>\nint main() {}\n"},
		{name: "header with surround", path: "main.c", text: "#include <stdio.h>\n", surround: true},
		{name: "disclaimer in block comment", path: "main.c", text: "int x;\n", disclaimer: true},
		{name: "disclaimer with surround", path: "main.c", text: "int x;\n", surround: true, disclaimer: true},
		{name: "disclaimer in line comments", path: "run.sh", text: "#!/bin/sh\necho hi\n", disclaimer: true},
		{name: "line comments with surround", path: "run.sh", text: "#!/bin/sh\necho hi\n", surround: true, disclaimer: true},
		{name: "stale header", path: "new.py", text: "# (c) Copyright 2020 XYZ, Inc. All Rights reserved.\nx = 1\n", disclaimer: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.surround)
			lang := lookup(t, tc.path)

			first := e.Process(testContext(), tc.path, textedit.SplitLines(tc.text), lang, tc.disclaimer)
			require.NoError(t, first.Err)
			assert.True(t, first.Changed)

			second := e.Process(testContext(), tc.path, first.Lines, lang, tc.disclaimer)
			require.NoError(t, second.Err)
			assert.False(t, second.Changed, "second run changed:\n%s", second.Text())
			assert.Equal(t, first.Text(), second.Text())
			assert.Equal(t, Unchanged, second.Header)
			if tc.disclaimer {
				assert.Equal(t, Unchanged, second.Disclaimer)
			}
		})
	}
}

func TestProcessDisclaimerFollowsHeader(t *testing.T) {
	e := newEngine(t, false)
	lang := lookup(t, "run.sh")

	res := e.Process(testContext(), "run.sh", textedit.SplitLines("#!/bin/sh\necho hi\n"), lang, true)
	require.NoError(t, res.Err)
	assert.Equal(t, Inserted, res.Header)
	assert.Equal(t, Inserted, res.Disclaimer)

	assert.Equal(t, "#!/bin/sh\n", res.Lines[0])
	assert.Equal(t, "# (c) Copyright 2015 - 2021 XYZ, Inc. All Rights reserved.\n", res.Lines[1])
	assert.True(t, strings.HasPrefix(res.Lines[3], "# COPYRIGHT NOTICE AND DISCLAIMER"), res.Lines[3])
	assert.Equal(t, "echo hi\n", res.Lines[len(res.Lines)-1])
}

func TestProcessDisclaimerInHeaderComment(t *testing.T) {
	text := "/*\n * (c) Copyright 2020 XYZ, Inc. All Rights reserved.\n *\n"
	for _, line := range disclaimer.DefaultTemplate() {
		if line == "" {
			text += " *\n"
			continue
		}
		text += " * " + line + "\n"
	}
	text += " */\nint x;\n"

	for _, surround := range []bool{false, true} {
		e := newEngine(t, surround)
		lang := lookup(t, "main.c")

		first := e.Process(testContext(), "main.c", textedit.SplitLines(text), lang, true)
		require.NoError(t, first.Err)
		assert.Equal(t, Updated, first.Header)
		assert.Equal(t, Updated, first.Disclaimer)
		assert.Equal(t, 1, strings.Count(first.Text(), "COPYRIGHT NOTICE AND DISCLAIMER"), first.Text())
		assert.Equal(t, 1, strings.Count(first.Text(), "/*"), first.Text())
		assert.True(t, strings.HasSuffix(first.Text(), " */\nint x;\n"), first.Text())

		second := e.Process(testContext(), "main.c", first.Lines, lang, true)
		require.NoError(t, second.Err)
		assert.False(t, second.Changed, "second run changed:\n%s", second.Text())
		assert.Equal(t, Unchanged, second.Disclaimer)
	}
}

func TestProcessFailuresKeepOriginal(t *testing.T) {
	e := newEngine(t, false)

	tt := []struct {
		name    string
		path    string
		text    string
		wantErr error
	}{
		{
			name:    "multiple headers",
			path:    "main.c",
			text:    "// (c) Copyright 2020 XYZ, Inc.\n\n// (c) Copyright 2021 XYZ, Inc.\n",
			wantErr: header.ErrMultipleHeaders,
		},
		{
			name:    "no history",
			path:    "other.c",
			text:    "int x;\n",
			wantErr: errUntracked,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			lines := textedit.SplitLines(tc.text)
			res := e.Process(testContext(), tc.path, lines, lookup(t, tc.path), true)
			assert.True(t, res.Failed())
			assert.True(t, errors.Is(res.Err, tc.wantErr), "expected %v, got %v", tc.wantErr, res.Err)
			assert.False(t, res.Changed)
			assert.Equal(t, lines, res.Lines)
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	text, err := Updated.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "updated", string(text))
}
