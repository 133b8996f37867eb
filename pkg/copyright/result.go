package copyright

import "github.com/multimediallc/copyright-headers/pkg/textedit"

// Action is what happened to a header or disclaimer.
type Action int

const (
	Skipped Action = iota
	Unchanged
	Inserted
	Updated
)

func (a Action) String() string {
	switch a {
	case Unchanged:
		return "unchanged"
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "skipped"
	}
}

// MarshalText renders the action by name in JSON output.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Result is the outcome of processing one file. When Err is set, Lines
// holds the original text.
type Result struct {
	Path       string
	Language   string
	Lines      []string
	Changed    bool
	Header     Action
	Disclaimer Action
	Err        error
}

// Text returns the resulting file content.
func (r Result) Text() string {
	return textedit.Join(r.Lines)
}

func (r Result) Failed() bool {
	return r.Err != nil
}
