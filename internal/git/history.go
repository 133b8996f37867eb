package git

import (
	"context"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/internal/history"
)

// dateLayout is git's %aD format, which prints days 1 to 9 without padding.
const dateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// History reads creation years from the local git log.
type History struct {
	dir      string
	executor gitCommandExecutor
}

// NewHistory creates a History for the repository checked out at dir.
func NewHistory(dir string) *History {
	return &History{
		dir:      dir,
		executor: newRealGitExecutor(dir),
	}
}

// CreationYear returns the earliest author year of path, following renames.
func (h *History) CreationYear(_ context.Context, path string) (int, error) {
	output, err := h.executor.execute("git", "log", "--follow", "--format=%aD", "--", path)
	if err != nil {
		return 0, errors.WithDetails(err, "path", path)
	}
	return oldestYear(string(output), path)
}

func oldestYear(log, path string) (int, error) {
	oldest := 0
	for _, line := range strings.Split(log, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		date, err := time.Parse(dateLayout, line)
		if err != nil {
			return 0, errors.WithDetails(errors.Wrap(err, "parsing git log date"), "path", path, "line", line)
		}
		if oldest == 0 || date.Year() < oldest {
			oldest = date.Year()
		}
	}
	if oldest == 0 {
		return 0, errors.WithDetails(history.ErrNoHistory, "path", path, "reason", "file is not tracked by git")
	}
	return oldest, nil
}
