package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	f "github.com/multimediallc/copyright-headers/pkg/functional"
)

// isPiped reports whether r delivers piped input rather than a terminal.
// Readers that are not files, such as buffers, always count as piped.
func isPiped(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readTargets reads one target path per line, as printed by tools like
// "git diff --name-only". Blank lines are skipped, paths are cleaned and
// repeated paths are kept once, in order of first appearance.
func readTargets(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var targets []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		targets = append(targets, filepath.Clean(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading targets from stdin")
	}
	return f.RemoveDuplicates(targets), nil
}
