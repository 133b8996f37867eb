package git

import (
	"os/exec"
	"strings"

	"gitlab.com/tozd/go/errors"
)

type gitCommandExecutor interface {
	execute(command string, args ...string) ([]byte, error)
}

type realGitExecutor struct {
	dir string
}

func newRealGitExecutor(dir string) *realGitExecutor {
	return &realGitExecutor{dir: dir}
}

// execute runs the command in the executor's directory and returns stdout.
func (e *realGitExecutor) execute(command string, args ...string) ([]byte, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = e.dir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, errors.WithDetails(
				errors.Wrapf(err, "%s %s", command, strings.Join(args, " ")),
				"stderr", strings.TrimSpace(string(exitErr.Stderr)),
			)
		}
		return nil, errors.Wrapf(err, "%s %s", command, strings.Join(args, " "))
	}
	return output, nil
}
