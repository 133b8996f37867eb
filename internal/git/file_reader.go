package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// GitRefFileReader reads files from a specific git ref, so that
// configuration can be taken from a trusted branch instead of the worktree.
type GitRefFileReader struct {
	ref      string
	dir      string
	executor gitCommandExecutor
}

// NewGitRefFileReader creates a new GitRefFileReader for reading files from a git ref
func NewGitRefFileReader(ref string, dir string) *GitRefFileReader {
	return &GitRefFileReader{
		ref:      ref,
		dir:      dir,
		executor: newRealGitExecutor(dir),
	}
}

// ReadFile reads a file from the git ref
func (r *GitRefFileReader) ReadFile(path string) ([]byte, error) {
	path = r.normalizePathForGit(path)

	output, err := r.executor.execute("git", "show", fmt.Sprintf("%s:%s", r.ref, path))
	if err != nil {
		return nil, errors.WithDetails(errors.Wrap(err, "reading file from git ref"), "path", path, "ref", r.ref)
	}
	return output, nil
}

// PathExists checks if a file exists in the git ref
func (r *GitRefFileReader) PathExists(path string) bool {
	path = r.normalizePathForGit(path)

	_, err := r.executor.execute("git", "cat-file", "-e", fmt.Sprintf("%s:%s", r.ref, path))
	return err == nil
}

// normalizePathForGit turns path into a path relative to the repository
// root, as "git show <ref>:<path>" expects.
func (r *GitRefFileReader) normalizePathForGit(path string) string {
	dir := filepath.ToSlash(filepath.Clean(r.dir))
	path = filepath.ToSlash(filepath.Clean(path))

	if dir != "." && dir != "/" {
		if rel, found := strings.CutPrefix(path, dir+"/"); found {
			path = rel
		}
	}
	path = strings.TrimPrefix(path, "./")
	return strings.TrimPrefix(path, "/")
}
