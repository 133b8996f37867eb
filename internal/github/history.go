// Package gh reads file history through the GitHub REST API. CI checkouts are
// often shallow, so local git log cannot see when a file was first committed.
package gh

import (
	"context"
	"strings"

	"github.com/google/go-github/v84/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/multimediallc/copyright-headers/internal/history"
)

var ErrInvalidRepository = errors.Base("repository must be in owner/repo form")

const perPage = 100

// History answers creation years from the commit list of a repository.
// Unlike git log --follow, the API does not track renames.
type History struct {
	owner  string
	repo   string
	client *github.Client
}

func NewHistory(owner, repo, token string) *History {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &History{
		owner:  owner,
		repo:   repo,
		client: client,
	}
}

// ParseRepository splits "owner/repo", the form of $GITHUB_REPOSITORY.
func ParseRepository(s string) (owner, repo string, err error) {
	owner, repo, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", errors.WithDetails(ErrInvalidRepository, "repository", s)
	}
	return owner, repo, nil
}

// CreationYear returns the year of the oldest commit touching path. Commits
// are listed newest first, so only the last page is needed.
func (h *History) CreationYear(ctx context.Context, path string) (int, error) {
	commits, res, err := h.listCommits(ctx, path, 1)
	if err != nil {
		return 0, err
	}
	if res.LastPage > 1 {
		zerolog.Ctx(ctx).Debug().Str("path", path).Int("page", res.LastPage).Msg("Jumping to last page of commits")
		commits, _, err = h.listCommits(ctx, path, res.LastPage)
		if err != nil {
			return 0, err
		}
	}

	oldest := 0
	for _, commit := range commits {
		date := commit.GetCommit().GetAuthor().GetDate()
		if date.IsZero() {
			continue
		}
		if oldest == 0 || date.Year() < oldest {
			oldest = date.Year()
		}
	}
	if oldest == 0 {
		return 0, errors.WithDetails(history.ErrNoHistory, "path", path, "repository", h.owner+"/"+h.repo)
	}
	return oldest, nil
}

func (h *History) listCommits(ctx context.Context, path string, page int) ([]*github.RepositoryCommit, *github.Response, error) {
	opts := &github.CommitsListOptions{
		Path:        path,
		ListOptions: github.ListOptions{PerPage: perPage, Page: page},
	}
	commits, res, err := h.client.Repositories.ListCommits(ctx, h.owner, h.repo, opts)
	if err != nil {
		return nil, nil, errors.WithDetails(errors.Wrap(err, "listing commits"), "path", path, "page", page)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	return commits, res, nil
}
