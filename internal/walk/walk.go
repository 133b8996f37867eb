// Package walk lists the files a run should process.
package walk

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/boyter/gocodewalker"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/multimediallc/copyright-headers/pkg/excludes"
	"github.com/multimediallc/copyright-headers/pkg/language"
)

var ErrOutsideRoot = errors.Base("target is outside the root directory")

// Candidate is a file selected for processing.
type Candidate struct {
	// Path is usable to open the file.
	Path string
	// RelPath is slash-separated and relative to the root.
	RelPath    string
	Language   *language.Language
	Disclaimer bool
	// Err is set when the language of the file cannot be decided.
	Err error
}

type Options struct {
	Languages *language.Table
	Excludes  *excludes.Rules
	Mode      excludes.DisclaimerMode
	// Skip lists relative paths that are never candidates.
	Skip []string
}

// Files expands targets, files or directories under root, into candidates
// sorted by relative path. No targets means the whole root. Directories are
// walked honoring .gitignore and .ignore files. Files with no known language
// and excluded files are left out.
func Files(ctx context.Context, root string, targets []string, opts Options) ([]Candidate, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WithDetails(errors.Wrap(err, "resolving root"), "root", root)
	}
	if len(targets) == 0 {
		targets = []string{root}
	}
	if opts.Excludes == nil {
		opts.Excludes = &excludes.Rules{}
	}

	seen := map[string]Candidate{}
	for _, target := range targets {
		paths, err := expand(ctx, target)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			rel, err := relativeTo(absRoot, path)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[rel]; ok {
				continue
			}
			if candidate, ok := opts.candidate(ctx, path, rel); ok {
				seen[rel] = candidate
			}
		}
	}

	candidates := make([]Candidate, 0, len(seen))
	for _, c := range seen {
		candidates = append(candidates, c)
	}
	slices.SortFunc(candidates, func(a, b Candidate) int {
		return strings.Compare(a.RelPath, b.RelPath)
	})
	return candidates, nil
}

func (o Options) candidate(ctx context.Context, path, rel string) (Candidate, bool) {
	log := zerolog.Ctx(ctx).With().Str("path", rel).Logger()

	if slices.Contains(o.Skip, rel) {
		return Candidate{}, false
	}
	decision := o.Excludes.Decide(rel, o.Mode)
	if !decision.Include {
		log.Debug().Msg("Excluded")
		return Candidate{}, false
	}
	c := Candidate{Path: path, RelPath: rel, Disclaimer: decision.Disclaimer}
	c.Language, c.Err = o.Languages.Lookup(rel)
	if errors.Is(c.Err, language.ErrUnsupportedLanguage) {
		log.Debug().Msg("No language")
		return Candidate{}, false
	}
	return c, true
}

// expand returns target itself when it is a file, or every file below it.
func expand(ctx context.Context, target string) ([]string, error) {
	stat, err := os.Stat(target)
	if err != nil {
		return nil, errors.WithDetails(errors.Wrap(err, "reading target"), "target", target)
	}
	if !stat.IsDir() {
		return []string{target}, nil
	}

	fileListQueue := make(chan *gocodewalker.File, 100)
	walker := gocodewalker.NewFileWalker(target, fileListQueue)
	walker.IncludeHidden = true
	walker.ExcludeDirectory = []string{".git"}

	files := make([]string, 0)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(walker.Start)
	g.Go(func() error {
		for file := range fileListQueue {
			if ctx.Err() == nil {
				files = append(files, file.Location)
			}
		}
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, errors.WithDetails(errors.Wrap(err, "walking directory"), "target", target)
	}
	return files, nil
}

func relativeTo(absRoot, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WithDetails(errors.Wrap(err, "resolving path"), "path", path)
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.WithDetails(ErrOutsideRoot, "path", path, "root", absRoot)
	}
	return filepath.ToSlash(rel), nil
}
