package plugin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/AntonioLangiu/Ceedling/internal/config"
)

// defaultReadConcurrency bounds the number of fragment files read at once.
const defaultReadConcurrency = 8

// Loader reads TOML and YAML fragments from disk.
type Loader struct {
	concurrency int
	load        func(path string) (config.Tree, error)
}

// NewLoader returns a Loader reading up to concurrency files at once. A
// non-positive value uses the default.
func NewLoader(concurrency int) *Loader {
	if concurrency <= 0 {
		concurrency = defaultReadConcurrency
	}
	return &Loader{concurrency: concurrency, load: config.LoadFile}
}

// LoadAll implements config.FragmentLoader. Files are read concurrently;
// the results keep the order of paths. The first failure cancels the
// remaining reads.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]config.Tree, error) {
	out := make([]config.Tree, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := l.load(p)
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading fragments: %w", err)
	}
	return out, nil
}
