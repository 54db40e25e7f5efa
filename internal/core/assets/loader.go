package assets

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/scenekit/internal/core/observability/log"
)

// Request names one asset and how to decode it.
type Request struct {
	Kind Kind
	Name string
	Load func(ctx context.Context) (any, error)
}

// Progress is called after each asset finishes, with the number done so far.
type Progress func(name string, done, total int)

// LoaderConfig bounds concurrent decoding.
type LoaderConfig struct {
	Concurrency int
}

func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{Concurrency: 4}
}

// Loader runs the asynchronous preload phase. The scene only ever sees a
// complete Table.
type Loader struct {
	config LoaderConfig
	logger log.Log
}

func NewLoader(config LoaderConfig, logger log.Log) *Loader {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultLoaderConfig().Concurrency
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Loader{config: config, logger: logger.With(log.String("component", "assets"))}
}

// Preload decodes every request concurrently. The first failure cancels the
// rest and no table is returned.
func (l *Loader) Preload(ctx context.Context, requests []Request, progress Progress) (*Table, error) {
	table := NewTable()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.config.Concurrency)

	var (
		mu   sync.Mutex
		done int
	)
	total := len(requests)
	for _, req := range requests {
		g.Go(func() error {
			if req.Load == nil {
				return fmt.Errorf("failed to load asset %s: %w", req.Name, ErrNilLoader)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := req.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load asset %s: %w", req.Name, err)
			}
			table.Put(req.Kind, req.Name, v)

			mu.Lock()
			done++
			n := done
			if progress != nil {
				progress(req.Name, n, total)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.Error("asset preload failed", log.Error(err))
		return nil, err
	}

	l.logger.Info("assets loaded", log.Int("count", total))
	return table, nil
}
