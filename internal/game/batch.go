package game

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

// runBatch 在有限的并发数下逐个处理家园，每个家园单独计时。
// fn 自己记录失败，单个家园出错不会中止其余家园。
func runBatch[R any](ctx context.Context, e *Engine, homes []models.Home, fn func(ctx context.Context, i int, home models.Home) R) []R {
	results := make([]R, len(homes))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, home := range homes {
		i, home := i, home
		g.Go(func() error {
			homeCtx, cancel := context.WithTimeout(ctx, e.tickTimeout)
			defer cancel()
			results[i] = fn(homeCtx, i, home)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
