package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"halo-life/pkg/core"
	"halo-life/pkg/halo"
)

// RunLocal runs every participant of cfg.Topology inside this process over a
// LocalNetwork and returns the reassembled global field with each
// participant's result. The first failure cancels every participant.
func RunLocal(ctx context.Context, cfg Config, setup Initializer, opts ...Option) (*core.ByteGrid, []Result, error) {
	if err := cfg.Topology.Validate(cfg.Grid); err != nil {
		return nil, nil, err
	}
	n := cfg.Topology.Participants()
	net := halo.NewLocalNetwork(n)
	out := core.NewByteGrid(cfg.Grid.Width, cfg.Grid.Height)
	results := make([]Result, n)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			d, err := New(cfg, net.Endpoint(i), setup, opts...)
			if err != nil {
				net.Endpoint(i).Close()
				return err
			}
			defer d.Close()
			res, err := d.Run(gctx)
			if err != nil {
				return err
			}
			results[i] = res
			// Partitions are disjoint, so concurrent blits never overlap.
			p := d.Partition()
			out.Blit(d.Field().Interior(nil), p.OffsetX, p.OffsetY, p.Width, p.Height)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return out, results, nil
}
