// Package cluster runs every participant of a partitioned Life board inside
// one process and exposes the reassembled board as a core.Sim.
package cluster

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"halo-life/pkg/core"
	"halo-life/pkg/driver"
	"halo-life/pkg/grid"
	"halo-life/pkg/halo"
	"halo-life/pkg/seed"
)

// Cluster steps all drivers of a topology in lockstep over a LocalNetwork.
type Cluster struct {
	cfg     Config
	run     driver.Config
	drivers []*driver.Driver
	parts   []grid.Partition
	board   *core.ByteGrid
	seed    int64
	stable  bool
	err     error
	elapsed time.Duration
}

// New validates the decomposition and seeds the board with seed 1.
func New(c Config) (*Cluster, error) {
	run := driver.Config{
		Grid:             grid.GlobalGrid{Width: c.Width, Height: c.Height},
		Topology:         grid.Topology{DimX: c.DimX, DimY: c.DimY, Periodic: c.Periodic, NDims: 2},
		CheckConvergence: c.Converge,
		Diagonal:         c.Diagonal,
		Workers:          c.Workers,
	}
	parts, err := grid.DeriveAll(run.Grid, run.Topology)
	if err != nil {
		return nil, err
	}
	if _, ok := seed.Initializers()[c.Init]; !ok {
		return nil, fmt.Errorf("cluster: unknown initializer %q", c.Init)
	}
	cl := &Cluster{cfg: c, run: run, parts: parts, board: core.NewByteGrid(c.Width, c.Height)}
	cl.Reset(1)
	if cl.err != nil {
		return nil, cl.err
	}
	return cl, nil
}

// Name returns the simulation identifier.
func (c *Cluster) Name() string { return "cluster" }

// Size returns the global grid dimensions.
func (c *Cluster) Size() core.Size { return core.Size{W: c.cfg.Width, H: c.cfg.Height} }

// Cells exposes the reassembled global board.
func (c *Cluster) Cells() []uint8 { return c.board.Cells() }

// Partitions returns the rectangles of every participant.
func (c *Cluster) Partitions() []grid.Partition { return c.parts }

// Generation returns the number of completed generations.
func (c *Cluster) Generation() int {
	if len(c.drivers) == 0 {
		return 0
	}
	return c.drivers[0].Generation()
}

// Stable reports whether the last generation changed nothing. It stays false
// unless convergence checking is enabled.
func (c *Cluster) Stable() bool { return c.stable }

// Reset tears down the running drivers and starts a fresh run seeded with
// seed. A failure is reported by the next Step.
func (c *Cluster) Reset(s int64) {
	c.Close()
	c.seed = s
	c.stable = false
	c.elapsed = 0
	c.err = nil

	in, err := seed.New(c.cfg.Init, map[string]string{
		"seed":    strconv.FormatInt(s, 10),
		"density": strconv.FormatFloat(c.cfg.Density, 'g', -1, 64),
		"pattern": c.cfg.Pattern,
		"x":       strconv.Itoa(c.cfg.PatternX),
		"y":       strconv.Itoa(c.cfg.PatternY),
	})
	if err != nil {
		c.err = err
		return
	}
	net := halo.NewLocalNetwork(len(c.parts))
	c.drivers = make([]*driver.Driver, 0, len(c.parts))
	for i := range c.parts {
		d, err := driver.New(c.run, net.Endpoint(i), in)
		if err != nil {
			c.err = err
			c.Close()
			return
		}
		c.drivers = append(c.drivers, d)
	}
	c.gather()
}

// Step advances every participant by one generation.
func (c *Cluster) Step() error {
	if c.err != nil {
		return c.err
	}
	if c.stable {
		return nil
	}
	start := time.Now()
	votes := make([]bool, len(c.drivers))
	g, ctx := errgroup.WithContext(context.Background())
	for i, d := range c.drivers {
		i, d := i, d
		g.Go(func() error {
			stable, err := d.Step(ctx)
			votes[i] = stable
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.err = fmt.Errorf("cluster: generation %d: %w", c.Generation(), err)
		return c.err
	}
	c.elapsed += time.Since(start)
	c.stable = votes[0]
	c.gather()
	return nil
}

// Close releases every driver.
func (c *Cluster) Close() error {
	var first error
	for _, d := range c.drivers {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.drivers = nil
	return first
}

func (c *Cluster) gather() {
	for _, d := range c.drivers {
		p := d.Partition()
		c.board.Blit(d.Field().Interior(nil), p.OffsetX, p.OffsetY, p.Width, p.Height)
	}
}

// Parameters reports the run state for the HUD.
func (c *Cluster) Parameters() core.ParameterSnapshot {
	gen := c.Generation()
	run := core.ParameterGroup{Name: "Run", Params: []core.Parameter{
		core.IntParam("generation", "Generation", gen),
		core.IntParam("live", "Live cells", c.board.Count()),
		core.BoolParam("stable", "Stable", c.stable),
		core.IntParam("seed", "Seed", int(c.seed)),
	}}
	topo := core.ParameterGroup{Name: "Topology", Params: []core.Parameter{
		core.StringParam("dims", "Dims", fmt.Sprintf("%dx%d", c.cfg.DimX, c.cfg.DimY)),
		core.IntParam("participants", "Participants", len(c.parts)),
		core.BoolParam("periodic", "Periodic", c.cfg.Periodic),
		core.BoolParam("diagonal", "Diagonal", c.cfg.Diagonal),
	}}
	timing := core.ParameterGroup{Name: "Timing"}
	if gen > 0 {
		timing.Params = append(timing.Params,
			core.FloatParam("gen_ms", "ms/generation", float64(c.elapsed.Microseconds())/float64(gen)/1000))
	}
	if len(c.drivers) > 0 {
		sw := c.drivers[0].Stats()
		for _, phase := range sw.Phases() {
			timing.Params = append(timing.Params,
				core.FloatParam(phase+"_us", phase+" us", float64(sw.Mean(phase).Nanoseconds())/1000))
		}
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{run, topo, timing}}
}

func init() {
	core.Register("cluster", func(cfg map[string]string) (core.Sim, error) {
		return New(FromMap(cfg))
	})
}
