// Package driver runs one participant of a partitioned Life simulation:
// exchange the halo, evolve, check convergence, swap, repeat.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"halo-life/pkg/converge"
	"halo-life/pkg/core"
	"halo-life/pkg/grid"
	"halo-life/pkg/halo"
	"halo-life/pkg/sims/life"
)

// ErrTerminated is returned by Step and Run once the driver has stopped.
var ErrTerminated = errors.New("driver: terminated")

// State is the lifecycle position of a Driver.
type State int

const (
	StateInit State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config describes one run. Every participant must use the same Config.
type Config struct {
	Grid     grid.GlobalGrid
	Topology grid.Topology

	// MaxGenerations caps the run length.
	MaxGenerations int
	// CheckConvergence stops the run at the first generation in which no
	// cell changed anywhere. It costs one collective per generation.
	CheckConvergence bool
	// Diagonal exchanges and counts corner halo cells. Off reproduces the
	// corner-less exchange, where a partition's corner cells do not see
	// their diagonal neighbor partition.
	Diagonal bool
	// Workers bounds parallel row bands inside one participant.
	Workers int
	// SnapshotEvery writes a snapshot every n generations when a writer is
	// configured. Zero means every generation.
	SnapshotEvery int
}

// Initializer supplies the initial interior of a participant's field.
type Initializer interface {
	Init(p grid.Partition, f *grid.Field) error
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(p grid.Partition, f *grid.Field) error

// Init calls fn(p, f).
func (fn InitializerFunc) Init(p grid.Partition, f *grid.Field) error { return fn(p, f) }

// SnapshotWriter receives a copy of a participant's interior. The core never
// writes files itself.
type SnapshotWriter interface {
	WriteSnapshot(generation int, interior []uint8, offsetX, offsetY, width, height int) error
}

// Result summarizes a finished run from one participant's point of view.
type Result struct {
	Generations int
	Stable      bool
	// LiveCells is the global live cell count after the last generation.
	LiveCells int64
	Elapsed   time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger routes progress messages to l.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithSnapshots sends the interior to w at generation 0 and then every
// Config.SnapshotEvery generations.
func WithSnapshots(w SnapshotWriter) Option {
	return func(d *Driver) { d.snap = w }
}

// Driver owns one partition and its current and next fields.
type Driver struct {
	cfg    Config
	t      halo.Transport
	part   grid.Partition
	cur    *grid.Field
	next   *grid.Field
	ex     *halo.Exchanger
	engine life.Engine
	det    *converge.Detector

	gen    int
	stable bool
	state  State
	closed bool

	snap    SnapshotWriter
	scratch []uint8
	log     *log.Logger
	watch   *core.Stopwatch
}

// New derives the partition of t.Rank(), allocates its fields and fills the
// current one through setup.
func New(cfg Config, t halo.Transport, setup Initializer, opts ...Option) (*Driver, error) {
	if n := cfg.Topology.Participants(); t.Size() != n {
		return nil, &grid.ConfigurationError{
			Participant: t.Rank(),
			Reason:      fmt.Sprintf("%d participants connected, decomposition needs %d", t.Size(), n),
		}
	}
	part, err := grid.Derive(cfg.Grid, cfg.Topology, t.Rank())
	if err != nil {
		return nil, err
	}
	d := &Driver{
		cfg:    cfg,
		t:      t,
		part:   part,
		cur:    grid.NewFieldFor(part),
		next:   grid.NewFieldFor(part),
		ex:     halo.NewExchanger(t, part, halo.WithDiagonal(cfg.Diagonal)),
		engine: life.Engine{Workers: cfg.Workers, Diagonal: cfg.Diagonal},
		det:    converge.New(t),
		log:    log.New(io.Discard, "", 0),
		watch:  core.NewStopwatch(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if setup != nil {
		if err := setup.Init(part, d.cur); err != nil {
			return nil, fmt.Errorf("driver: participant %d init: %w", part.Index, err)
		}
	}
	if err := d.snapshot(); err != nil {
		return nil, err
	}
	return d, nil
}

// Partition returns the rectangle owned by this participant.
func (d *Driver) Partition() grid.Partition { return d.part }

// Field returns the current field.
func (d *Driver) Field() *grid.Field { return d.cur }

// Generation returns the number of completed generations.
func (d *Driver) Generation() int { return d.gen }

// State returns the lifecycle state.
func (d *Driver) State() State { return d.state }

// Stable reports whether the last checked generation changed nothing.
func (d *Driver) Stable() bool { return d.stable }

// Stats returns the accumulated phase timings.
func (d *Driver) Stats() *core.Stopwatch { return d.watch }

// Step runs one generation and reports whether the global field was stable.
// Stability is only evaluated when Config.CheckConvergence is set. Any error
// terminates the driver.
func (d *Driver) Step(ctx context.Context) (bool, error) {
	if d.state == StateTerminated {
		return false, ErrTerminated
	}
	d.state = StateRunning

	stop := d.watch.Start("exchange")
	err := d.ex.Exchange(ctx, d.cur, d.gen)
	stop()
	if err != nil {
		return false, d.abort(err)
	}

	stop = d.watch.Start("evolve")
	err = d.engine.Evolve(d.cur, d.next)
	stop()
	if err != nil {
		return false, d.abort(err)
	}

	stable := false
	if d.cfg.CheckConvergence {
		stop = d.watch.Start("converge")
		stable, err = d.det.IsStable(ctx, d.cur, d.next)
		stop()
		if err != nil {
			return false, d.abort(fmt.Errorf("generation %d: %w", d.gen, err))
		}
	}

	d.cur, d.next = d.next, d.cur
	d.gen++
	d.stable = stable
	if err := d.snapshot(); err != nil {
		return false, d.abort(err)
	}
	return stable, nil
}

// Run steps until Config.MaxGenerations or, with convergence checking, the
// first stable generation. The returned live count is global.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	for d.gen < d.cfg.MaxGenerations {
		stable, err := d.Step(ctx)
		if err != nil {
			return Result{}, err
		}
		if stable {
			if d.part.Index == 0 {
				d.log.Printf("STOP: stable at generation %d", d.gen)
			}
			break
		}
	}
	live, err := halo.AllReduceSum(ctx, d.t, int64(d.cur.Live()))
	if err != nil {
		return Result{}, d.abort(fmt.Errorf("live count: %w", err))
	}
	res := Result{Generations: d.gen, Stable: d.stable, LiveCells: live, Elapsed: time.Since(start)}
	if d.part.Index == 0 {
		d.log.Printf("finished %d generations, %d live cells, %s", res.Generations, res.LiveCells, res.Elapsed.Round(time.Millisecond))
	}
	return res, nil
}

// Close waits for outstanding sends, closes the transport and releases the
// fields. The driver cannot be used afterwards.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.state = StateTerminated
	err := d.ex.Flush()
	if cerr := d.t.Close(); err == nil {
		err = cerr
	}
	d.next = nil
	d.scratch = nil
	return err
}

func (d *Driver) abort(err error) error {
	d.state = StateTerminated
	d.log.Printf("participant %d aborted at generation %d: %v", d.part.Index, d.gen, err)
	return err
}

func (d *Driver) snapshot() error {
	if d.snap == nil {
		return nil
	}
	if every := d.cfg.SnapshotEvery; every > 1 && d.gen%every != 0 {
		return nil
	}
	d.scratch = d.cur.Interior(d.scratch)
	p := d.part
	if err := d.snap.WriteSnapshot(d.gen, d.scratch, p.OffsetX, p.OffsetY, p.Width, p.Height); err != nil {
		return fmt.Errorf("driver: participant %d snapshot %d: %w", p.Index, d.gen, err)
	}
	return nil
}
