package halo

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"halo-life/pkg/grid"
)

var (
	verticalSides   = []grid.Direction{grid.Up, grid.Down}
	horizontalSides = []grid.Direction{grid.Left, grid.Right}
)

// Exchanger refreshes the halo ring of one participant's field.
type Exchanger struct {
	t        Transport
	part     grid.Partition
	diagonal bool

	bufs  [4][]byte
	sends *errgroup.Group
}

// Option configures an Exchanger.
type Option func(*Exchanger)

// WithDiagonal makes the exchange populate the corner halo cells by sending
// full-height columns after the rows have arrived. The default leaves corners
// untouched.
func WithDiagonal(on bool) Option {
	return func(e *Exchanger) { e.diagonal = on }
}

// NewExchanger builds an exchanger for partition p over transport t.
func NewExchanger(t Transport, p grid.Partition, opts ...Option) *Exchanger {
	e := &Exchanger{t: t, part: p, sends: new(errgroup.Group)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exchange sends the border strips of f to every present neighbor and blocks
// until the strips of all present neighbors have been written into the halo
// ring of f. Sends are left in flight; they are awaited by the next Exchange
// or by Flush, before their buffers are reused.
func (e *Exchanger) Exchange(ctx context.Context, f *grid.Field, generation int) error {
	if f.W != e.part.Width || f.H != e.part.Height {
		return fmt.Errorf("halo: field %dx%d does not match partition %dx%d", f.W, f.H, e.part.Width, e.part.Height)
	}
	if err := e.Flush(); err != nil {
		return err
	}
	if !e.diagonal {
		return e.phase(ctx, f, generation, grid.Directions[:], false)
	}
	if err := e.phase(ctx, f, generation, verticalSides, false); err != nil {
		return err
	}
	return e.phase(ctx, f, generation, horizontalSides, true)
}

// Flush waits for every send still in flight and reports the first failure.
func (e *Exchanger) Flush() error {
	err := e.sends.Wait()
	e.sends = new(errgroup.Group)
	return err
}

func (e *Exchanger) phase(ctx context.Context, f *grid.Field, generation int, sides []grid.Direction, corners bool) error {
	for _, d := range sides {
		if !e.part.Has(d) {
			continue
		}
		e.bufs[d] = f.Pack(d, corners, e.bufs[d])
		d, dst, buf := d, e.part.Neighbor(d), e.bufs[d]
		e.sends.Go(func() error {
			if err := e.t.Send(ctx, dst, HaloTag(d), buf); err != nil {
				return e.fail(generation, d, "send", err)
			}
			return nil
		})
	}

	var strips [4][]byte
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range sides {
		if !e.part.Has(d) {
			continue
		}
		d := d
		g.Go(func() error {
			// The neighbor on side d sent its strip travelling the other way.
			msg, err := e.t.Recv(gctx, e.part.Neighbor(d), HaloTag(d.Opposite()))
			if err != nil {
				return e.fail(generation, d, "recv", err)
			}
			strips[d] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, d := range sides {
		if !e.part.Has(d) {
			continue
		}
		if err := f.Unpack(d, corners, strips[d]); err != nil {
			return &ProtocolError{Participant: e.part.Index, Generation: generation, Direction: d, Reason: err.Error()}
		}
	}
	return nil
}

func (e *Exchanger) fail(generation int, d grid.Direction, op string, err error) error {
	if errors.Is(err, ErrPeerGone) {
		return &ProtocolError{
			Participant: e.part.Index,
			Generation:  generation,
			Direction:   d,
			Reason:      fmt.Sprintf("neighbor %d left before %s completed", e.part.Neighbor(d), op),
		}
	}
	return &TransportFailure{Participant: e.part.Index, Generation: generation, Direction: d, Op: op, Err: err}
}
