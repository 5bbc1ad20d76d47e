// Package halo moves partition borders between participants.
//
// Every generation each participant packs the interior rows and columns next
// to its neighbors, sends them without waiting for delivery, and blocks until
// the strips from all present neighbors have landed in its own halo ring.
package halo

import (
	"context"
	"errors"

	"halo-life/pkg/grid"
)

// ErrPeerGone is returned by transports when the other side of a link has
// shut down, so an expected message can never arrive.
var ErrPeerGone = errors.New("halo: peer gone")

// Transport is a rank-addressed, tag-matched message channel between the
// participants of one run. Messages on one (src, dst, tag) triple arrive in
// the order they were sent. Send must not retain payload after returning.
type Transport interface {
	Rank() int
	Size() int
	Send(ctx context.Context, dst, tag int, payload []byte) error
	Recv(ctx context.Context, src, tag int) ([]byte, error)
	Close() error
}

// Tags reserved by this package. Halo strips are tagged by the direction they
// travel so a left/right pair to the same neighbor can never be cross-matched.
const (
	tagHaloBase  = 1
	TagReduce    = 16
	TagBroadcast = 17
)

// HaloTag is the tag of a strip travelling toward side d of its sender.
func HaloTag(d grid.Direction) int { return tagHaloBase + int(d) }
