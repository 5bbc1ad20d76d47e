// Package converge decides when a distributed field has stopped changing.
package converge

import (
	"context"
	"fmt"

	"halo-life/pkg/grid"
	"halo-life/pkg/halo"
)

// Detector combines every participant's "my interior did not change" vote.
type Detector struct {
	t halo.Transport
}

// New returns a detector voting over transport t.
func New(t halo.Transport) *Detector { return &Detector{t: t} }

// IsStable reports whether no interior cell changed between cur and next on
// any participant. It is a blocking collective: every participant must call
// it for the same generation.
func (d *Detector) IsStable(ctx context.Context, cur, next *grid.Field) (bool, error) {
	var vote int64
	if cur.InteriorEqual(next) {
		vote = 1
	}
	total, err := halo.AllReduceSum(ctx, d.t, vote)
	if err != nil {
		return false, fmt.Errorf("converge: participant %d: %w", d.t.Rank(), err)
	}
	return total == int64(d.t.Size()), nil
}
