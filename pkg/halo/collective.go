package halo

import (
	"context"
	"encoding/binary"
	"fmt"
)

// AllReduceSum adds v across every participant and returns the total to all
// of them. Rank 0 gathers and broadcasts. It blocks until every participant
// has called it, so all of them must call it in the same order.
func AllReduceSum(ctx context.Context, t Transport, v int64) (int64, error) {
	size := t.Size()
	if size <= 1 {
		return v, nil
	}
	if t.Rank() != 0 {
		if err := t.Send(ctx, 0, TagReduce, encodeInt(v)); err != nil {
			return 0, fmt.Errorf("reduce send: %w", err)
		}
		msg, err := t.Recv(ctx, 0, TagBroadcast)
		if err != nil {
			return 0, fmt.Errorf("reduce result: %w", err)
		}
		return decodeInt(msg)
	}

	total := v
	for src := 1; src < size; src++ {
		msg, err := t.Recv(ctx, src, TagReduce)
		if err != nil {
			return 0, fmt.Errorf("reduce from %d: %w", src, err)
		}
		part, err := decodeInt(msg)
		if err != nil {
			return 0, fmt.Errorf("reduce from %d: %w", src, err)
		}
		total += part
	}
	out := encodeInt(total)
	for dst := 1; dst < size; dst++ {
		if err := t.Send(ctx, dst, TagBroadcast, out); err != nil {
			return 0, fmt.Errorf("broadcast to %d: %w", dst, err)
		}
	}
	return total, nil
}

func encodeInt(v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

func decodeInt(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("reduction payload has %d bytes, want 8", len(b))
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}
