package halo

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned when a transport is used after Close.
var ErrClosed = errors.New("halo: transport closed")

const mailboxDepth = 8

type mailKey struct {
	src, dst, tag int
}

// LocalNetwork connects n in-process participants through buffered channels.
// It is used to run a whole decomposition inside one process.
type LocalNetwork struct {
	mu    sync.Mutex
	boxes map[mailKey]chan []byte
	eps   []*localEndpoint
}

// NewLocalNetwork creates a network of n endpoints.
func NewLocalNetwork(n int) *LocalNetwork {
	net := &LocalNetwork{boxes: map[mailKey]chan []byte{}, eps: make([]*localEndpoint, n)}
	for i := range net.eps {
		net.eps[i] = &localEndpoint{net: net, rank: i, done: make(chan struct{})}
	}
	return net
}

// Endpoint returns the transport of participant rank.
func (n *LocalNetwork) Endpoint(rank int) Transport { return n.eps[rank] }

func (n *LocalNetwork) box(k mailKey) chan []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.boxes[k]
	if !ok {
		b = make(chan []byte, mailboxDepth)
		n.boxes[k] = b
	}
	return b
}

type localEndpoint struct {
	net  *LocalNetwork
	rank int

	closeOnce sync.Once
	done      chan struct{}
}

func (e *localEndpoint) Rank() int { return e.rank }

func (e *localEndpoint) Size() int { return len(e.net.eps) }

func (e *localEndpoint) peer(rank int) (*localEndpoint, error) {
	if rank < 0 || rank >= len(e.net.eps) {
		return nil, fmt.Errorf("halo: rank %d outside network of %d", rank, len(e.net.eps))
	}
	return e.net.eps[rank], nil
}

func (e *localEndpoint) Send(ctx context.Context, dst, tag int, payload []byte) error {
	peer, err := e.peer(dst)
	if err != nil {
		return err
	}
	msg := append([]byte(nil), payload...)
	box := e.net.box(mailKey{src: e.rank, dst: dst, tag: tag})
	select {
	case box <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrClosed
	case <-peer.done:
		return ErrPeerGone
	}
}

func (e *localEndpoint) Recv(ctx context.Context, src, tag int) ([]byte, error) {
	peer, err := e.peer(src)
	if err != nil {
		return nil, err
	}
	box := e.net.box(mailKey{src: src, dst: e.rank, tag: tag})
	select {
	case msg := <-box:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.done:
		return nil, ErrClosed
	case <-peer.done:
		// Messages sent before the peer closed are still deliverable.
		select {
		case msg := <-box:
			return msg, nil
		default:
			return nil, ErrPeerGone
		}
	}
}

func (e *localEndpoint) Close() error {
	e.closeOnce.Do(func() { close(e.done) })
	return nil
}
