// Package rpcnet is a halo.Transport over net/rpc for runs with one process
// per participant. Every participant listens on its own address; Join
// connects the full mesh and returns once every peer has connected back.
// A connection that drops after Join marks its peer gone for good.
package rpcnet

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"sync"
	"time"

	"halo-life/pkg/halo"
)

// RetryInterval is the pause between dial attempts while a peer is not yet
// listening.
var RetryInterval = 50 * time.Millisecond

var errClosed = errors.New("rpcnet: node closed")

// Message is the argument of Mailbox.Deliver.
type Message struct {
	Src     int
	Tag     int
	Seq     uint64
	Payload []byte
}

// Mailbox is the rpc service every participant exposes.
type Mailbox struct {
	node *Node
}

// Deliver queues msg for the matching Recv.
func (m *Mailbox) Deliver(msg Message, queued *bool) error {
	if err := m.node.deliver(msg); err != nil {
		return err
	}
	*queued = true
	return nil
}

type key struct{ peer, tag int }

type inbox struct {
	next    uint64
	early   map[uint64][]byte
	queue   [][]byte
	arrived chan struct{}
}

// Node is one participant's endpoint.
type Node struct {
	ln  net.Listener
	srv *rpc.Server

	rank  int
	peers []string

	mu      sync.Mutex
	inboxes map[key]*inbox
	seqs    map[key]uint64
	clients map[int]*rpc.Client
	inbound map[int]net.Conn
	gone    map[int]bool
	hello   chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// Listen starts serving the mailbox on addr. The node is unusable as a
// transport until Join assigns its rank.
func Listen(addr string) (*Node, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rpcnet: listen %s: %w", addr, err)
	}
	n := &Node{
		ln:      ln,
		srv:     rpc.NewServer(),
		rank:    -1,
		inboxes: map[key]*inbox{},
		seqs:    map[key]uint64{},
		clients: map[int]*rpc.Client{},
		inbound: map[int]net.Conn{},
		gone:    map[int]bool{},
		hello:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if err := n.srv.RegisterName("Mailbox", &Mailbox{node: n}); err != nil {
		ln.Close()
		return nil, err
	}
	go n.serve()
	return n, nil
}

func (n *Node) serve() {
	for {
		conn, err := n.ln.Accept()
		if err != nil {
			return
		}
		go n.serveConn(conn)
	}
}

// serveConn reads the dialer's rank, then serves its calls until the
// connection drops.
func (n *Node) serveConn(conn net.Conn) {
	var hdr [4]byte
	if _, err := io.ReadFull(conn, hdr[:]); err != nil {
		conn.Close()
		return
	}
	src := int(binary.BigEndian.Uint32(hdr[:]))

	n.mu.Lock()
	select {
	case <-n.done:
		n.mu.Unlock()
		conn.Close()
		return
	default:
	}
	n.inbound[src] = conn
	n.mu.Unlock()
	select {
	case n.hello <- struct{}{}:
	default:
	}

	n.srv.ServeConn(conn)
	n.markGone(src)
}

// Addr returns the listening address.
func (n *Node) Addr() string { return n.ln.Addr().String() }

// Join sets this node's rank and the addresses of every participant,
// indexed by rank. It dials every peer and waits until every peer has
// dialed back, so a participant that never comes up fails Join through ctx
// rather than a later Recv.
func (n *Node) Join(ctx context.Context, rank int, peers []string) error {
	if rank < 0 || rank >= len(peers) {
		return fmt.Errorf("rpcnet: rank %d outside %d peers", rank, len(peers))
	}
	n.mu.Lock()
	n.rank = rank
	n.peers = append([]string(nil), peers...)
	n.mu.Unlock()

	for dst := range peers {
		c, err := n.dial(ctx, dst)
		if err != nil {
			return err
		}
		n.mu.Lock()
		n.clients[dst] = c
		n.mu.Unlock()
	}
	for {
		n.mu.Lock()
		connected := len(n.inbound)
		n.mu.Unlock()
		if connected >= len(peers) {
			return nil
		}
		select {
		case <-n.hello:
		case <-ctx.Done():
			return fmt.Errorf("rpcnet: %d of %d peers connected: %w", connected, len(peers), ctx.Err())
		case <-n.done:
			return errClosed
		}
	}
}

// Rank returns this participant's index.
func (n *Node) Rank() int { return n.rank }

// Size returns the number of participants.
func (n *Node) Size() int { return len(n.peers) }

// Send delivers payload to dst. It returns once the peer has queued it.
func (n *Node) Send(ctx context.Context, dst, tag int, payload []byte) error {
	client, err := n.client(dst)
	if err != nil {
		return err
	}
	n.mu.Lock()
	k := key{peer: dst, tag: tag}
	seq := n.seqs[k]
	n.seqs[k] = seq + 1
	n.mu.Unlock()

	msg := Message{Src: n.rank, Tag: tag, Seq: seq, Payload: payload}
	var queued bool
	call := client.Go("Mailbox.Deliver", msg, &queued, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		if call.Error != nil {
			if peerHungUp(call.Error) {
				n.markGone(dst)
				return fmt.Errorf("rpcnet: send to %d: %w", dst, halo.ErrPeerGone)
			}
			return fmt.Errorf("rpcnet: send to %d: %w", dst, call.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-n.done:
		return errClosed
	}
}

func peerHungUp(err error) bool {
	return errors.Is(err, rpc.ErrShutdown) || errors.Is(err, io.ErrUnexpectedEOF) ||
		err.Error() == errClosed.Error()
}

// Recv waits for the next message from src on tag. Messages queued before
// src went away are still returned; after that Recv reports
// halo.ErrPeerGone.
func (n *Node) Recv(ctx context.Context, src, tag int) ([]byte, error) {
	if src < 0 || src >= len(n.peers) {
		return nil, fmt.Errorf("rpcnet: rank %d outside %d peers", src, len(n.peers))
	}
	for {
		n.mu.Lock()
		box := n.inbox(key{peer: src, tag: tag})
		if len(box.queue) > 0 {
			msg := box.queue[0]
			box.queue = box.queue[1:]
			n.mu.Unlock()
			return msg, nil
		}
		gone := n.gone[src]
		n.mu.Unlock()
		if gone {
			return nil, fmt.Errorf("rpcnet: recv from %d: %w", src, halo.ErrPeerGone)
		}
		select {
		case <-box.arrived:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-n.done:
			return nil, errClosed
		}
	}
}

// Close stops serving and drops every peer connection in both directions.
func (n *Node) Close() error {
	var err error
	n.closeOnce.Do(func() {
		close(n.done)
		err = n.ln.Close()
		n.mu.Lock()
		for _, c := range n.clients {
			c.Close()
		}
		for _, conn := range n.inbound {
			conn.Close()
		}
		n.clients = map[int]*rpc.Client{}
		n.mu.Unlock()
	})
	return err
}

// markGone records that peer is unreachable and wakes every Recv waiting
// on it.
func (n *Node) markGone(peer int) {
	select {
	case <-n.done:
		return
	default:
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.gone[peer] {
		return
	}
	n.gone[peer] = true
	if c, ok := n.clients[peer]; ok {
		c.Close()
		delete(n.clients, peer)
	}
	for k, box := range n.inboxes {
		if k.peer != peer {
			continue
		}
		select {
		case box.arrived <- struct{}{}:
		default:
		}
	}
}

func (n *Node) inbox(k key) *inbox {
	box, ok := n.inboxes[k]
	if !ok {
		box = &inbox{early: map[uint64][]byte{}, arrived: make(chan struct{}, 1)}
		n.inboxes[k] = box
	}
	return box
}

// deliver queues a message in sequence order. Messages overtaken by a later
// one wait in early until the gap closes.
func (n *Node) deliver(msg Message) error {
	select {
	case <-n.done:
		return errClosed
	default:
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	box := n.inbox(key{peer: msg.Src, tag: msg.Tag})
	if msg.Seq != box.next {
		box.early[msg.Seq] = msg.Payload
		return nil
	}
	box.queue = append(box.queue, msg.Payload)
	box.next++
	for {
		p, ok := box.early[box.next]
		if !ok {
			break
		}
		delete(box.early, box.next)
		box.queue = append(box.queue, p)
		box.next++
	}
	select {
	case box.arrived <- struct{}{}:
	default:
	}
	return nil
}

// client returns the connection opened by Join. Peers are never redialed.
func (n *Node) client(dst int) (*rpc.Client, error) {
	if dst < 0 || dst >= len(n.peers) {
		return nil, fmt.Errorf("rpcnet: rank %d outside %d peers", dst, len(n.peers))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.clients[dst]; ok {
		return c, nil
	}
	if n.gone[dst] {
		return nil, fmt.Errorf("rpcnet: send to %d: %w", dst, halo.ErrPeerGone)
	}
	return nil, fmt.Errorf("rpcnet: no connection to %d, call Join first", dst)
}

// dial connects to dst, retrying until it listens, and announces this
// node's rank on the new connection.
func (n *Node) dial(ctx context.Context, dst int) (*rpc.Client, error) {
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", n.peers[dst])
		if err == nil {
			var hdr [4]byte
			binary.BigEndian.PutUint32(hdr[:], uint32(n.rank))
			if _, err := conn.Write(hdr[:]); err != nil {
				conn.Close()
				return nil, fmt.Errorf("rpcnet: greet %d: %w", dst, err)
			}
			return rpc.NewClient(conn), nil
		}
		select {
		case <-time.After(RetryInterval):
		case <-ctx.Done():
			return nil, fmt.Errorf("rpcnet: dial %d at %s: %w", dst, n.peers[dst], ctx.Err())
		case <-n.done:
			return nil, errClosed
		}
	}
}
