package transport

import (
	"context"
	"fmt"
	"sync"
)

// inboxDepth bounds how many residue messages may be in flight before
// senders block.
const inboxDepth = 64

// localHub is the state shared by every member of an in-process cluster.
type localHub struct {
	size   int
	counts []chan int
	inbox  chan Envelope

	once   sync.Once
	closed chan struct{}
}

// Local is an in-process Communicator. Members of one cluster run as
// goroutines and exchange messages over channels.
type Local struct {
	hub  *localHub
	rank int
}

var _ Communicator = (*Local)(nil)

// NewLocalCluster creates size connected communicators, indexed by rank.
func NewLocalCluster(size int) ([]*Local, error) {
	if size < 1 {
		return nil, fmt.Errorf("transport: cluster size must be positive, got %d", size)
	}
	hub := &localHub{
		size:   size,
		counts: make([]chan int, size),
		inbox:  make(chan Envelope, inboxDepth),
		closed: make(chan struct{}),
	}
	members := make([]*Local, size)
	for rank := range members {
		hub.counts[rank] = make(chan int, 1)
		members[rank] = &Local{hub: hub, rank: rank}
	}
	return members, nil
}

func (l *Local) Rank() int { return l.rank }

func (l *Local) Size() int { return l.hub.size }

func (l *Local) SendTaskCount(ctx context.Context, to, count int) error {
	if l.rank != CoordinatorRank {
		return ErrNotCoordinator
	}
	if err := checkWorkerRank(to, l.hub.size); err != nil {
		return err
	}
	select {
	case l.hub.counts[to] <- count:
		return nil
	case <-l.hub.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Local) RecvTaskCount(ctx context.Context) (int, error) {
	if l.rank == CoordinatorRank {
		return 0, ErrNotWorker
	}
	select {
	case n := <-l.hub.counts[l.rank]:
		return n, nil
	case <-l.hub.closed:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (l *Local) SendResidue(ctx context.Context, payload []uint64) error {
	msg := Envelope{From: l.rank, Payload: append([]uint64(nil), payload...)}
	select {
	case l.hub.inbox <- msg:
		return nil
	case <-l.hub.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Local) RecvResidue(ctx context.Context) (Envelope, error) {
	if l.rank != CoordinatorRank {
		return Envelope{}, ErrNotCoordinator
	}
	select {
	case msg := <-l.hub.inbox:
		return msg, nil
	case <-l.hub.closed:
		return Envelope{}, ErrClosed
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

// Close shuts the whole cluster down; pending and future calls on any member
// return ErrClosed.
func (l *Local) Close() error {
	l.hub.once.Do(func() { close(l.hub.closed) })
	return nil
}
