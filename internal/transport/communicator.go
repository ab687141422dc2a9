//go:generate mockgen -source=communicator.go -destination=mocks/mock_communicator.go -package=mocks

// Package transport carries the reconstruction protocol between
// participants. Rank 0 is always the coordinator; ranks 1..Size()-1 are
// workers.
//
// The protocol has exactly two message kinds: a task count sent once from
// the coordinator to each worker, and residue messages sent from workers to
// the coordinator. A residue message is the residue vector followed by the
// prime it was computed at.
package transport

import (
	"context"
	"errors"
	"fmt"
)

// CoordinatorRank is the rank of the coordinating participant.
const CoordinatorRank = 0

var (
	// ErrNotCoordinator is returned when a worker tries a coordinator-only
	// operation.
	ErrNotCoordinator = errors.New("transport: operation requires the coordinator rank")
	// ErrNotWorker is returned when the coordinator tries a worker-only
	// operation.
	ErrNotWorker = errors.New("transport: operation requires a worker rank")
	// ErrInvalidRank is returned for destination ranks outside 1..Size()-1.
	ErrInvalidRank = errors.New("transport: invalid worker rank")
	// ErrClosed is returned after the communicator has been closed.
	ErrClosed = errors.New("transport: communicator closed")
)

// Envelope is a residue message together with the rank that sent it.
type Envelope struct {
	From    int
	Payload []uint64
}

// Communicator is one participant's view of the cluster.
type Communicator interface {
	// Rank returns this participant's identity in [0, Size()).
	Rank() int
	// Size returns the number of participants, coordinator included.
	Size() int
	// SendTaskCount delivers a worker's task count. Coordinator only.
	SendTaskCount(ctx context.Context, to, count int) error
	// RecvTaskCount blocks until this worker's task count arrives.
	RecvTaskCount(ctx context.Context) (int, error)
	// SendResidue sends a residue message to the coordinator.
	SendResidue(ctx context.Context, payload []uint64) error
	// RecvResidue blocks until a residue message arrives from any worker.
	// Coordinator only.
	RecvResidue(ctx context.Context) (Envelope, error)
	// Close releases the underlying resources.
	Close() error
}

func checkWorkerRank(to, size int) error {
	if to <= CoordinatorRank || to >= size {
		return fmt.Errorf("%w: %d (size %d)", ErrInvalidRank, to, size)
	}
	return nil
}
