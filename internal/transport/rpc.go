package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"sync"
)

// serviceName is the net/rpc service the coordinator registers.
const serviceName = "Coordinator"

// HelloArgs identifies a connecting worker.
type HelloArgs struct {
	Rank int
}

// HelloReply describes the cluster to a connecting worker.
type HelloReply struct {
	Size int
}

// AssignmentReply carries a worker's task count.
type AssignmentReply struct {
	Count int
}

// DeliverArgs carries one residue message.
type DeliverArgs struct {
	From    int
	Payload []uint64
}

// CoordinatorService is the RPC surface exposed by RPCCoordinator. Its
// exported methods follow the net/rpc calling convention.
type CoordinatorService struct {
	c *RPCCoordinator
}

// Hello reports the cluster size to a worker.
func (s *CoordinatorService) Hello(args HelloArgs, reply *HelloReply) error {
	if err := checkWorkerRank(args.Rank, s.c.size); err != nil {
		return err
	}
	reply.Size = s.c.size
	return nil
}

// Assignment blocks until the coordinator has decided the worker's task
// count.
func (s *CoordinatorService) Assignment(args HelloArgs, reply *AssignmentReply) error {
	if err := checkWorkerRank(args.Rank, s.c.size); err != nil {
		return err
	}
	select {
	case n := <-s.c.counts[args.Rank]:
		reply.Count = n
		return nil
	case <-s.c.done:
		return ErrClosed
	}
}

// Deliver queues a residue message for RecvResidue.
func (s *CoordinatorService) Deliver(args DeliverArgs, reply *bool) error {
	if err := checkWorkerRank(args.From, s.c.size); err != nil {
		return err
	}
	select {
	case s.c.inbox <- Envelope{From: args.From, Payload: args.Payload}:
		*reply = true
		return nil
	case <-s.c.done:
		return ErrClosed
	}
}

// RPCCoordinator is the coordinator side of the TCP transport. Workers dial
// it with DialWorker.
type RPCCoordinator struct {
	size     int
	listener net.Listener
	server   *rpc.Server

	counts []chan int
	inbox  chan Envelope

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

var _ Communicator = (*RPCCoordinator)(nil)

// ListenCoordinator listens on addr and serves a cluster of size
// participants until Close.
func ListenCoordinator(addr string, size int) (*RPCCoordinator, error) {
	if size < 1 {
		return nil, fmt.Errorf("transport: cluster size must be positive, got %d", size)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}

	c := &RPCCoordinator{
		size:     size,
		listener: ln,
		server:   rpc.NewServer(),
		counts:   make([]chan int, size),
		inbox:    make(chan Envelope, inboxDepth),
		done:     make(chan struct{}),
	}
	for i := range c.counts {
		c.counts[i] = make(chan int, 1)
	}
	if err := c.server.RegisterName(serviceName, &CoordinatorService{c: c}); err != nil {
		ln.Close()
		return nil, err
	}

	c.wg.Add(1)
	go c.accept()
	return c, nil
}

func (c *RPCCoordinator) accept() {
	defer c.wg.Done()
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			return
		}
		go c.server.ServeConn(conn)
	}
}

// Addr returns the address the coordinator is listening on.
func (c *RPCCoordinator) Addr() string { return c.listener.Addr().String() }

func (c *RPCCoordinator) Rank() int { return CoordinatorRank }

func (c *RPCCoordinator) Size() int { return c.size }

func (c *RPCCoordinator) SendTaskCount(ctx context.Context, to, count int) error {
	if err := checkWorkerRank(to, c.size); err != nil {
		return err
	}
	select {
	case c.counts[to] <- count:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *RPCCoordinator) RecvTaskCount(context.Context) (int, error) {
	return 0, ErrNotWorker
}

// SendResidue queues a message from the coordinator to itself.
func (c *RPCCoordinator) SendResidue(ctx context.Context, payload []uint64) error {
	select {
	case c.inbox <- Envelope{From: CoordinatorRank, Payload: append([]uint64(nil), payload...)}:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *RPCCoordinator) RecvResidue(ctx context.Context) (Envelope, error) {
	select {
	case msg := <-c.inbox:
		return msg, nil
	case <-c.done:
		return Envelope{}, ErrClosed
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

// Close stops accepting workers and fails any blocked calls.
func (c *RPCCoordinator) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.listener.Close()
		c.wg.Wait()
	})
	return err
}

// RPCWorker is the worker side of the TCP transport.
type RPCWorker struct {
	rank   int
	size   int
	client *rpc.Client
}

var _ Communicator = (*RPCWorker)(nil)

// DialWorker connects to the coordinator at addr as the given rank and
// learns the cluster size.
func DialWorker(ctx context.Context, addr string, rank int) (*RPCWorker, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	w := &RPCWorker{rank: rank, client: rpc.NewClient(conn)}

	var hello HelloReply
	if err := w.call(ctx, "Hello", HelloArgs{Rank: rank}, &hello); err != nil {
		w.client.Close()
		return nil, err
	}
	w.size = hello.Size
	return w, nil
}

func (w *RPCWorker) call(ctx context.Context, method string, args, reply any) error {
	call := w.client.Go(serviceName+"."+method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		if call.Error != nil {
			if errors.Is(call.Error, rpc.ErrShutdown) {
				return ErrClosed
			}
			return fmt.Errorf("transport: %s: %w", method, call.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *RPCWorker) Rank() int { return w.rank }

func (w *RPCWorker) Size() int { return w.size }

func (w *RPCWorker) SendTaskCount(context.Context, int, int) error {
	return ErrNotCoordinator
}

func (w *RPCWorker) RecvTaskCount(ctx context.Context) (int, error) {
	var reply AssignmentReply
	if err := w.call(ctx, "Assignment", HelloArgs{Rank: w.rank}, &reply); err != nil {
		return 0, err
	}
	return reply.Count, nil
}

func (w *RPCWorker) SendResidue(ctx context.Context, payload []uint64) error {
	var ok bool
	return w.call(ctx, "Deliver", DeliverArgs{From: w.rank, Payload: payload}, &ok)
}

func (w *RPCWorker) RecvResidue(context.Context) (Envelope, error) {
	return Envelope{}, ErrNotCoordinator
}

func (w *RPCWorker) Close() error { return w.client.Close() }
