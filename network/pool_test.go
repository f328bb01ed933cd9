package network

import (
	"context"
	"testing"
	"time"
)

func newTestPool(t *testing.T, protocol byte, numServer int) (*ConnectionPool, map[ServerID]*fakeInterface) {
	t.Helper()
	made := make(map[ServerID]*fakeInterface)
	newInterface := func(server ServerID) Interface {
		f := newFakeInterface(server)
		made[server] = f
		return f
	}
	directory := NewServerDirectory(NewRecentList(nil))
	return NewConnectionPool(newInterface, directory, protocol, numServer), made
}

func TestStartInterfaceNoOpWhenConnected(t *testing.T) {
	pool, made := newTestPool(t, ProtoTLS, 4)
	queue := make(chan StatusEvent, 8)
	ctx := context.Background()
	server := ServerID{Host: "h1", Port: "1", Protocol: ProtoTLS}

	i := pool.StartInterface(ctx, queue, server)
	waitMade(t, made, server)
	f := made[server]
	f.reportConnected(queue)
	pool.RemovePending(server)
	pool.MarkConnected(server, f)

	again := pool.StartInterface(ctx, queue, server)
	if again != i {
		t.Fatal("StartInterface on an already-connected server should return the existing Interface")
	}
}

func waitMade(t *testing.T, made map[ServerID]*fakeInterface, server ServerID) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := made[server]; ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("interface for %v was never constructed", server)
}

func TestStartRandomInterfaceClearsDisconnectedWhenPoolEmpty(t *testing.T) {
	pool, _ := newTestPool(t, 'x', 4) // protocol 'x' matches no bootstrap host
	pool.disconnected[ServerID{Host: "stale", Port: "1", Protocol: 'x'}] = true

	queue := make(chan StatusEvent, 1)
	pool.StartRandomInterface(context.Background(), queue)

	if len(pool.disconnected) != 0 {
		t.Fatal("expected disconnected set to be cleared when no candidates remain and pool is empty")
	}
}

func TestPoolSizeBound(t *testing.T) {
	pool, made := newTestPool(t, ProtoTLS, 3)
	queue := make(chan StatusEvent, 8)
	ctx := context.Background()

	servers := []ServerID{
		{Host: "a", Port: "1", Protocol: ProtoTLS},
		{Host: "b", Port: "1", Protocol: ProtoTLS},
	}
	for _, s := range servers {
		pool.StartInterface(ctx, queue, s)
	}
	for _, s := range servers {
		waitMade(t, made, s)
	}

	if got := pool.Size(); got > pool.NumServer()+1 {
		t.Fatalf("pool size bound violated: %d > %d", got, pool.NumServer()+1)
	}
}
