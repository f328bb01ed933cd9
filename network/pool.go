// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// maxInFlightConnects bounds how many Interfaces may be mid-dial at
// once, so StartRandomInterface cannot stampede the federation when
// the pool refills after a mass disconnect.
const maxInFlightConnects = 4

// NewInterfaceFunc constructs an unstarted Interface for server. It is
// a seam so tests can substitute a fake Interface for WSInterface.
type NewInterfaceFunc func(server ServerID) Interface

// ConnectionPool is the Start/stop/track state machine of spec §4.F.
// PoolSets (pending/connected/disconnected) are owned and mutated only
// by the event loop that calls into this type; see spec §5 "Shared
// resource policy".
type ConnectionPool struct {
	newInterface NewInterfaceFunc
	directory    *ServerDirectory
	protocol     byte
	numServer    int

	sem *semaphore.Weighted

	pending      map[ServerID]bool
	connected    map[ServerID]Interface
	disconnected map[ServerID]bool
}

// NewConnectionPool returns an empty pool targeting numServer peers
// (0 disables refill — "single-server mode", spec §4.F) of protocol.
func NewConnectionPool(newInterface NewInterfaceFunc, directory *ServerDirectory, protocol byte, numServer int) *ConnectionPool {
	return &ConnectionPool{
		newInterface: newInterface,
		directory:    directory,
		protocol:     protocol,
		numServer:    numServer,
		sem:          semaphore.NewWeighted(maxInFlightConnects),
		pending:      make(map[ServerID]bool),
		connected:    make(map[ServerID]Interface),
		disconnected: make(map[ServerID]bool),
	}
}

// StartInterface is a no-op if server is already connected; otherwise
// it constructs an Interface, places it in pending, and starts it
// (spec §4.F). Returns the constructed (or existing connected)
// Interface, or nil if server is already pending. If ctx is done
// before a connect slot frees up, the constructed Interface is
// returned unstarted and stays in pending.
func (p *ConnectionPool) StartInterface(ctx context.Context, queue chan<- StatusEvent, server ServerID) Interface {
	if existing, ok := p.connected[server]; ok {
		return existing
	}
	if p.pending[server] {
		return nil
	}
	i := p.newInterface(server)
	p.pending[server] = true
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return i
	}
	go func() {
		defer p.sem.Release(1)
		i.Start(ctx, queue)
	}()
	return i
}

// StartRandomInterface chooses a candidate from
// ListByProtocol(protocol) minus (pending ∪ disconnected ∪ connected).
// If none remain and connected is empty, the disconnected set is
// cleared under the assumption the network is transiently down (spec
// §4.F, §7 "empty candidate set").
func (p *ConnectionPool) StartRandomInterface(ctx context.Context, queue chan<- StatusEvent) {
	candidates := p.directory.ListByProtocol(p.protocol)
	var pick *ServerID
	for _, c := range candidates {
		c := c
		if p.pending[c] || p.disconnected[c] {
			continue
		}
		if _, ok := p.connected[c]; ok {
			continue
		}
		pick = &c
		break
	}
	if pick == nil {
		if len(p.connected) == 0 {
			p.disconnected = make(map[ServerID]bool)
		}
		return
	}
	p.StartInterface(ctx, queue, *pick)
}

// StopInterface requests server's Interface stop; removal from
// connected happens only when its final StatusEvent arrives through
// the event loop (spec §4.F).
func (p *ConnectionPool) StopInterface(server ServerID) {
	if i, ok := p.connected[server]; ok {
		i.Stop()
	}
}

// StopAll stops every connected Interface concurrently, used on
// protocol/proxy change (spec §4.F). It fans the Stop() calls out
// through an errgroup the way the teacher's chain.RPCClient.Stop
// coordinates disconnect and handler-goroutine shutdown.
func (p *ConnectionPool) StopAll() {
	var g errgroup.Group
	for _, i := range p.connected {
		i := i
		g.Go(func() error {
			i.Stop()
			return nil
		})
	}
	_ = g.Wait()
}

// Size returns |connected| + |pending| for the pool-size-bound
// invariant (spec §8).
func (p *ConnectionPool) Size() int {
	return len(p.connected) + len(p.pending)
}

// ConnectedCount returns |connected|, used by the event loop to choose
// its poll timeout (spec §4.H step 1); the refill decision uses Size.
func (p *ConnectionPool) ConnectedCount() int {
	return len(p.connected)
}

// NumServer returns the pool's target size.
func (p *ConnectionPool) NumServer() int { return p.numServer }

// SetProtocolAndProxy updates the pool's target protocol; callers must
// StopAll before changing protocol (spec §4.F "on protocol change").
// The new proxy is threaded through to future Interfaces via
// newInterface, which the Network rebuilds on protocol/proxy change.
func (p *ConnectionPool) SetProtocolAndProxy(protocol byte, newInterface NewInterfaceFunc) {
	p.protocol = protocol
	p.newInterface = newInterface
}

// Protocol returns the pool's current target protocol.
func (p *ConnectionPool) Protocol() byte { return p.protocol }

// RemovePending drops server from pending. Every StatusEvent causes
// its server to leave pending before being classified into connected
// or disconnected (spec §3 invariant).
func (p *ConnectionPool) RemovePending(server ServerID) {
	delete(p.pending, server)
}

// MarkConnected records server as connected, held by iface.
func (p *ConnectionPool) MarkConnected(server ServerID, iface Interface) {
	delete(p.disconnected, server)
	p.connected[server] = iface
}

// MarkDisconnected removes server from connected (if present) and adds
// it to disconnected.
func (p *ConnectionPool) MarkDisconnected(server ServerID) {
	delete(p.connected, server)
	p.disconnected[server] = true
}

// Connected returns the Interface held for server, if connected.
func (p *ConnectionPool) Connected(server ServerID) (Interface, bool) {
	i, ok := p.connected[server]
	return i, ok
}

// ConnectedInterfaces returns a caller-owned snapshot of every
// currently connected Interface.
func (p *ConnectionPool) ConnectedInterfaces() []Interface {
	out := make([]Interface, 0, len(p.connected))
	for _, i := range p.connected {
		out = append(out, i)
	}
	return out
}
