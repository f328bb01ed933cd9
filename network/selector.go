// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"math/rand"
	"sync"

	"github.com/fonero-project/fnonetwork/errors"
)

// Status is the coordinator's connection_status (spec §3).
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Selector owns the main-interface slot and the connection_status
// state machine of spec §4.G. It is driven exclusively by the event
// loop (network.go); the mutex below only protects reads from other
// goroutines (status/default server queries), matching spec §5's
// policy that PoolSets/Selector state is owned by the event loop.
type Selector struct {
	mu            sync.Mutex
	status        Status
	defaultServer ServerID
	main          Interface // nil when status != connected

	config  Config
	subs    *SubscriptionRegistry
	onHdr   Observer
	cb      *CallbackRegistry
	heights map[ServerID]int
}

// NewSelector returns a Selector with defaultServer as its intended
// main and status "connecting" (spec §3 initial state).
func NewSelector(defaultServer ServerID, config Config, subs *SubscriptionRegistry, onHeader Observer, cb *CallbackRegistry) *Selector {
	return &Selector{
		status:        StatusConnecting,
		defaultServer: defaultServer,
		config:        config,
		subs:          subs,
		onHdr:         onHeader,
		cb:            cb,
		heights:       make(map[ServerID]int),
	}
}

// Status returns the current connection_status.
func (s *Selector) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// DefaultServer returns the intended main ServerID, which mirrors the
// main slot even during startup/reconnect gaps (spec §3).
func (s *Selector) DefaultServer() ServerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultServer
}

// Main returns the current main Interface, or nil if none (spec §3).
func (s *Selector) Main() Interface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.main
}

// IsConnected reports whether a main Interface is held and connected.
func (s *Selector) IsConnected() bool {
	s.mu.Lock()
	m := s.main
	s.mu.Unlock()
	return m != nil && m.IsConnected()
}

func (s *Selector) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.cb.Trigger(EventStatus)
}

// RecordHeight updates the HeightTable for server (spec §3; called
// from the event loop's OnHeader before forwarding to Blockchain,
// spec §5 ordering guarantee).
func (s *Selector) RecordHeight(server ServerID, height int) {
	s.mu.Lock()
	s.heights[server] = height
	s.mu.Unlock()
}

// ServerHeight returns the last reported height for server, or
// (0, false) if it never reported (spec §3).
func (s *Selector) ServerHeight(server ServerID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.heights[server]
	return h, ok
}

// ForgetHeight drops server's entry, called when it disconnects (spec §4.H).
func (s *Selector) ForgetHeight(server ServerID) {
	s.mu.Lock()
	delete(s.heights, server)
	s.mu.Unlock()
}

// ServerIsLagging reports whether localHeight exceeds the main's
// reported height by more than one block (spec §4.G). A main with no
// recorded height is never considered lagging.
func (s *Selector) ServerIsLagging(localHeight int) bool {
	s.mu.Lock()
	main := s.defaultServer
	h, ok := s.heights[main]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return localHeight-h > 1
}

// AdmitConnected is called at pool admission for every newly connected
// Interface, main or not (spec §4.D: headers.subscribe fires for all
// connected peers so lag is measurable). If iface is the intended
// main, subscriptions are replayed and status transitions to
// connected, strictly before the status callback fires (spec §5).
func (s *Selector) AdmitConnected(iface Interface) {
	s.mu.Lock()
	isMain := iface.Server() == s.defaultServer
	s.mu.Unlock()
	if !isMain {
		return
	}
	s.promoteLocked(iface)
}

// promoteLocked installs iface as main, replays subscriptions, and
// fires the connected status callback. The precondition that the
// previous main handle is not connected is the caller's
// responsibility to have arranged (spec §4.G "Promotion precondition").
func (s *Selector) promoteLocked(iface Interface) {
	s.mu.Lock()
	s.main = iface
	s.mu.Unlock()
	s.subs.ReplayAll(iface)
	s.setStatus(StatusConnected)
}

// Demote clears the main slot on disconnect of the current main (spec
// §4.G "connected" → "disconnected").
func (s *Selector) Demote(iface Interface) {
	s.mu.Lock()
	isMain := s.main != nil && s.main.Server() == iface.Server()
	if isMain {
		s.main = nil
	}
	s.mu.Unlock()
	if isMain {
		s.setStatus(StatusDisconnected)
	}
}

// PromoteRandom promotes a uniformly random member of connected when
// there is currently no main (spec §4.G "disconnected" → "connected",
// auto-cycle). No-op if connected is empty or a main is already set.
func (s *Selector) PromoteRandom(connected []Interface) {
	s.mu.Lock()
	hasMain := s.main != nil
	s.mu.Unlock()
	if hasMain || len(connected) == 0 {
		return
	}
	pick := connected[rand.Intn(len(connected))]

	s.mu.Lock()
	s.defaultServer = pick.Server()
	s.mu.Unlock()
	s.config.SetKey(ConfigServer, pick.Server().String(), false)
	s.promoteLocked(pick)
}

// SetServer implements spec §4.G set_server:
//  1. no-op if server is already default and main is connected;
//  2. error if server's protocol differs from the pool's current one
//     (caller must change protocol first);
//  3. otherwise stop the current main if connected, mark connecting,
//     persist the new default, and promote server if it is already
//     connected. The returned bool reports whether the caller must
//     still ask the pool to StartInterface(server) itself.
func (s *Selector) SetServer(server ServerID, pool *ConnectionPool) (needsStart bool, err error) {
	const op errors.Op = "network.Selector.SetServer"

	s.mu.Lock()
	sameServer := s.defaultServer == server
	main := s.main
	s.mu.Unlock()
	if sameServer && main != nil && main.IsConnected() {
		return false, nil
	}
	if server.Protocol != pool.Protocol() {
		return false, errors.E(op, errors.Invalid, errors.Errorf("protocol %q does not match current protocol %q", string(server.Protocol), string(pool.Protocol())))
	}

	if main != nil && main.IsConnected() {
		pool.StopInterface(main.Server())
	}
	s.setStatus(StatusConnecting)

	s.mu.Lock()
	s.defaultServer = server
	s.main = nil
	s.mu.Unlock()
	s.config.SetKey(ConfigServer, server.String(), true)

	if existing, ok := pool.Connected(server); ok {
		s.promoteLocked(existing)
		return false, nil
	}
	return true, nil
}
