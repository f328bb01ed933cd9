// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import "context"

// Request is one (method, args) pair sent to a federation server.
// Argument encoding is left to the Interface implementation.
type Request struct {
	Method string
	Args   []interface{}
}

// Response is a shapeless reply to a Request.
type Response struct {
	Method string
	Result interface{}
	Err    error
}

// Observer receives replies for requests it registered via Send or
// Subscribe. It is invoked on the Interface's own goroutine (spec
// §4.C) and must not block.
type Observer func(i Interface, resp Response)

// StatusEvent is the single kind of value an Interface ever enqueues
// onto the coordinator's ingress queue (spec §4.C, §5).
type StatusEvent struct {
	Interface   Interface
	IsConnected bool
}

// Interface is one live (or being-established) connection to a single
// federation server (spec §4.C). The per-connection transport itself
// — TLS/TCP/HTTP framing, JSON encode/decode, keep-alive — is an
// opaque collaborator per spec §1; this is its contract only.
//
// The coordinator never reads private Interface state: every enqueued
// StatusEvent is treated as a complete observation.
type Interface interface {
	// Start begins connecting. Exactly one StatusEvent for this
	// Interface is pushed onto queue per connect-attempt outcome. An
	// implementation may block until the attempt resolves (WSInterface
	// does); ConnectionPool calls Start on its own goroutine.
	Start(ctx context.Context, queue chan<- StatusEvent)

	// Send is best-effort: if connected, requests are transmitted and
	// each reply invokes observer on the Interface's own goroutine.
	// If not connected, Send is a silent no-op (spec §4.D "Send").
	Send(requests []Request, observer Observer)

	// SynchronousGet blocks the calling goroutine (not the event
	// loop) until every request has a response, or ctx is done.
	SynchronousGet(ctx context.Context, requests []Request) ([]Response, error)

	// Stop closes the connection. If it was connected, a final
	// StatusEvent with IsConnected=false is enqueued.
	Stop()

	// Server identifies this Interface's target.
	Server() ServerID

	// IsConnected reports the last known connection state.
	IsConnected() bool

	// IsUpToDate reports whether this Interface believes its peer has
	// caught up to the rest of the federation. The coordinator treats
	// this as advisory; it is not used by the lag check (§4.G, which
	// compares reported heights instead).
	IsUpToDate() bool
}
