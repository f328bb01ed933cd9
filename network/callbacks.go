// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import "sync"

// CallbackEvent names one of the four events the coordinator fires
// (spec §3, §4.E).
type CallbackEvent string

const (
	EventStatus  CallbackEvent = "status"
	EventUpdated CallbackEvent = "updated"
	EventBanner  CallbackEvent = "banner"
	EventServers CallbackEvent = "servers"
)

// CallbackRegistry maps event name to an ordered list of observers,
// fanned out on Trigger (spec §4.E). Observers must be cheap and
// non-blocking; Trigger snapshots the list under lock and invokes
// outside of it.
type CallbackRegistry struct {
	mu        sync.Mutex
	observers map[CallbackEvent][]func()
}

// NewCallbackRegistry returns an empty registry.
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{observers: make(map[CallbackEvent][]func())}
}

// Register appends observer to event's list.
func (r *CallbackRegistry) Register(event CallbackEvent, observer func()) {
	r.mu.Lock()
	r.observers[event] = append(r.observers[event], observer)
	r.mu.Unlock()
}

// Trigger snapshots event's observer list under the lock, then
// invokes each with no arguments outside of it.
func (r *CallbackRegistry) Trigger(event CallbackEvent) {
	r.mu.Lock()
	observers := append([]func(){}, r.observers[event]...)
	r.mu.Unlock()
	for _, o := range observers {
		o()
	}
}
