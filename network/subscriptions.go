// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"fmt"
	"reflect"
	"sync"
)

// messageKey is a (method, args) pair structurally compared for
// dedup, per spec §9 ("deduplication should be structural on
// (method, args), not on the token alone").
type messageKey struct {
	method string
	args   string // a stable, comparable encoding of Args
}

func keyOf(r Request) messageKey {
	return messageKey{method: r.Method, args: encodeArgs(r.Args)}
}

func encodeArgs(args []interface{}) string {
	// Args are always small, JSON-shaped literals (method parameters),
	// so a reflect.DeepEqual-grade stable string is enough; there is
	// no need for a JSON encoder here purely to build a dedup key.
	b := make([]byte, 0, 32)
	for _, a := range args {
		b = append(b, []byte(reflect.TypeOf(a).String())...)
		b = append(b, ':')
		b = append(b, []byte(reflectString(a))...)
		b = append(b, ';')
	}
	return string(b)
}

func reflectString(v interface{}) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return fmt.Sprintf("%#v", v)
}

// subEntry is one observer's ordered, deduplicated subscription list.
type subEntry struct {
	observer Observer
	messages []Request
	seen     map[messageKey]bool
}

// SubscriptionRegistry is the mapping from observer to its
// subscription list (spec §3, §4.D). Insertion is idempotent on
// (observer, method, args); on promotion of a new main Interface,
// every (observer, messages) pair is replayed over it before the
// status=connected callback fires (spec §5 ordering guarantee).
type SubscriptionRegistry struct {
	mu      sync.Mutex
	entries []*subEntry
	byObs   map[*subEntry]bool
}

// NewSubscriptionRegistry returns an empty registry pre-seeded with
// the two subscriptions every Network carries (spec §4.D): on_banner
// and on_peers. blockchain.headers.subscribe is not pre-seeded here —
// it is sent at pool admission for every connected Interface, not
// replayed through this registry (spec §4.D, §4.H).
func NewSubscriptionRegistry(onBanner, onPeers Observer) *SubscriptionRegistry {
	r := &SubscriptionRegistry{byObs: make(map[*subEntry]bool)}
	r.Subscribe([]Request{{Method: "server.banner"}}, onBanner)
	r.Subscribe([]Request{{Method: "server.peers.subscribe"}}, onPeers)
	return r
}

func (r *SubscriptionRegistry) entryFor(observer Observer) *subEntry {
	for _, e := range r.entries {
		if sameObserver(e.observer, observer) {
			return e
		}
	}
	e := &subEntry{observer: observer, seen: make(map[messageKey]bool)}
	r.entries = append(r.entries, e)
	return e
}

// sameObserver compares Observer function values by pointer identity,
// the Go analogue of the source's callable-identity dictionary key
// (spec §9).
func sameObserver(a, b Observer) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// Subscribe appends new messages to observer's subscription list,
// deduplicated structurally, and returns the subset that was newly
// added. The caller (Network.Subscribe) forwards that subset to the
// main Interface immediately when one is connected; otherwise they
// simply wait in the registry for the next promotion (spec §4.D).
func (r *SubscriptionRegistry) Subscribe(messages []Request, observer Observer) []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entryFor(observer)
	var fresh []Request
	for _, m := range messages {
		k := keyOf(m)
		if e.seen[k] {
			continue
		}
		e.seen[k] = true
		e.messages = append(e.messages, m)
		fresh = append(fresh, m)
	}
	return fresh
}

// ReplayAll retransmits every (observer, messages) pair over main,
// called on promotion of a new main Interface (spec §4.D, §4.G).
func (r *SubscriptionRegistry) ReplayAll(main Interface) {
	r.mu.Lock()
	type pair struct {
		messages []Request
		observer Observer
	}
	pairs := make([]pair, 0, len(r.entries))
	for _, e := range r.entries {
		if len(e.messages) == 0 {
			continue
		}
		msgs := make([]Request, len(e.messages))
		copy(msgs, e.messages)
		pairs = append(pairs, pair{messages: msgs, observer: e.observer})
	}
	r.mu.Unlock()

	for _, p := range pairs {
		main.Send(p.messages, p.observer)
	}
}
