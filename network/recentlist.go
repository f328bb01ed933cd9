// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import "sync"

// recentListCap is the maximum length of the MRU recent-server list
// (spec §3, §8 "Recent list" invariant).
const recentListCap = 20

// RecentList is the MRU, cap-20, dedup-on-insert list of ServerIDs
// that have connected successfully (spec §3). It is written only from
// the event loop; reads are safe from any goroutine.
type RecentList struct {
	mu    sync.Mutex
	items []ServerID
}

// NewRecentList returns a RecentList seeded from a persisted slice,
// most-recent first, truncated/deduplicated to the invariant.
func NewRecentList(seed []ServerID) *RecentList {
	l := &RecentList{}
	for i := len(seed) - 1; i >= 0; i-- {
		l.Add(seed[i])
	}
	return l
}

// Add moves server to the head of the list, inserting it if absent,
// and truncates to recentListCap.
func (l *RecentList) Add(server ServerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.items {
		if s == server {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	l.items = append([]ServerID{server}, l.items...)
	if len(l.items) > recentListCap {
		l.items = l.items[:recentListCap]
	}
}

// Snapshot returns a caller-owned copy of the list, most recent first.
func (l *RecentList) Snapshot() []ServerID {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ServerID, len(l.items))
	copy(out, l.items)
	return out
}
