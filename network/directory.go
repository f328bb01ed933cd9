// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"math/rand"
	"sync"

	"github.com/fonero-project/fnonetwork/errors"
)

// bootstrapHosts is the built-in, process-wide constant server list.
// Never mutate this map directly — Directory.Servers always returns a
// fresh copy merged from it (spec §9: "avoid mutating the bootstrap
// map").
var bootstrapHosts = map[string]*ServerRecord{
	"explorer1.fnonetwork.example": bootstrapRecord("explorer1.fnonetwork.example"),
	"explorer2.fnonetwork.example": bootstrapRecord("explorer2.fnonetwork.example"),
	"explorer3.fnonetwork.example": bootstrapRecord("explorer3.fnonetwork.example"),
	"archive.fnonetwork.example":   bootstrapRecord("archive.fnonetwork.example"),
	"mirror.fnonetwork.example":    bootstrapRecord("mirror.fnonetwork.example"),
}

func bootstrapRecord(host string) *ServerRecord {
	r := newServerRecord(host)
	r.addProtocol(ProtoTCP, "")
	r.addProtocol(ProtoTLS, "")
	r.addProtocol(ProtoHTTP, "")
	r.addProtocol(ProtoHTTPS, "")
	return r
}

// ServerDirectory merges the three sources of server knowledge
// described in spec §3/§4.A: peer-announced servers (if non-empty,
// used exclusively), otherwise the bootstrap map augmented with the
// recent list.
type ServerDirectory struct {
	mu     sync.Mutex
	peers  map[string]*ServerRecord // non-nil once a peers.subscribe reply lands
	recent *RecentList
}

// NewServerDirectory returns a directory backed by recent.
func NewServerDirectory(recent *RecentList) *ServerDirectory {
	return &ServerDirectory{recent: recent}
}

// SetPeers replaces the peer-announced server set (§4.H on_peers). An
// empty map falls back to the bootstrap+recent merge.
func (d *ServerDirectory) SetPeers(peers map[string]*ServerRecord) {
	d.mu.Lock()
	d.peers = peers
	d.mu.Unlock()
}

// Servers returns a freshly built, caller-owned snapshot of the
// effective server set under the precedence rule of spec §4.A.
func (d *ServerDirectory) Servers() map[string]*ServerRecord {
	d.mu.Lock()
	peers := d.peers
	d.mu.Unlock()

	if len(peers) > 0 {
		out := make(map[string]*ServerRecord, len(peers))
		for h, r := range peers {
			out[h] = r
		}
		return out
	}

	out := make(map[string]*ServerRecord, len(bootstrapHosts))
	for h, r := range bootstrapHosts {
		out[h] = r
	}
	for _, sid := range d.recent.Snapshot() {
		if _, ok := out[sid.Host]; ok {
			continue
		}
		r := newServerRecord(sid.Host)
		r.addProtocol(sid.Protocol, sid.Port)
		out[sid.Host] = r
	}
	return out
}

// ListByProtocol returns every ServerID advertising proto.
func (d *ServerDirectory) ListByProtocol(proto byte) []ServerID {
	servers := d.Servers()
	out := make([]ServerID, 0, len(servers))
	for _, r := range servers {
		if sid, ok := r.ServerID(proto); ok {
			out = append(out, sid)
		}
	}
	return out
}

// PickRandom returns a uniformly random ServerID advertising proto.
func (d *ServerDirectory) PickRandom(proto byte) (ServerID, error) {
	const op errors.Op = "network.ServerDirectory.PickRandom"
	l := d.ListByProtocol(proto)
	if len(l) == 0 {
		return ServerID{}, errors.E(op, errors.NoPeers, errors.Errorf("no servers advertise protocol %q", string(proto)))
	}
	return l[rand.Intn(len(l))], nil
}
