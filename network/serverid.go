// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"strings"

	"github.com/jrick/bitset"

	"github.com/fonero-project/fnonetwork/errors"
)

// Protocol letters recognized by the federation wire protocol (spec §3).
const (
	ProtoTCP   = 't'
	ProtoTLS   = 's'
	ProtoHTTP  = 'h'
	ProtoHTTPS = 'g'
)

// protoIndex maps a protocol letter to its bit position in a
// ServerRecord's protocol bitset.
var protoIndex = map[byte]int{
	ProtoTCP:   0,
	ProtoTLS:   1,
	ProtoHTTP:  2,
	ProtoHTTPS: 3,
}

// DefaultPorts are the well-known ports used when a peer announcement
// omits one (spec §4.A, §4.B).
var DefaultPorts = map[byte]string{
	ProtoTCP:   "50001",
	ProtoTLS:   "50002",
	ProtoHTTP:  "8081",
	ProtoHTTPS: "8082",
}

// ServerID identifies a single federation server by host, port and
// protocol letter (spec §3). Equality is on the full triple.
type ServerID struct {
	Host     string
	Port     string
	Protocol byte
}

// String serializes a ServerID as "host:port:protocol".
func (s ServerID) String() string {
	return s.Host + ":" + s.Port + ":" + string(s.Protocol)
}

// ParseServerID parses a "host:port:protocol" triple.
func ParseServerID(s string) (ServerID, error) {
	const op errors.Op = "network.ParseServerID"
	parts := strings.Split(s, ":")
	if len(parts) != 3 || len(parts[2]) != 1 {
		return ServerID{}, errors.E(op, errors.Invalid, errors.Errorf("malformed server id %q", s))
	}
	return ServerID{Host: parts[0], Port: parts[1], Protocol: parts[2][0]}, nil
}

// ServerRecord describes one host's advertised protocols, pruning
// level, and protocol version (spec §3). ServerRecords are immutable
// once produced by the peer-list parser.
type ServerRecord struct {
	Host    string
	ports   map[byte]string
	protos  bitset.Bitset
	Pruning string
	Version string
}

// newServerRecord returns an empty, mutable-until-returned
// ServerRecord for host. Callers must call addProtocol at least once
// before treating the record as valid (spec §3 invariant).
func newServerRecord(host string) *ServerRecord {
	return &ServerRecord{
		Host:    host,
		ports:   make(map[byte]string, 4),
		protos:  bitset.New(4),
		Pruning: "-",
	}
}

func (r *ServerRecord) addProtocol(proto byte, port string) {
	if port == "" {
		port = DefaultPorts[proto]
	}
	r.ports[proto] = port
	if i, ok := protoIndex[proto]; ok {
		r.protos.Set(i)
	}
}

// HasProtocol reports whether the server advertises proto.
func (r *ServerRecord) HasProtocol(proto byte) bool {
	i, ok := protoIndex[proto]
	if !ok {
		return false
	}
	return r.protos.Get(i)
}

// Port returns the port advertised for proto and whether it is present.
func (r *ServerRecord) Port(proto byte) (string, bool) {
	p, ok := r.ports[proto]
	return p, ok
}

// ServerID builds the ServerID for this record's advertised proto, or
// the zero ServerID and false if proto is not advertised.
func (r *ServerRecord) ServerID(proto byte) (ServerID, bool) {
	port, ok := r.Port(proto)
	if !ok {
		return ServerID{}, false
	}
	return ServerID{Host: r.Host, Port: port, Protocol: proto}, true
}

// Empty reports whether no protocol was ever recorded — the invariant
// spec §3 requires a ServerRecord to violate before being dropped by
// the peer-list parser.
func (r *ServerRecord) Empty() bool {
	return len(r.ports) == 0
}
