// Copyright (c) 2015 The btcsuite developers
// Copyright (c) 2015-2017 The Decred developers
// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpchelp

import "github.com/fonero-project/fnonetwork/network"

// Common return types.
var (
	returnsBool        = []interface{}{(*bool)(nil)}
	returnsNumber      = []interface{}{(*float64)(nil)}
	returnsString      = []interface{}{(*string)(nil)}
	returnsStringArray = []interface{}{(*[]string)(nil)}
)

// Methods documents federation wire methods together with the Go type
// the JSON result decodes into: the three the coordinator itself issues
// on a main Interface (spec §4.D), plus server.version, which the
// coordinator never sends. It also lists, under CLI-style names, the
// coordinator operations a command-line client would wrap;
// coordinatorctl itself implements none of them as commands. It exists for the same reason the teacher's table does:
// a single source help output and client bindings can both be generated
// from, instead of duplicating the method/return-type pairing twice.
var Methods = []struct {
	Method      string
	ResultTypes []interface{}
}{
	// Federation server wire methods (spec §4.C, §6).
	{"blockchain.headers.subscribe", []interface{}{(*network.HeaderResult)(nil)}},
	{"server.peers.subscribe", []interface{}{(*[][]interface{})(nil)}},
	{"server.banner", returnsString},
	{"server.version", returnsStringArray},

	// Coordinator operations under CLI-style names; coordinatorctl does
	// not implement these as commands.
	{"getparameters", []interface{}{(*network.ServerID)(nil), (*string)(nil), returnsBool[0]}},
	{"setparameters", nil},
	{"getservers", []interface{}{(*[]network.ServerID)(nil)}},
	{"getinterfaces", []interface{}{(*[]network.ServerID)(nil)}},
	{"setserver", nil},
	{"status", returnsString},
	{"isconnected", returnsBool},
	{"isuptodate", returnsBool},
	{"getlocalheight", returnsNumber},
}
