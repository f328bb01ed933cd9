// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2016-2018 The Decred developers
// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpcerror converts the house errors.Error type into a stable,
// numeric code suitable for coordinatorctl's machine-readable output,
// the same role the teacher's legacyrpc.convertError played in turning
// wallet errors into fnojson.RPCError codes for JSON-RPC clients.
package rpcerror

import "github.com/fonero-project/fnonetwork/errors"

// Code is a stable identifier for an error.Kind, safe to print in
// scripts that key off exit codes or JSON output rather than message
// text.
type Code int

// Recognized codes. Other is always 0 so an unclassified error and a
// missing field decode to the same zero value.
const (
	Other Code = iota
	Bug
	Invalid
	IO
	NoPeers
	Protocol
)

func (c Code) String() string {
	switch c {
	case Bug:
		return "bug"
	case Invalid:
		return "invalid"
	case IO:
		return "io"
	case NoPeers:
		return "no_peers"
	case Protocol:
		return "protocol"
	default:
		return "other"
	}
}

// Result is the (code, message) pair coordinatorctl prints for a
// failed command.
type Result struct {
	Code    Code
	Message string
}

// Convert classifies a house *errors.Error by mapping its Kind (looking
// through nested *Errors that set no Kind) to a Code. Any other error,
// including one that merely wraps a house error, converts to Other
// with its plain Error() text.
func Convert(err error) Result {
	e, ok := err.(*errors.Error)
	if !ok {
		return Result{Code: Other, Message: err.Error()}
	}
	code := Other
	switch {
	case errors.Match(errors.Bug, e):
		code = Bug
	case errors.Match(errors.Invalid, e):
		code = Invalid
	case errors.Match(errors.IO, e):
		code = IO
	case errors.Match(errors.NoPeers, e):
		code = NoPeers
	case errors.Match(errors.Protocol, e):
		code = Protocol
	}
	return Result{Code: code, Message: e.Error()}
}
