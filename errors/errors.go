// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package errors implements the house error type used by the rest of
// this module, in the style of the (unvendored) errors package the
// teacher's chain, rpc, and wallet packages built on.
package errors

import (
	"bytes"
	"fmt"
)

// Kind describes the kind of error reported, independent of the
// operation that produced it.
type Kind string

// Error satisfies the error interface and may be used to describe the
// kind of an error without inspecting Err, and to report an operation
// and its context.
const (
	// Other indicates an unclassified error.
	Other Kind = "unclassified error"

	// Bug indicates an internal invariant was violated and is
	// indicative of a programming error, not a runtime condition.
	Bug Kind = "internal error"

	// Invalid indicates an invalid operation was requested, such as
	// one given malformed arguments.
	Invalid Kind = "invalid operation"

	// IO describes an error from a failed I/O operation, such as a
	// failed Interface connect/send.
	IO Kind = "I/O error"

	// NoPeers describes an operation that requires a connected main
	// interface when none is currently connected.
	NoPeers Kind = "not connected to any server"

	// Protocol describes a malformed or unexpected wire message from a
	// federation server.
	Protocol Kind = "protocol error"
)

// String returns the string representation of a Kind.
func (k Kind) String() string { return string(k) }

// Op describes the operation, function, or method name that produced
// an error.
type Op string

// Error is the house error type. A nil *Error, asserted through the
// error interface, is not itself nil; always construct Errors through
// E or Errorf.
type Error struct {
	Op   Op
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var buf bytes.Buffer
	if e.Op != "" {
		buf.WriteString(string(e.Op))
	}
	if e.Kind != "" {
		if buf.Len() > 0 {
			buf.WriteString(": ")
		}
		buf.WriteString(string(e.Kind))
	}
	if e.Err != nil {
		if buf.Len() > 0 {
			buf.WriteString(": ")
		}
		buf.WriteString(e.Err.Error())
	}
	if buf.Len() == 0 {
		return "no error"
	}
	return buf.String()
}

// Unwrap returns the underlying error, if any, so callers may use
// errors.Is/errors.As from the standard library against the house
// error type.
func (e *Error) Unwrap() error { return e.Err }

// Ops returns the operation chain recorded by e and any wrapped
// *Errors, outermost first.
func (e *Error) Ops() []Op {
	var ops []Op
	if e.Op != "" {
		ops = append(ops, e.Op)
	}
	if sub, ok := e.Err.(*Error); ok {
		ops = append(ops, sub.Ops()...)
	}
	return ops
}

// E builds an *Error from its arguments. There must be at least one
// argument or E panics. The type of each argument determines its
// meaning:
//
//	Op
//		The operation being performed.
//	Kind
//		The class of error.
//	error
//		The underlying error this error wraps.
//	string
//		Treated as an error message via errors.New and set as Err,
//		unless Err is already set, in which case it is ignored.
//
// If the wrapped error is itself an *Error and does not already carry
// a Kind, the Kind is propagated up from the wrapped error.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E called with no arguments")
	}
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case *Error:
			cp := *a
			e.Err = &cp
		case error:
			e.Err = a
		case string:
			e.Err = stringError(a)
		default:
			panic(fmt.Sprintf("errors.E: bad call argument %T: %v", arg, arg))
		}
	}
	if e.Kind == "" {
		if prev, ok := e.Err.(*Error); ok {
			e.Kind = prev.Kind
		}
	}
	return e
}

// Errorf is equivalent to E(fmt.Sprintf(format, args...)) and is used
// for ad-hoc error text that does not merit its own Kind.
func Errorf(format string, args ...interface{}) error {
	return &Error{Err: fmt.Errorf(format, args...)}
}

type stringError string

func (s stringError) Error() string { return string(s) }

// Match reports whether err is an *Error of kind k, unwrapping nested
// *Errors that do not themselves set a Kind.
func Match(k Kind, err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	if e.Kind != "" {
		return e.Kind == k
	}
	if sub, ok := e.Err.(*Error); ok {
		return Match(k, sub)
	}
	return false
}
