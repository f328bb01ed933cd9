// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016 The Decred developers
// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import "github.com/fonero-project/fnonetwork/network"

// ServerIDFlag contains a network.ServerID and implements the
// flags.Marshaler and Unmarshaler interfaces so it can be used as a
// config struct field for the -s/--server coordinatorctl option.
type ServerIDFlag struct {
	ServerID network.ServerID
	isSet    bool
}

// NewServerIDFlag creates a ServerIDFlag with a default ServerID.
func NewServerIDFlag(defaultValue network.ServerID) *ServerIDFlag {
	return &ServerIDFlag{ServerID: defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (f *ServerIDFlag) MarshalFlag() (string, error) {
	if !f.isSet {
		return "", nil
	}
	return f.ServerID.String(), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (f *ServerIDFlag) UnmarshalFlag(server string) error {
	if server == "" {
		f.isSet = false
		return nil
	}
	id, err := network.ParseServerID(server)
	if err != nil {
		return err
	}
	f.ServerID = id
	f.isSet = true
	return nil
}
