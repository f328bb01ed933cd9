// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/fonero-project/fnonetwork/internal/cfgutil"
	"github.com/fonero-project/fnonetwork/network"
)

const (
	defaultDataDirname = "coordinatorctl"
	defaultLogFilename = "coordinatorctl.log"
	defaultNumServer   = 8
)

// config defines the coordinatorctl options parsed from the command
// line, in the style of the teacher's go-flags option structs. No
// config file is read.
type config struct {
	DataDir     string                `short:"b" long:"datadir" description:"Directory to store the server config and persisted network state"`
	DebugLevel  string                `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	Server      *cfgutil.ServerIDFlag `short:"s" long:"server" description:"Main federation server (host:port:protocol) to connect to"`
	Proxy       string                `long:"proxy" description:"SOCKS5 proxy address to route federation connections through"`
	OneServer   bool                  `long:"oneserver" description:"Only ever maintain a single connection to the main server"`
	NoAutoCycle bool                  `long:"noautocycle" description:"Disable automatic failover to a fresh server when the main falls behind"`
	NumServer   int                   `long:"numserver" description:"Target size of the connection pool"`
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, defaultDataDirname)
}

func defaultConfig() *config {
	return &config{
		DataDir:    defaultDataDir(),
		DebugLevel: "info",
		Server:     cfgutil.NewServerIDFlag(network.ServerID{}),
		NumServer:  defaultNumServer,
	}
}

// loadConfig parses command-line arguments into a config seeded with
// defaultConfig's values.
func loadConfig() (*config, []string, error) {
	cfg := defaultConfig()
	parser := flags.NewParser(cfg, flags.Default)
	remaining, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}
	return cfg, remaining, nil
}
