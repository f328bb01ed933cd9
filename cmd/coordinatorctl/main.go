// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/boltdb/bolt"

	"github.com/fonero-project/fnonetwork/internal/netstore"
	"github.com/fonero-project/fnonetwork/internal/rpcerror"
	"github.com/fonero-project/fnonetwork/network"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return err
	}
	if err := initLogRotator(filepath.Join(cfg.DataDir, defaultLogFilename)); err != nil {
		return err
	}
	if err := setLogLevels(cfg.DebugLevel); err != nil {
		return err
	}

	db, err := bolt.Open(filepath.Join(cfg.DataDir, "network.db"), 0600, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := netstore.Open(db)
	if err != nil {
		return err
	}
	seedConfig(store, cfg)

	n, err := network.New(network.Options{Config: store})
	if err != nil {
		result := rpcerror.Convert(err)
		return fmt.Errorf("%s: %s", result.Code, result.Message)
	}

	n.RegisterCallback(network.EventStatus, func() {
		log.Infof("connection status: %v", n.Status())
	})
	n.RegisterCallback(network.EventBanner, func() {
		log.Infof("server banner updated: %s", n.Banner())
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	log.Info("shutting down")
	n.Stop()
	n.WaitForShutdown()
	return nil
}

// seedConfig persists the command-line options into store before the
// Network is constructed, so New's Config.Get calls observe them. The
// server and proxy are written only when given; oneserver, auto_cycle
// and numserver are always written, so their flag values (or flag
// defaults) replace whatever was stored.
func seedConfig(store *netstore.Store, cfg *config) {
	if cfg.Server != nil {
		if s, err := cfg.Server.MarshalFlag(); err == nil && s != "" {
			store.SetKey(network.ConfigServer, s, true)
		}
	}
	if cfg.Proxy != "" {
		store.SetKey(network.ConfigProxy, cfg.Proxy, true)
	}
	store.SetKey(network.ConfigOneServer, cfg.OneServer, true)
	store.SetKey(network.ConfigAutoCycle, !cfg.NoAutoCycle, true)
	store.SetKey(network.ConfigNumServer, cfg.NumServer, true)
}
