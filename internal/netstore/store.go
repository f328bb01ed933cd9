// Copyright (c) 2018 The Decred developers
// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netstore is the coordinator's persistent network.Config,
// storing the recognized keys of spec §6 (default server, protocol,
// proxy, auto_cycle, oneserver, recent_servers) in a boltdb bucket the
// way the teacher's wallet store keeps its own per-key buckets.
package netstore

import (
	"encoding/json"

	"github.com/boltdb/bolt"
	"github.com/fonero-project/fnonetwork/errors"
)

var configBucketKey = []byte("networkconfig")

// Store is a boltdb-backed network.Config implementation. Every SetKey
// call commits immediately: unlike the in-memory MemConfig used by
// tests, there is nothing to gain by deferring a disk flush, so the
// saveImmediately hint is accepted for interface compatibility only.
type Store struct {
	db *bolt.DB
}

// Open creates (if needed) the config bucket in db and returns a Store
// backed by it. db is owned by the caller; Store never closes it.
func Open(db *bolt.DB) (*Store, error) {
	const op errors.Op = "netstore.Open"
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(configBucketKey)
		return err
	})
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return &Store{db: db}, nil
}

// Get implements network.Config. The stored value is unmarshaled into
// the same dynamic type as defaultValue to give callers back a usable
// concrete type (string, bool, int, or []string) rather than interface{}
// wrapping raw JSON.
func (s *Store) Get(key string, defaultValue interface{}) interface{} {
	var raw []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(configBucketKey)
		if v := b.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if raw == nil {
		return defaultValue
	}

	switch defaultValue.(type) {
	case bool:
		var v bool
		if json.Unmarshal(raw, &v) == nil {
			return v
		}
	case int:
		var v int
		if json.Unmarshal(raw, &v) == nil {
			return v
		}
	case []string:
		var v []string
		if json.Unmarshal(raw, &v) == nil {
			return v
		}
	default:
		var v string
		if json.Unmarshal(raw, &v) == nil {
			return v
		}
	}
	return defaultValue
}

// SetKey implements network.Config.
func (s *Store) SetKey(key string, value interface{}, saveImmediately bool) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Errorf("netstore: marshal %s: %v", key, err)
		return
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(configBucketKey).Put([]byte(key), raw)
	})
	if err != nil {
		log.Errorf("netstore: persist %s: %v", key, err)
	}
}
