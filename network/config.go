// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import "sync"

// Recognized Config keys (spec §6).
const (
	ConfigServer        = "server"
	ConfigProtocol      = "protocol"
	ConfigProxy         = "proxy"
	ConfigAutoCycle     = "auto_cycle"
	ConfigOneServer     = "oneserver"
	ConfigRecentServers = "recent_servers"
	ConfigNumServer     = "numserver"
)

// Config is the key-value persistence collaborator (spec §6), treated
// as external/opaque per spec §1. SaveImmediately requests the value
// be flushed now; when false it is a "dirty, don't flush now" hint
// (spec §4.G promotion).
type Config interface {
	Get(key string, defaultValue interface{}) interface{}
	SetKey(key string, value interface{}, saveImmediately bool)
}

// MemConfig is a minimal in-process Config used by tests and by
// callers that do not need persistence across runs.
type MemConfig struct {
	mu     sync.Mutex
	values map[string]interface{}
}

// NewMemConfig returns a MemConfig seeded from initial, which may be nil.
func NewMemConfig(initial map[string]interface{}) *MemConfig {
	values := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemConfig{values: values}
}

// Get implements Config.
func (c *MemConfig) Get(key string, defaultValue interface{}) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[key]; ok {
		return v
	}
	return defaultValue
}

// SetKey implements Config. saveImmediately is accepted for interface
// compatibility but has no effect: every write is already durable for
// the lifetime of the process.
func (c *MemConfig) SetKey(key string, value interface{}, saveImmediately bool) {
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}
