// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"regexp"
	"strconv"
)

var (
	protocolToken = regexp.MustCompile(`^[stgh]\d*$`)
	versionToken  = regexp.MustCompile(`^v.+$`)
	pruningToken  = regexp.MustCompile(`^p\d*$`)
)

// ParsePeerList decodes a server.peers.subscribe result (spec §4.B)
// into a host→ServerRecord map, keeping only hosts that advertise at
// least one protocol and whose advertised version parses as a number
// no less than minVersion. Malformed entries are dropped silently
// (spec §7 "malformed peer list").
//
// Each element of result is expected to be a [ignored, host, features]
// triple (or a 2-element [ignored, host] pair, which is always
// dropped: no protocol token can be present).
func ParsePeerList(result []interface{}, minVersion float64) map[string]*ServerRecord {
	out := make(map[string]*ServerRecord)
	for _, raw := range result {
		item, ok := raw.([]interface{})
		if !ok || len(item) < 2 {
			continue
		}
		host, ok := item[1].(string)
		if !ok || host == "" {
			continue
		}

		rec := newServerRecord(host)
		var version string

		if len(item) > 2 {
			features, ok := item[2].([]interface{})
			if !ok {
				continue
			}
			for _, f := range features {
				tok, ok := f.(string)
				if !ok {
					continue
				}
				switch {
				case protocolToken.MatchString(tok):
					proto, port := tok[0], tok[1:]
					rec.addProtocol(proto, port)
				case versionToken.MatchString(tok):
					version = tok[1:]
				case pruningToken.MatchString(tok):
					pruning := tok[1:]
					if pruning == "" {
						pruning = "0"
					}
					rec.Pruning = pruning
				}
			}
		}

		v, err := strconv.ParseFloat(version, 64)
		if err != nil || v < minVersion {
			continue
		}
		if rec.Empty() {
			continue
		}
		rec.Version = version
		out[host] = rec
	}
	return out
}
