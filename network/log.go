// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import "github.com/decred/slog"

// log is the package-level logger used throughout network. By
// default it discards all output; callers wire in a real backend with
// UseLogger, the same convention chain/chain.go's package follows.
var log = slog.Disabled

// UseLogger sets the package-wide logger. This should be called
// before the coordinator is started.
func UseLogger(logger slog.Logger) {
	log = logger
}
