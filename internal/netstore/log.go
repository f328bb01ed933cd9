// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netstore

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the package-level logger used by Store.
func UseLogger(logger slog.Logger) {
	log = logger
}
