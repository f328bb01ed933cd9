// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/fonero-project/fnonetwork/internal/netstore"
	"github.com/fonero-project/fnonetwork/network"
)

// logRotator rotates the log file written by the file log backend,
// created in initLogRotator and kept alive for the life of the process
// the same way the teacher's daemons keep theirs.
var logRotator *rotator.Rotator

var backendLog = slog.NewBackend(logWriter{})

// subsystem loggers.
var (
	log      = backendLog.Logger("CTLD")
	netLog   = backendLog.Logger("NETW")
	storeLog = backendLog.Logger("STOR")
)

func init() {
	network.UseLogger(netLog)
	netstore.UseLogger(storeLog)
}

// logWriter implements io.Writer and plugs slog's Backend into both
// stdout and the active log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator initializes the logging rotator to write logs to
// logFile and create roll files in the same directory. It must be
// called before the coordinator begins logging anything.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %v", err)
	}
	logRotator = r
	return nil
}

// setLogLevels sets the logging level for every subsystem logger.
func setLogLevels(levelSpec string) error {
	level, ok := slog.LevelFromString(levelSpec)
	if !ok {
		return fmt.Errorf("unknown debug level %q", levelSpec)
	}
	for _, l := range []slog.Logger{log, netLog, storeLog} {
		l.SetLevel(level)
	}
	return nil
}
