// Package spvlog provides the logging sink used by the peer package. It
// follows the same package-level, injectable
// logger convention as btcsuite/btcd's wire and peer packages: callers wire
// up a concrete github.com/btcsuite/btclog.Logger via UseLogger, and until
// they do, log output is discarded.
package spvlog

import "github.com/btcsuite/btclog"

// log is the package-level subsystem logger. It starts out disabled so that
// importing this module never produces output a caller didn't ask for.
var log = btclog.Disabled

// UseLogger sets the logger used by this package's callers. Passing a
// nil logger is not allowed; callers that want to discard output should
// pass btclog.Disabled explicitly.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Logger returns the currently configured logger.
func Logger() btclog.Logger {
	return log
}
