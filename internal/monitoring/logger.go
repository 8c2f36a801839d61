// Package monitoring provides a package-level, replaceable diagnostic
// logger used by the mount driver. It exists so transceiver/pulser
// goroutines can log without importing the stdlib log package directly,
// and so tests can silence or capture log output.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
