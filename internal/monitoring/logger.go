// Package monitoring routes pipeline diagnostics through a replaceable logger.
package monitoring

import "log"

// Logf emits run diagnostics (run start, completion, failures). It defaults to
// log.Printf; the server's -quiet flag and tests replace it via SetLogger.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
