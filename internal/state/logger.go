package state

import "log"

// Logger is the sink for the single failure mode this package has: a table
// write that the destination rejects. Injected rather than global so callers
// control where the report lands.
type Logger interface {
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Error(string, ...any) {}

// NopLogger returns a logger that discards all output.
func NopLogger() Logger { return nopLogger{} }

// stdLogger is the default; it writes through the standard log package.
type stdLogger struct{}

func (stdLogger) Error(format string, args ...any) {
	log.Printf("ERROR "+format, args...)
}
