// Package logdiag provides a pluggable diagnostic logging sink used by the
// rest of the emulator core to report recoverable runtime anomalies
// (unmapped memory access, unsupported mapper features, bad save states)
// without panicking.
package logdiag

import (
	"log"
	"os"
	"sync"
)

// Sink receives diagnostic messages. Implementations must be safe for
// concurrent use; the default sink wraps the standard log package.
type Sink interface {
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// stdSink is the default Sink, writing to os.Stderr via the standard
// library logger.
type stdSink struct {
	logger *log.Logger
}

func (s *stdSink) Warnf(format string, args ...interface{}) {
	s.logger.Printf("WARN "+format, args...)
}

func (s *stdSink) Errorf(format string, args ...interface{}) {
	s.logger.Printf("ERROR "+format, args...)
}

var (
	mu      sync.RWMutex
	current Sink = &stdSink{logger: log.New(os.Stderr, "nesgo: ", log.LstdFlags)}
)

// Set installs sink as the global diagnostic sink. Passing nil restores
// the default stderr sink.
func Set(sink Sink) {
	mu.Lock()
	defer mu.Unlock()
	if sink == nil {
		sink = &stdSink{logger: log.New(os.Stderr, "nesgo: ", log.LstdFlags)}
	}
	current = sink
}

// Warnf reports a recoverable anomaly through the installed sink.
func Warnf(format string, args ...interface{}) {
	mu.RLock()
	s := current
	mu.RUnlock()
	s.Warnf(format, args...)
}

// Errorf reports a serious but non-fatal anomaly through the installed sink.
func Errorf(format string, args ...interface{}) {
	mu.RLock()
	s := current
	mu.RUnlock()
	s.Errorf(format, args...)
}

// Discard silences all diagnostics; useful for tests that deliberately
// exercise error paths (unmapped reads, bad mapper IDs).
type Discard struct{}

func (Discard) Warnf(string, ...interface{})  {}
func (Discard) Errorf(string, ...interface{}) {}
