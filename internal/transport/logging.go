// SPDX-License-Identifier: MIT
package transport

import (
	applog "tuner/internal/log"
	"tuner/internal/tuner"
)

// LogSink reports each result through the application logger at debug level.
// Useful as a secondary sink when the meter owns the terminal.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Send logs the result. Never fails. Implements tuner.Sink.
func (s *LogSink) Send(r tuner.Result) error {
	applog.Debugf("result: note=%s freq=%.2fHz cents=%+.1f", r.Note, r.Frequency, r.Cents)
	return nil
}

var _ tuner.Sink = (*LogSink)(nil)
