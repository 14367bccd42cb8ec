// SPDX-License-Identifier: MIT

// Package transport provides output sinks for detection results. Sinks are
// fire-and-forget: a failing sink never interrupts detection.
package transport

import (
	"fmt"
	"io"
	"os"

	"tuner/internal/tuner"
)

// ConsoleSink renders each result as a single overwritten terminal line:
//
//	Note: A4 ♯ | Frequency: 441.2Hz | Cents: +5
//
// The marker shows sharp, flat, or in tune relative to the cents threshold.
type ConsoleSink struct {
	w          io.Writer
	inTuneCent float64
}

// NewConsoleSink creates a ConsoleSink writing to w (os.Stdout if nil).
// inTuneCents is the deviation magnitude still displayed as in tune.
func NewConsoleSink(w io.Writer, inTuneCents float64) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w, inTuneCent: inTuneCents}
}

// Send writes the result to the terminal. Implements tuner.Sink.
func (s *ConsoleSink) Send(r tuner.Result) error {
	marker := "✓"
	switch {
	case r.Cents > s.inTuneCent:
		marker = "♯"
	case r.Cents < -s.inTuneCent:
		marker = "♭"
	}

	_, err := fmt.Fprintf(s.w, "\rNote: %s %s | Frequency: %.1fHz | Cents: %+.0f   ",
		r.Note, marker, r.Frequency, r.Cents)
	return err
}

var _ tuner.Sink = (*ConsoleSink)(nil)
