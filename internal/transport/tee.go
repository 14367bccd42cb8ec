// SPDX-License-Identifier: MIT
package transport

import (
	"errors"

	"tuner/internal/tuner"
)

// Tee fans each result out to every wrapped sink. All sinks receive the
// result even when an earlier one fails; the errors are joined.
type Tee struct {
	sinks []tuner.Sink
}

// NewTee creates a Tee over the given sinks.
func NewTee(sinks ...tuner.Sink) *Tee {
	return &Tee{sinks: sinks}
}

// Send delivers the result to all sinks. Implements tuner.Sink.
func (t *Tee) Send(r tuner.Result) error {
	var errs []error
	for _, s := range t.sinks {
		if err := s.Send(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ tuner.Sink = (*Tee)(nil)
