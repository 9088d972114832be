// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

const (
	DefaultMaxAttempts = 50
	DefaultRetryDelay  = 500 * time.Millisecond
)

// Transport hands the reader one raw line per call. An empty line with a nil
// error means nothing arrived before the transport's timeout.
type Transport interface {
	ReadLine() ([]byte, error)
}

// Observer is notified of every attempt outcome.
type Observer interface {
	Accepted(partial bool)
	Rejected(reason Reason)
	Exhausted()
}

type noopObserver struct{}

func (noopObserver) Accepted(bool)   {}
func (noopObserver) Rejected(Reason) {}
func (noopObserver) Exhausted()      {}

// ReaderConfig controls the retry loop. Zero values select the defaults;
// Sleep defaults to time.Sleep.
type ReaderConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Partial     PartialPolicy

	Sleep    func(time.Duration)
	Logger   *log.Logger
	Observer Observer
}

// Reader polls a Transport until it yields a valid GPGGA fix or the attempt
// budget runs out. A Reader must be used from a single goroutine.
type Reader struct {
	transport Transport
	decoder   *Decoder
	state     State
	fresh     bool

	maxAttempts int
	retryDelay  time.Duration
	sleep       func(time.Duration)
	log         *log.Logger
	obs         Observer
}

// NewReader wires a Reader to t.
func NewReader(t Transport, cfg ReaderConfig) *Reader {
	r := &Reader{
		transport:   t,
		decoder:     NewDecoder(cfg.Partial),
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		sleep:       cfg.Sleep,
		log:         cfg.Logger,
		obs:         cfg.Observer,
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = DefaultMaxAttempts
	}
	if r.retryDelay < 0 {
		r.retryDelay = 0
	}
	if r.sleep == nil {
		r.sleep = time.Sleep
	}
	if r.log == nil {
		r.log = log.Default()
	}
	if r.obs == nil {
		r.obs = noopObserver{}
	}
	return r
}

// ReadFix returns as soon as one line decodes into a fix. If every attempt
// fails the decoder state is reset and ok is false.
func (r *Reader) ReadFix() (fix Fix, ok bool) {
	r.fresh = false
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		r.sleep(r.retryDelay)

		raw, err := r.transport.ReadLine()
		if err != nil {
			r.obs.Rejected(ReasonTransport)
			r.log.Debug("transport read failed", "attempt", attempt, "err", err)
			continue
		}
		line := ""
		if utf8.Valid(raw) {
			line = string(raw)
		}

		out, err := r.decoder.Validate(r.state, line)
		if err != nil {
			reason := ReasonOf(err)
			r.obs.Rejected(reason)
			r.log.Debug("sentence rejected", "attempt", attempt, "reason", reason, "err", err)
			continue
		}

		r.state = out.State
		r.obs.Accepted(out.Partial != nil)
		if out.Partial != nil {
			r.log.Warn("partial decode, keeping previous values", "err", out.Partial)
		}
		if r.state.Fix == nil {
			continue
		}

		fix = *r.state.Fix
		r.fresh = out.Partial == nil
		if out.OutOfRange {
			r.log.Warn("fix outside coordinate range", "lat", fix.Latitude, "lon", fix.Longitude)
		}
		return fix, true
	}

	r.state = r.state.Reset()
	r.obs.Exhausted()
	r.log.Warn("no valid sentence, decoder state reset", "attempts", r.maxAttempts)
	return Fix{}, false
}

// ReadPosition is ReadFix reduced to the coordinate pair.
func (r *Reader) ReadPosition() (Position, bool) {
	fix, ok := r.ReadFix()
	if !ok {
		return Position{}, false
	}
	return fix.Position(), true
}

// Fresh reports whether the fix returned by the last ReadFix was decoded
// from a line read during that call. It is false when a partial decode handed
// back the previous fix again.
func (r *Reader) Fresh() bool {
	return r.fresh
}

// State returns the decoder state after the last ReadFix.
func (r *Reader) State() State {
	return r.state
}
