// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package logging builds the structured loggers used by every tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a stderr logger for component at the given level
// (debug, info, warn or error; empty means info).
func New(component, level string) (*log.Logger, error) {
	return NewWithWriter(os.Stderr, component, level)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, component, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		var err error
		lvl, err = log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          component,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
