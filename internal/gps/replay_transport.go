// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"errors"
	"io"
)

// ReplayTransport feeds lines from a capture (a file of raw receiver output).
// After the last line every read returns io.EOF.
type ReplayTransport struct {
	reader *bufio.Reader
}

// NewReplayTransport wraps r.
func NewReplayTransport(r io.Reader) *ReplayTransport {
	return &ReplayTransport{reader: bufio.NewReader(r)}
}

// ReadLine returns the next line including its terminator.
func (t *ReplayTransport) ReadLine() ([]byte, error) {
	line, err := t.reader.ReadBytes('\n')
	if errors.Is(err, io.EOF) && len(line) > 0 {
		return line, nil
	}
	return line, err
}
