// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialConfig describes the receiver's serial link.
type SerialConfig struct {
	// PortName is e.g. /dev/serial0, /dev/ttyAMA0 or /dev/ttyUSB0.
	PortName string
	BaudRate int
	// ReadTimeout bounds a single ReadLine. Zero blocks until a byte arrives.
	ReadTimeout time.Duration
}

// SerialTransport reads NMEA lines from a serial port.
type SerialTransport struct {
	name   string
	port   io.ReadWriteCloser
	reader *bufio.Reader
}

// OpenSerial opens the port 8N1 and discards whatever the receiver queued
// before we were listening.
func OpenSerial(cfg SerialConfig) (*SerialTransport, error) {
	if cfg.PortName == "" {
		return nil, fmt.Errorf("serial port name is empty")
	}
	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", cfg.BaudRate)
	}

	opts := serial.OpenOptions{
		PortName:        cfg.PortName,
		BaudRate:        uint(cfg.BaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}
	if cfg.ReadTimeout > 0 {
		// The driver counts in tenths of a second.
		opts.MinimumReadSize = 0
		opts.InterCharacterTimeout = uint((cfg.ReadTimeout + 99*time.Millisecond) / (100 * time.Millisecond) * 100)
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.PortName, err)
	}

	t := &SerialTransport{
		name:   cfg.PortName,
		port:   port,
		reader: bufio.NewReaderSize(port, 512),
	}
	if err := t.Flush(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("flush serial port %s: %w", cfg.PortName, err)
	}
	return t, nil
}

// Name returns the port path.
func (t *SerialTransport) Name() string { return t.name }

// ReadLine returns the next line including its terminator, or whatever
// arrived before the read timed out (possibly nothing).
func (t *SerialTransport) ReadLine() ([]byte, error) {
	line, err := t.reader.ReadBytes('\n')
	if errors.Is(err, io.EOF) {
		// A timed-out read on a non-blocking port surfaces as EOF.
		return line, nil
	}
	return line, err
}

// Flush drops buffered input, both ours and the driver's.
func (t *SerialTransport) Flush() error {
	t.reader.Reset(t.port)
	return flushInput(t.port)
}

// Close releases the port.
func (t *SerialTransport) Close() error {
	return t.port.Close()
}
