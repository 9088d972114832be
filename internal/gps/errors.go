// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
)

// Reason classifies why a line did not produce a fix.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonEmptyLine       Reason = "empty_line"
	ReasonWrongTag        Reason = "wrong_tag"
	ReasonWrongFieldCount Reason = "wrong_field_count"
	ReasonEmptyField      Reason = "empty_field"
	ReasonFormatMismatch  Reason = "format_mismatch"
	ReasonPartialDecode   Reason = "partial_decode"
	ReasonTransport       Reason = "transport"
)

var (
	ErrEmptyLine       = errors.New("gps: empty line")
	ErrWrongTag        = errors.New("gps: line does not start with " + SentenceTag)
	ErrWrongFieldCount = errors.New("gps: wrong number of fields")
	ErrEmptyField      = errors.New("gps: empty field")
	ErrFormatMismatch  = errors.New("gps: field format mismatch")
	ErrPartialDecode   = errors.New("gps: numeric field did not convert")
)

var reasons = map[error]Reason{
	ErrEmptyLine:       ReasonEmptyLine,
	ErrWrongTag:        ReasonWrongTag,
	ErrWrongFieldCount: ReasonWrongFieldCount,
	ErrEmptyField:      ReasonEmptyField,
	ErrFormatMismatch:  ReasonFormatMismatch,
	ErrPartialDecode:   ReasonPartialDecode,
}

// RejectError carries the offending field for field-level failures.
// Field is -1 when the failure is not tied to a single field.
type RejectError struct {
	Err   error
	Field int
	Name  string
	Value string
	Count int // field count, for ErrWrongFieldCount
}

func (e *RejectError) Error() string {
	switch {
	case e.Err == ErrWrongFieldCount:
		return fmt.Sprintf("%v: got %d, want %d", e.Err, e.Count, FieldCount)
	case e.Field >= 0 && e.Value != "":
		return fmt.Sprintf("%v: field %d (%s) = %q", e.Err, e.Field, e.Name, e.Value)
	case e.Field >= 0:
		return fmt.Sprintf("%v: field %d (%s)", e.Err, e.Field, e.Name)
	default:
		return e.Err.Error()
	}
}

func (e *RejectError) Unwrap() error { return e.Err }

func reject(err error) *RejectError {
	return &RejectError{Err: err, Field: -1}
}

// ReasonOf maps an error returned by Validate to its Reason. Errors that are
// not decoder errors are attributed to the transport.
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	for sentinel, r := range reasons {
		if errors.Is(err, sentinel) {
			return r
		}
	}
	return ReasonTransport
}
