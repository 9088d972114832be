// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

const (
	// SentenceTag is the only sentence the decoder understands.
	SentenceTag = "$GPGGA"
	// FieldCount is the number of comma-separated fields in a GPGGA line,
	// the tag and the checksum-carrying last field included.
	FieldCount = 15

	// A repeated tag before this index cannot start a second sentence.
	anchorFrom = 5
)

// GPGGA field indices:
//
//	0: tag ($GPGGA)
//	1: time (hhmmss.ss)
//	2: latitude (ddmm.mm)
//	3: N/S
//	4: longitude (dddmm.mm)
//	5: E/W
//	6: fix quality (0=invalid)
//	7: number of satellites
//	8: HDOP
//	9: altitude (meters)
//
// 10..14: altitude units, geoid separation, units, DGPS age, DGPS station (+checksum)
const (
	fieldTime      = 1
	fieldLatitude  = 2
	fieldNS        = 3
	fieldLongitude = 4
	fieldEW        = 5
	fieldQuality   = 6
	fieldSats      = 7
	fieldAltitude  = 9
)

// PartialPolicy decides what happens to a sentence that passes the field
// grammar but whose numeric fields do not convert.
type PartialPolicy int

const (
	// AcceptPartial accepts the sentence and keeps the previous numeric values.
	AcceptPartial PartialPolicy = iota
	// RejectPartial rejects the sentence with ErrPartialDecode.
	RejectPartial
)

func (p PartialPolicy) String() string {
	switch p {
	case AcceptPartial:
		return "accept"
	case RejectPartial:
		return "reject"
	default:
		return fmt.Sprintf("PartialPolicy(%d)", int(p))
	}
}

// ParsePartialPolicy parses "accept" or "reject" (case-insensitive).
func ParsePartialPolicy(s string) (PartialPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "accept":
		return AcceptPartial, nil
	case "reject":
		return RejectPartial, nil
	default:
		return AcceptPartial, fmt.Errorf("unknown partial decode policy %q (want accept or reject)", s)
	}
}

type fieldCheck struct {
	index int
	name  string
	match func(string) bool // nil: presence only
}

// Decoder validates GPGGA lines and decodes them into State updates.
// A Decoder holds no per-sentence state and may be shared.
type Decoder struct {
	policy PartialPolicy
	checks []fieldCheck
}

// NewDecoder builds a decoder with its field checks compiled once.
func NewDecoder(policy PartialPolicy) *Decoder {
	return &Decoder{
		policy: policy,
		checks: []fieldCheck{
			{index: fieldTime, name: "timestamp"},
			{index: fieldLatitude, name: "latitude", match: magnitude(4, 4)},
			{index: fieldNS, name: "north/south", match: oneOf(nmea.North, nmea.South)},
			{index: fieldLongitude, name: "longitude", match: magnitude(4, 5)},
			{index: fieldEW, name: "east/west", match: oneOf(nmea.East, nmea.West)},
		},
	}
}

// Outcome describes an accepted line.
type Outcome struct {
	State State
	// Fields is the anchored field list.
	Fields []string
	// Partial is non-nil when the grammar passed but a numeric field did not
	// convert. State.Fix then still holds the previous fix.
	Partial error
	// OutOfRange flags a freshly decoded fix whose coordinates are off the globe.
	OutOfRange bool
}

// Validate checks line against the GPGGA grammar and decodes it on top of st.
// On error the returned Outcome carries st unchanged.
func (d *Decoder) Validate(st State, line string) (Outcome, error) {
	fields, err := splitSentence(line)
	if err != nil {
		return Outcome{State: st}, err
	}

	for _, c := range d.checks {
		v := fields[c.index]
		if v == "" {
			return Outcome{State: st, Fields: fields}, &RejectError{Err: ErrEmptyField, Field: c.index, Name: c.name}
		}
		if c.match != nil && !c.match(v) {
			return Outcome{State: st, Fields: fields}, &RejectError{Err: ErrFormatMismatch, Field: c.index, Name: c.name, Value: v}
		}
	}

	fix, perr := decodeFields(fields)
	if perr != nil && d.policy == RejectPartial {
		return Outcome{State: st, Fields: fields}, perr
	}

	out := Outcome{
		State:  State{Timestamp: fields[fieldTime], Fix: st.Fix},
		Fields: fields,
	}
	if perr != nil {
		out.Partial = perr
		return out, nil
	}
	out.State.Fix = &fix
	out.OutOfRange = !fix.InRange()
	return out, nil
}

// splitSentence trims line, checks the tag and returns the anchored fields.
func splitSentence(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, reject(ErrEmptyLine)
	}
	if !strings.HasPrefix(line, SentenceTag) {
		return nil, reject(ErrWrongTag)
	}

	fields := strings.Split(line, ",")

	// Serial buffers sometimes hand over the tail of one sentence glued to the
	// next. Keep only what follows the last tag.
	for i := len(fields) - 1; i >= anchorFrom; i-- {
		if fields[i] == SentenceTag {
			fields = fields[i:]
			break
		}
	}

	if len(fields) != FieldCount {
		e := reject(ErrWrongFieldCount)
		e.Count = len(fields)
		return nil, e
	}
	return fields, nil
}

// decodeFields converts the numeric fields. It is all-or-nothing: the first
// field that does not convert is reported and no Fix is produced.
func decodeFields(f []string) (Fix, error) {
	lat, err := parseDecimal(f[fieldLatitude])
	if err != nil {
		return Fix{}, partial(f, fieldLatitude, "latitude")
	}
	lon, err := parseDecimal(f[fieldLongitude])
	if err != nil {
		return Fix{}, partial(f, fieldLongitude, "longitude")
	}
	quality, err := strconv.Atoi(strings.TrimSpace(f[fieldQuality]))
	if err != nil {
		return Fix{}, partial(f, fieldQuality, "quality")
	}
	sats, err := strconv.Atoi(strings.TrimSpace(f[fieldSats]))
	if err != nil || sats < 0 {
		return Fix{}, partial(f, fieldSats, "satellites")
	}
	alt, err := parseDecimal(f[fieldAltitude])
	if err != nil {
		return Fix{}, partial(f, fieldAltitude, "altitude")
	}

	return Fix{
		Timestamp:    f[fieldTime],
		LatitudeRaw:  lat,
		NorthSouth:   f[fieldNS],
		LongitudeRaw: lon,
		EastWest:     f[fieldEW],
		Quality:      quality,
		Satellites:   sats,
		Altitude:     alt,
		Latitude:     DegreesMinutesToDecimal(lat, f[fieldNS]),
		Longitude:    DegreesMinutesToDecimal(lon, f[fieldEW]),
	}, nil
}

func partial(f []string, idx int, name string) error {
	return &RejectError{Err: ErrPartialDecode, Field: idx, Name: name, Value: f[idx]}
}

func parseDecimal(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// magnitude matches minInt..maxInt digits, a dot, then at least two digits.
func magnitude(minInt, maxInt int) func(string) bool {
	return func(s string) bool {
		dot := strings.IndexByte(s, '.')
		if dot < minInt || dot > maxInt {
			return false
		}
		frac := s[dot+1:]
		return len(frac) >= 2 && allDigits(s[:dot]) && allDigits(frac)
	}
}

func oneOf(values ...string) func(string) bool {
	return func(s string) bool {
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
