// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/charmbracelet/log"

	"github.com/relabs-tech/gps_speedometer/internal/gps"
	"github.com/relabs-tech/gps_speedometer/internal/track"
)

// ReplaySummary counts what a replay saw.
type ReplaySummary struct {
	Lines    int
	Accepted int
	Partial  int
	Rejected map[gps.Reason]int
	Fixes    int
	Held     int // partial decodes that repeated the previous fix
}

// RunReplay inspects a capture of raw receiver output. It prints a verdict
// for every line, then feeds the capture through a Reader and Tracker and
// prints each fix with the speed derived from the sentence time stamps.
func RunReplay(capture io.Reader, out io.Writer, policy gps.PartialPolicy, logger *log.Logger) (ReplaySummary, error) {
	data, err := io.ReadAll(capture)
	if err != nil {
		return ReplaySummary{}, fmt.Errorf("read capture: %w", err)
	}

	sum := ReplaySummary{Rejected: make(map[gps.Reason]int)}

	// ---- 1) Per-line verdicts ----
	fmt.Fprintln(out, "== lines ==")
	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	d := gps.NewDecoder(policy)
	var st gps.State
	for i, line := range lines {
		sum.Lines++
		if !utf8.ValidString(line) {
			line = ""
		}

		res, err := d.Validate(st, line)
		switch {
		case err != nil:
			reason := gps.ReasonOf(err)
			sum.Rejected[reason]++
			fmt.Fprintf(out, "%4d reject   %-17s %v\n", i+1, reason, err)
		case res.Partial != nil:
			sum.Partial++
			st = res.State
			fmt.Fprintf(out, "%4d partial  %v\n", i+1, res.Partial)
		default:
			sum.Accepted++
			st = res.State
			f := st.Fix
			fmt.Fprintf(out, "%4d accept   lat=%.6f lon=%.6f q=%d sats=%d alt=%.1f\n",
				i+1, f.Latitude, f.Longitude, f.Quality, f.Satellites, f.Altitude)
			if res.OutOfRange {
				fmt.Fprintf(out, "     warning: coordinates out of range\n")
			}
		}

		if view := inspectNMEA(line); view != "" {
			fmt.Fprintf(out, "     nmea: %s\n", view)
		}
	}

	// ---- 2) Reader + tracker ----
	fmt.Fprintln(out, "== fixes ==")
	reader := gps.NewReader(gps.NewReplayTransport(bytes.NewReader(data)), gps.ReaderConfig{
		MaxAttempts: len(lines) + 1,
		Partial:     policy,
		Sleep:       func(time.Duration) {},
		Logger:      logger,
	})

	var (
		tracker track.Tracker
		clock   replayClock
		at      time.Time
	)
	for {
		fix, ok := reader.ReadFix()
		if !ok {
			break
		}
		if !reader.Fresh() {
			sum.Held++
			fmt.Fprintf(out, "%s held lat=%.6f lon=%.6f\n",
				reader.State().Timestamp, fix.Latitude, fix.Longitude)
			continue
		}
		sum.Fixes++
		if t, ok := clock.at(reader.State().Timestamp); ok {
			at = t
		}
		r := tracker.Update(fix, at)

		speed := "--- km/h"
		if r.HaveSpeed {
			speed = fmt.Sprintf("%.2f km/h", r.SpeedKmh)
		}
		fmt.Fprintf(out, "%s lat=%.6f lon=%.6f dist=%.1fm speed=%s\n",
			reader.State().Timestamp, fix.Latitude, fix.Longitude, r.DistanceM, speed)
	}

	fmt.Fprintf(out, "== summary ==\nlines=%d accepted=%d partial=%d rejected=%d fixes=%d held=%d\n",
		sum.Lines, sum.Accepted, sum.Partial, sum.rejectedTotal(), sum.Fixes, sum.Held)
	return sum, nil
}

func (s ReplaySummary) rejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// inspectNMEA is the go-nmea view of a checksummed line, for comparison
// with the decoder's verdict. It returns "" for lines without a checksum.
func inspectNMEA(line string) string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") || !strings.Contains(line, "*") {
		return ""
	}

	s, err := nmea.Parse(line)
	if err != nil {
		return "error: " + err.Error()
	}

	switch s.DataType() {
	case nmea.TypeGGA:
		g := s.(nmea.GGA)
		return fmt.Sprintf("GGA time=%s lat=%.6f lon=%.6f quality=%s sats=%d hdop=%.1f alt=%.1f",
			g.Time, g.Latitude, g.Longitude, g.FixQuality, g.NumSatellites, g.HDOP, g.Altitude)
	case nmea.TypeRMC:
		r := s.(nmea.RMC)
		return fmt.Sprintf("RMC time=%s validity=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f",
			r.Time, r.Validity, r.Latitude, r.Longitude, r.Speed, r.Course)
	default:
		return s.Prefix()
	}
}

var replayEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// replayClock turns hhmmss.ss sentence stamps into times, rolling over at
// midnight.
type replayClock struct {
	day  time.Duration
	prev time.Duration
	have bool
}

func (c *replayClock) at(ts string) (time.Time, bool) {
	nt, err := nmea.ParseTime(ts)
	if err != nil || !nt.Valid {
		return time.Time{}, false
	}

	tod := time.Duration(nt.Hour)*time.Hour +
		time.Duration(nt.Minute)*time.Minute +
		time.Duration(nt.Second)*time.Second +
		time.Duration(nt.Millisecond)*time.Millisecond
	if c.have && c.day+tod < c.prev {
		c.day += 24 * time.Hour
	}
	c.prev = c.day + tod
	c.have = true
	return replayEpoch.Add(c.prev), true
}
