package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gps_speedometer/internal/gps"
)

func TestRunReplay(t *testing.T) {
	capture := captureOf(
		ggaLine("120000.00", eastSingapore),
		"garbage",
		ggaLine("120500.00", tampines),
		"$GPGGA,120600,1234.56,N,10323.45,E,1,08,0.9,abc,M,46.9,M,,",
	)

	var out bytes.Buffer
	sum, err := RunReplay(capture, &out, gps.AcceptPartial, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Lines)
	assert.Equal(t, 2, sum.Accepted)
	assert.Equal(t, 1, sum.Partial)
	assert.Equal(t, 1, sum.Rejected[gps.ReasonWrongTag])
	// The partial line repeats the last fix and is not counted as a new one.
	assert.Equal(t, 2, sum.Fixes)
	assert.Equal(t, 1, sum.Held)

	text := out.String()
	assert.Contains(t, text, "   2 reject   wrong_tag")
	assert.Contains(t, text, "   4 partial")
	assert.Contains(t, text, "nmea: GGA time=")
	assert.Contains(t, text, "speed=56.2")
	assert.Contains(t, text, "120600 held lat=1.3576")
	assert.Contains(t, text, "lines=4 accepted=2 partial=1 rejected=1 fixes=2 held=1")
}

func TestRunReplay_PartialBetweenFixesKeepsSpeed(t *testing.T) {
	capture := captureOf(
		ggaLine("000000.00", eastSingapore),
		"$GPGGA,000010,0120.7790,N,10355.9048,E,1,08,0.9,bad,M,46.9,M,,",
		ggaLine("000020.00", tampines),
	)

	var out bytes.Buffer
	sum, err := RunReplay(capture, &out, gps.AcceptPartial, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Fixes)
	assert.Equal(t, 1, sum.Held)

	text := out.String()
	assert.Contains(t, text, "000010 held lat=")
	assert.NotContains(t, text, "speed=0.00 km/h")
	// 4687 m in 20 s
	assert.Contains(t, text, "speed=843.")
	assert.NotContains(t, text, "speed=1687")
}

func TestRunReplay_RejectPolicy(t *testing.T) {
	capture := captureOf(
		ggaLine("120000.00", eastSingapore),
		"$GPGGA,120600,1234.56,N,10323.45,E,1,08,0.9,abc,M,46.9,M,,",
	)

	var out bytes.Buffer
	sum, err := RunReplay(capture, &out, gps.RejectPartial, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Rejected[gps.ReasonPartialDecode])
	assert.Equal(t, 1, sum.Fixes)
}

func TestInspectNMEA(t *testing.T) {
	assert.Empty(t, inspectNMEA("garbage"))
	assert.Empty(t, inspectNMEA("$GPGGA,1,2,3"))

	view := inspectNMEA("$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A")
	assert.True(t, strings.HasPrefix(view, "RMC "), view)
	assert.Contains(t, view, "validity=A")

	assert.True(t, strings.HasPrefix(inspectNMEA("$GPGGA,1*00"), "error: "))
}

func TestReplayClock(t *testing.T) {
	var c replayClock

	a, ok := c.at("235959.50")
	require.True(t, ok)
	b, ok := c.at("000000.50")
	require.True(t, ok)
	assert.Equal(t, "1s", b.Sub(a).String())

	_, ok = c.at("noon")
	assert.False(t, ok)
}
