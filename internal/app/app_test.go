package app

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relabs-tech/gps_speedometer/internal/gps"
)

var (
	eastSingapore = gps.Position{Latitude: 1.346316, Longitude: 103.931746}
	tampines      = gps.Position{Latitude: 1.357679, Longitude: 103.972348}
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// ggaLine renders a checksummed GPGGA line at pos.
func ggaLine(ts string, pos gps.Position) string {
	return gps.FormatGGA(gps.Fix{
		Timestamp:  ts,
		Quality:    1,
		Satellites: 8,
		Altitude:   15,
		Latitude:   pos.Latitude,
		Longitude:  pos.Longitude,
	}, 0.9)
}

func captureOf(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\r\n") + "\r\n")
}

func noSleepReader(t gps.Transport) *gps.Reader {
	return gps.NewReader(t, gps.ReaderConfig{
		MaxAttempts: 5,
		Sleep:       func(time.Duration) {},
		Logger:      quietLogger(),
	})
}
