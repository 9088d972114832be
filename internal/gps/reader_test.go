package gps

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gps_speedometer/internal/geo"
)

// scriptedTransport plays back a fixed list of reads, then returns empty lines.
type scriptedTransport struct {
	reads []scriptedRead
	n     int
}

type scriptedRead struct {
	line []byte
	err  error
}

func script(lines ...string) *scriptedTransport {
	t := &scriptedTransport{}
	for _, l := range lines {
		t.reads = append(t.reads, scriptedRead{line: []byte(l)})
	}
	return t
}

func (t *scriptedTransport) ReadLine() ([]byte, error) {
	defer func() { t.n++ }()
	if t.n >= len(t.reads) {
		return nil, nil
	}
	r := t.reads[t.n]
	return r.line, r.err
}

type countingObserver struct {
	accepted  int
	partial   int
	rejected  map[Reason]int
	exhausted int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{rejected: map[Reason]int{}}
}

func (o *countingObserver) Accepted(partial bool) {
	o.accepted++
	if partial {
		o.partial++
	}
}
func (o *countingObserver) Rejected(r Reason) { o.rejected[r]++ }
func (o *countingObserver) Exhausted()        { o.exhausted++ }

type fakeSleeper struct {
	calls int
	total time.Duration
}

func (s *fakeSleeper) Sleep(d time.Duration) {
	s.calls++
	s.total += d
}

func newTestReader(t Transport, sl *fakeSleeper, obs Observer, policy PartialPolicy) *Reader {
	return NewReader(t, ReaderConfig{
		MaxAttempts: 50,
		RetryDelay:  500 * time.Millisecond,
		Partial:     policy,
		Sleep:       sl.Sleep,
		Logger:      log.New(io.Discard),
		Observer:    obs,
	})
}

func TestReadFix_ReturnsFirstValidLine(t *testing.T) {
	tr := script("", "garbage\r\n", "$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39\r\n", sampleLine+"\r\n", sampleSouthWest+"\r\n")
	sl := &fakeSleeper{}
	obs := newCountingObserver()
	r := newTestReader(tr, sl, obs, AcceptPartial)

	fix, ok := r.ReadFix()
	require.True(t, ok)
	assert.Equal(t, "123519", fix.Timestamp)
	assert.InDelta(t, 12.576, fix.Latitude, 1e-3)

	assert.Equal(t, 4, tr.n, "stops reading after the first fix")
	assert.Equal(t, 4, sl.calls)
	assert.Equal(t, 2*time.Second, sl.total)
	assert.Equal(t, 1, obs.accepted)
	assert.Equal(t, 1, obs.rejected[ReasonEmptyLine])
	assert.Equal(t, 2, obs.rejected[ReasonWrongTag])
	assert.Zero(t, obs.exhausted)

	pos, ok := r.ReadPosition()
	require.True(t, ok)
	assert.Less(t, pos.Latitude, 0.0)
	assert.Less(t, pos.Longitude, 0.0)
}

func TestReadFix_ExhaustionResetsState(t *testing.T) {
	tr := script(sampleLine)
	sl := &fakeSleeper{}
	obs := newCountingObserver()
	r := newTestReader(tr, sl, obs, AcceptPartial)

	_, ok := r.ReadFix()
	require.True(t, ok)
	require.True(t, r.State().Known())

	sl.calls = 0
	_, ok = r.ReadFix()
	assert.False(t, ok)
	assert.False(t, r.Fresh())
	assert.Equal(t, 50, sl.calls)
	assert.Equal(t, 51, tr.n)
	assert.Equal(t, 1, obs.exhausted)
	assert.Equal(t, 50, obs.rejected[ReasonEmptyLine])

	assert.False(t, r.State().Known())
	s := r.State().Sentinels()
	assert.Equal(t, "", s.Timestamp)
	assert.Equal(t, "", s.NorthSouth)
	assert.Equal(t, "", s.EastWest)
	assert.Equal(t, -1, s.Quality)
	assert.Equal(t, -1, s.Satellites)
	assert.Equal(t, -1.0, s.LatitudeRaw)
	assert.Equal(t, -1.0, s.LongitudeRaw)
	assert.Equal(t, -1.0, s.Altitude)
	assert.Equal(t, -1.0, s.Latitude)
	assert.Equal(t, -1.0, s.Longitude)

	_, ok = r.ReadPosition()
	assert.False(t, ok)
}

func TestReadFix_InvalidUTF8IsAnEmptyLine(t *testing.T) {
	tr := &scriptedTransport{reads: []scriptedRead{
		{line: []byte{0xff, 0xfe, '$', 'G', '\n'}},
		{line: []byte(sampleLine)},
	}}
	obs := newCountingObserver()
	r := newTestReader(tr, &fakeSleeper{}, obs, AcceptPartial)

	_, ok := r.ReadFix()
	require.True(t, ok)
	assert.Equal(t, 1, obs.rejected[ReasonEmptyLine])
}

func TestReadFix_TransportErrorConsumesAttempt(t *testing.T) {
	tr := &scriptedTransport{reads: []scriptedRead{
		{err: errors.New("read /dev/serial0: input/output error")},
		{line: []byte(sampleLine)},
	}}
	obs := newCountingObserver()
	r := newTestReader(tr, &fakeSleeper{}, obs, AcceptPartial)

	_, ok := r.ReadFix()
	require.True(t, ok)
	assert.Equal(t, 1, obs.rejected[ReasonTransport])
	assert.Equal(t, 2, tr.n)
}

func TestReadFix_PartialWithoutHistoryKeepsReading(t *testing.T) {
	tr := script(ggaWith(9, "n/a"), sampleLine)
	obs := newCountingObserver()
	r := newTestReader(tr, &fakeSleeper{}, obs, AcceptPartial)

	fix, ok := r.ReadFix()
	require.True(t, ok)
	assert.True(t, r.Fresh())
	assert.InDelta(t, 545.4, fix.Altitude, 1e-9)
	assert.Equal(t, 2, obs.accepted)
	assert.Equal(t, 1, obs.partial)
}

func TestReadFix_PartialWithHistoryReturnsPreviousFix(t *testing.T) {
	next := strings.Replace(ggaWith(9, "n/a"), "123519", "123521", 1)
	tr := script(sampleLine, next)
	r := newTestReader(tr, &fakeSleeper{}, nil, AcceptPartial)

	first, ok := r.ReadFix()
	require.True(t, ok)

	require.True(t, r.Fresh())

	second, ok := r.ReadFix()
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.False(t, r.Fresh(), "carried over from the previous line")
	assert.Equal(t, "123521", r.State().Timestamp)
}

func TestReadFix_RejectPolicySkipsPartial(t *testing.T) {
	tr := script(ggaWith(9, "n/a"), sampleSouthWest)
	obs := newCountingObserver()
	r := newTestReader(tr, &fakeSleeper{}, obs, RejectPartial)

	fix, ok := r.ReadFix()
	require.True(t, ok)
	assert.Equal(t, "S", fix.NorthSouth)
	assert.Equal(t, 1, obs.rejected[ReasonPartialDecode])
	assert.Zero(t, obs.partial)
}

func TestNewReader_Defaults(t *testing.T) {
	r := NewReader(script(), ReaderConfig{RetryDelay: -time.Second})
	assert.Equal(t, DefaultMaxAttempts, r.maxAttempts)
	assert.Zero(t, r.retryDelay)
	assert.NotNil(t, r.sleep)
	assert.NotNil(t, r.log)
	assert.Equal(t, AcceptPartial, r.decoder.policy)
}

func TestReadFix_FromMockTransport(t *testing.T) {
	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	origin := Position{Latitude: 1.346316, Longitude: 103.931746}
	m := NewMockTransportWithClock(origin, 90, 10, now)

	r := NewReader(m, ReaderConfig{
		RetryDelay: time.Second,
		Sleep:      func(d time.Duration) { clock = clock.Add(d) },
		Logger:     log.New(io.Discard),
	})

	for i := 0; i < 6; i++ {
		fix, ok := r.ReadFix()
		require.True(t, ok, "read %d", i)
		want := mockPositionAt(m, clock)
		assert.InDelta(t, want.Latitude, fix.Latitude, 1e-5)
		assert.InDelta(t, want.Longitude, fix.Longitude, 1e-5)
		assert.Equal(t, 1, fix.Quality)
		assert.Equal(t, 8, fix.Satellites)
		assert.Equal(t, clock.Format("150405.00"), fix.Timestamp)
	}
	assert.Greater(t, mockPositionAt(m, clock).Longitude, origin.Longitude)
}

// mockPositionAt is where m places the receiver at instant at.
func mockPositionAt(m *MockTransport, at time.Time) Position {
	lat, lon := geo.Destination(m.origin.Latitude, m.origin.Longitude, m.bearingDeg, m.speedMps*at.Sub(m.start).Seconds())
	return Position{Latitude: lat, Longitude: lon}
}

func TestReadFix_MockChatterOnly(t *testing.T) {
	m := NewMockTransport(Position{}, 0, 0)
	m.ChatterEvery = 1
	obs := newCountingObserver()
	r := newTestReader(m, &fakeSleeper{}, obs, AcceptPartial)

	_, ok := r.ReadFix()
	assert.False(t, ok)
	assert.Equal(t, 50, obs.rejected[ReasonWrongTag])
	assert.Equal(t, 1, obs.exhausted)
}

func TestReplayTransport(t *testing.T) {
	capture := "junk\n" + sampleLine + "\r\n" + sampleSouthWest
	tr := NewReplayTransport(strings.NewReader(capture))
	obs := newCountingObserver()
	r := NewReader(tr, ReaderConfig{
		MaxAttempts: 5,
		Sleep:       func(time.Duration) {},
		Logger:      log.New(io.Discard),
		Observer:    obs,
	})

	fix, ok := r.ReadFix()
	require.True(t, ok)
	assert.Equal(t, "N", fix.NorthSouth)

	fix, ok = r.ReadFix()
	require.True(t, ok, "last line without terminator is still delivered")
	assert.Equal(t, "S", fix.NorthSouth)

	_, ok = r.ReadFix()
	assert.False(t, ok)
	assert.Equal(t, 5, obs.rejected[ReasonTransport])

	_, err := tr.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}
