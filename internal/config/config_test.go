package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gps_speedometer/internal/gps"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gps_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MinimalUsesDefaults(t *testing.T) {
	path := writeConfig(t, `
# receiver on the Pi UART
MQTT_BROKER=tcp://localhost:1883
GPS_SERIAL_PORT=/dev/serial0
GPS_BAUD_RATE=9600
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "/dev/serial0", cfg.GPSSerialPort)
	assert.Equal(t, 9600, cfg.GPSBaudRate)
	assert.Equal(t, "gps/report", cfg.TopicGPS)
	assert.Equal(t, gps.DefaultMaxAttempts, cfg.GPSMaxAttempts)
	assert.Equal(t, gps.DefaultRetryDelay, cfg.GPSRetryDelay())
	assert.Equal(t, gps.AcceptPartial, cfg.PartialDecodePolicy)
	assert.Equal(t, uint16(0x3C), cfg.DisplayI2CAddr)
	assert.Zero(t, cfg.GPSReadTimeout())
	assert.False(t, cfg.UseMockReceiver())
}

func TestLoad_AllKeys(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER = tcp://broker:1883
MQTT_CLIENT_ID_GPS=gps-a
MQTT_CLIENT_ID_CONSOLE=console-a
MQTT_CLIENT_ID_WEB=web-a
MQTT_CLIENT_ID_DISPLAY=display-a
TOPIC_GPS=vehicle/gps
GPS_SERIAL_PORT=mock
GPS_BAUD_RATE=115200
GPS_READ_TIMEOUT_MS=1000
GPS_MAX_ATTEMPTS=10
GPS_RETRY_DELAY_MS=50
READ_INTERVAL_MS=250
PARTIAL_DECODE_POLICY=reject
WEB_SERVER_PORT=9000
METRICS_PORT=9100
DISPLAY_I2C_ADDR=0x3D
DISPLAY_UPDATE_INTERVAL=1000
CONSOLE_TIMESTAMP_FORMAT=%Y-%m-%d %H:%M:%S
LOG_LEVEL=debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vehicle/gps", cfg.TopicGPS)
	assert.Equal(t, "display-a", cfg.MQTTClientIDDisplay)
	assert.True(t, cfg.UseMockReceiver())
	assert.Equal(t, time.Second, cfg.GPSReadTimeout())
	assert.Equal(t, 10, cfg.GPSMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.GPSRetryDelay())
	assert.Equal(t, 250*time.Millisecond, cfg.ReadInterval())
	assert.Equal(t, gps.RejectPartial, cfg.PartialDecodePolicy)
	assert.Equal(t, 9000, cfg.WebServerPort)
	assert.Equal(t, 9100, cfg.MetricsPort)
	assert.Equal(t, uint16(0x3D), cfg.DisplayI2CAddr)
	assert.Equal(t, 1000, cfg.DisplayUpdateInterval)
	assert.Equal(t, "%Y-%m-%d %H:%M:%S", cfg.ConsoleTimestampFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MockNeedsNoBaudRate(t *testing.T) {
	cfg, err := Load(writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\nGPS_SERIAL_PORT=MOCK\n"))
	require.NoError(t, err)
	assert.True(t, cfg.UseMockReceiver())
}

func TestLoad_Errors(t *testing.T) {
	base := "MQTT_BROKER=tcp://localhost:1883\nGPS_SERIAL_PORT=/dev/ttyUSB0\nGPS_BAUD_RATE=9600\n"

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "missing broker", body: "GPS_SERIAL_PORT=/dev/ttyUSB0\nGPS_BAUD_RATE=9600\n", wantErr: "MQTT_BROKER is required"},
		{name: "missing port", body: "MQTT_BROKER=tcp://x:1883\nGPS_BAUD_RATE=9600\n", wantErr: "GPS_SERIAL_PORT is required"},
		{name: "missing baud", body: "MQTT_BROKER=tcp://x:1883\nGPS_SERIAL_PORT=/dev/ttyUSB0\n", wantErr: "GPS_BAUD_RATE is required"},
		{name: "unknown key", body: base + "IMU_LEFT_SPI_DEVICE=/dev/spidev0.0\n", wantErr: "unknown config key"},
		{name: "no equals", body: base + "LOG_LEVEL\n", wantErr: "invalid config line 4"},
		{name: "bad baud", body: base + "GPS_BAUD_RATE=fast\n", wantErr: "invalid GPS_BAUD_RATE"},
		{name: "zero attempts", body: base + "GPS_MAX_ATTEMPTS=0\n", wantErr: "at least 1"},
		{name: "negative delay", body: base + "GPS_RETRY_DELAY_MS=-5\n", wantErr: "must not be negative"},
		{name: "bad policy", body: base + "PARTIAL_DECODE_POLICY=sometimes\n", wantErr: "PARTIAL_DECODE_POLICY"},
		{name: "bad level", body: base + "LOG_LEVEL=loud\n", wantErr: "invalid LOG_LEVEL"},
		{name: "bad address", body: base + "DISPLAY_I2C_ADDR=0x1FFFF\n", wantErr: "invalid DISPLAY_I2C_ADDR"},
		{name: "empty topic", body: base + "TOPIC_GPS=\n", wantErr: "TOPIC_GPS must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitGlobal(t *testing.T) {
	path := writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\nGPS_SERIAL_PORT=mock\n")

	require.NoError(t, InitGlobal(path))
	require.NotNil(t, Get())
	assert.Equal(t, "tcp://localhost:1883", Get().MQTTBroker)

	// Later calls keep the first configuration.
	require.NoError(t, InitGlobal(filepath.Join(t.TempDir(), "other.txt")))
	assert.True(t, Get().UseMockReceiver())
}
