// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"

	"github.com/relabs-tech/gps_speedometer/internal/gps"
)

// MockSerialPort selects the simulated receiver instead of a real port.
const MockSerialPort = "mock"

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDGPS     string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string

	// Topics
	TopicGPS string

	// GPS receiver
	GPSSerialPort    string // device path, or "mock"
	GPSBaudRate      int
	GPSReadTimeoutMS int // 0 = blocking reads
	GPSMaxAttempts   int
	GPSRetryDelayMS  int

	// Decoding
	PartialDecodePolicy gps.PartialPolicy

	// Timing
	ReadIntervalMS int // pause between fixes in the producer loop

	// Web Server
	WebServerPort int
	MetricsPort   int // 0 disables /metrics

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds

	// Console
	ConsoleTimestampFormat string // strftime pattern

	// Logging
	LogLevel string
}

// Package-level singleton state. External code uses InitGlobal() to set and
// Get() to read; configOnce makes InitGlobal idempotent and configMu lets
// many goroutines read concurrently.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Defaults returns a Config with every optional key set.
func Defaults() *Config {
	return &Config{
		MQTTClientIDGPS:        "gps-producer",
		MQTTClientIDConsole:    "gps-console",
		MQTTClientIDWeb:        "gps-web",
		MQTTClientIDDisplay:    "gps-display",
		TopicGPS:               "gps/report",
		GPSMaxAttempts:         gps.DefaultMaxAttempts,
		GPSRetryDelayMS:        int(gps.DefaultRetryDelay / time.Millisecond),
		PartialDecodePolicy:    gps.AcceptPartial,
		ReadIntervalMS:         200,
		WebServerPort:          8080,
		MetricsPort:            0,
		DisplayI2CAddr:         0x3C,
		DisplayUpdateInterval:  500,
		ConsoleTimestampFormat: "%H:%M:%S",
		LogLevel:               "info",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_GPS":
		c.TopicGPS = value

	// GPS receiver
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate
	case "GPS_READ_TIMEOUT_MS":
		ms, err := nonNegative(key, value)
		if err != nil {
			return err
		}
		c.GPSReadTimeoutMS = ms
	case "GPS_MAX_ATTEMPTS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_MAX_ATTEMPTS %q: %w", value, err)
		}
		if n < 1 {
			return fmt.Errorf("GPS_MAX_ATTEMPTS must be at least 1, got %d", n)
		}
		c.GPSMaxAttempts = n
	case "GPS_RETRY_DELAY_MS":
		ms, err := nonNegative(key, value)
		if err != nil {
			return err
		}
		c.GPSRetryDelayMS = ms

	// Decoding
	case "PARTIAL_DECODE_POLICY":
		p, err := gps.ParsePartialPolicy(value)
		if err != nil {
			return fmt.Errorf("invalid PARTIAL_DECODE_POLICY: %w", err)
		}
		c.PartialDecodePolicy = p

	// Timing
	case "READ_INTERVAL_MS":
		ms, err := nonNegative(key, value)
		if err != nil {
			return err
		}
		c.ReadIntervalMS = ms

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port
	case "METRICS_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid METRICS_PORT %q: %w", value, err)
		}
		c.MetricsPort = port

	// Display
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", interval)
		}
		c.DisplayUpdateInterval = interval

	// Console
	case "CONSOLE_TIMESTAMP_FORMAT":
		if _, err := strftime.New(value); err != nil {
			return fmt.Errorf("invalid CONSOLE_TIMESTAMP_FORMAT %q: %w", value, err)
		}
		c.ConsoleTimestampFormat = value

	// Logging
	case "LOG_LEVEL":
		if _, err := log.ParseLevel(value); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
		}
		c.LogLevel = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func nonNegative(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, n)
	}
	return n, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if c.GPSBaudRate == 0 && !c.UseMockReceiver() {
		return fmt.Errorf("GPS_BAUD_RATE is required")
	}
	if c.TopicGPS == "" {
		return fmt.Errorf("TOPIC_GPS must not be empty")
	}
	return nil
}

// UseMockReceiver reports whether GPS_SERIAL_PORT selects the simulator.
func (c *Config) UseMockReceiver() bool {
	return strings.EqualFold(c.GPSSerialPort, MockSerialPort)
}

// GPSReadTimeout is GPS_READ_TIMEOUT_MS as a duration.
func (c *Config) GPSReadTimeout() time.Duration {
	return time.Duration(c.GPSReadTimeoutMS) * time.Millisecond
}

// GPSRetryDelay is GPS_RETRY_DELAY_MS as a duration.
func (c *Config) GPSRetryDelay() time.Duration {
	return time.Duration(c.GPSRetryDelayMS) * time.Millisecond
}

// ReadInterval is READ_INTERVAL_MS as a duration.
func (c *Config) ReadInterval() time.Duration {
	return time.Duration(c.ReadIntervalMS) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads the file.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
