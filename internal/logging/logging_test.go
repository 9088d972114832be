package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "gps", "warn")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("partial decode", "field", 9)
	out := buf.String()
	assert.Contains(t, out, "gps")
	assert.Contains(t, out, "partial decode")
	assert.Contains(t, out, "field=9")
}

func TestNewWithWriter_DefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "web", "")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestNewWithWriter_BadLevel(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "web", "shouty")
	assert.Error(t, err)
}
