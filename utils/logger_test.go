package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, WARN)
	l.now = func() time.Time { return time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC) }

	l.Info("hidden")
	l.WithFields(map[string]interface{}{"id": "abc", "backend": "bolt"}).Warn("letter %s", "missing")

	assert.Equal(t, "[2024-03-15 09:00:00] [WARN] letter missing [backend=bolt, id=abc]\n", buf.String())
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("Debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}
