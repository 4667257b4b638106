package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogLevelWarning)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "warn 3")
	assert.Contains(t, lines[1], "error 4")
}

func TestWithTagAddsField(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogLevelInfo).WithTag("lighting")

	l.Infof("hue=%d", 149)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "lighting", entry["tag"])
	assert.Equal(t, "hue=149", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNilWriterDiscards(t *testing.T) {
	l := NewLogger(nil, LogLevelDebug)
	assert.NotPanics(t, func() {
		l.Debugf("nothing to see")
		l.Errorf("still nothing")
	})
}
