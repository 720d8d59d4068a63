package logging

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true)

	logger.Info("synced %d fields", 3)
	logger.Warn("no secrets detected")
	logger.Error("store unreachable")
	logger.Debug("hidden unless debug is on")

	out := buf.String()
	assert.Contains(t, out, "✓ synced 3 fields")
	assert.Contains(t, out, "⚠ no secrets detected")
	assert.Contains(t, out, "✗ store unreachable")
	assert.NotContains(t, out, "hidden unless debug is on")
}

func TestLogger_DebugEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, true, true)
	logger.Debug("resolved identity %s", "gh-projects/acme__widget__root")

	assert.Contains(t, buf.String(), "[DEBUG] resolved identity gh-projects/acme__widget__root")
}

func TestSecret_NeverPrintsValue(t *testing.T) {
	t.Parallel()

	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
}

func TestRedact(t *testing.T) {
	t.Parallel()

	out := Redact("token=abcd1234 other=ok", []string{"abcd1234", "ok"})
	assert.Equal(t, "token=[REDACTED] other=ok", out, "short values are not redacted")
}
