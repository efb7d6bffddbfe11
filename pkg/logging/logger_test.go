package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_WritesJSONWithServiceTag(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Service: "rpc", Writer: &buf})
	l.Info("hello", "key", "value")

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"service":"rpc"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestLogger_LevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Writer: &buf})
	l.Info("should not appear")
	l.Warn("should appear")

	out := buf.String()
	assert.False(t, strings.Contains(out, "should not appear"))
	assert.True(t, strings.Contains(out, "should appear"))
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Writer: &buf})
	child := l.With("engine_id", "abc")
	child.Info("tick")
	assert.Contains(t, buf.String(), `"engine_id":"abc"`)
}

func TestDefault_ReturnsSameInstance(t *testing.T) {
	a := Default()
	b := Default()
	assert.Same(t, a, b)
}
