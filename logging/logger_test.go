package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	entries []entry
}

type entry struct {
	level string
	msg   string
	args  []any
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.add("debug", msg, args) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.add("info", msg, args) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.add("warn", msg, args) }
func (r *recordingLogger) Error(msg string, args ...any) { r.add("error", msg, args) }

func (r *recordingLogger) add(level, msg string, args []any) {
	r.entries = append(r.entries, entry{level: level, msg: msg, args: args})
}

func TestNewJSONLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: LevelWarn, Format: "json", Output: &buf})

	l.Info("hidden")
	l.Warn("shown", "k", "v")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestWithSlogAdapterAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := With(New(&Config{Level: LevelDebug, Output: &buf}), "agent", "tech")

	l.Debug("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "tech", rec["agent"])
}

func TestWithWrapsForeignLoggers(t *testing.T) {
	rec := &recordingLogger{}
	l := With(With(rec, "a", 1), "b", 2)

	l.Error("boom", "c", 3)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "error", rec.entries[0].level)
	assert.Equal(t, []any{"c", 3, "a", 1, "b", 2}, rec.entries[0].args)
}

func TestWithNil(t *testing.T) {
	assert.Equal(t, NoOpLogger{}, With(nil, "a", 1))
}

func TestLogHelpers(t *testing.T) {
	rec := &recordingLogger{}

	LogLLMCall(rec, "claude", 10*time.Millisecond, nil)
	LogToolCall(rec, "weather", time.Millisecond, errors.New("offline"))

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "llm.call.completed", rec.entries[0].msg)
	assert.Equal(t, "error", rec.entries[1].level)
	assert.Contains(t, rec.entries[1].args, "offline")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "WARN", LevelWarn.String())
}
