package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel(Debug))
	assert.Equal(t, zap.InfoLevel, parseLevel(Info))
	assert.Equal(t, zap.WarnLevel, parseLevel(Warning))
	assert.Equal(t, zap.ErrorLevel, parseLevel(Error))
	assert.Equal(t, zap.InfoLevel, parseLevel("verbose"))
}

func TestLoggerClientFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &LoggerClient{Zap: zap.New(core)}

	l.Warn("record skipped", errors.New("missing phoneNumber"), map[string]interface{}{
		"storage_id": "abc",
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "record skipped", entries[0].Message)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "abc", ctx["storage_id"])
		assert.Equal(t, "missing phoneNumber", ctx["error"])
	}
}

func TestNopLoggerImplementsLogger(t *testing.T) {
	var l Logger = NewNop()
	l.Info("ignored", nil)
}
