package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	scoped := logger.With(String("entity", "Mutant0"))
	scoped.Warn("hook failed", Error(errors.New("boom")), Int("frame", 3), Float64("dt", 0.016))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "hook failed", entries[0].Message)
	assert.Equal(t, "Mutant0", ctx["entity"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 3, ctx["frame"])
}

func TestLoggerLevelGate(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)
	logger.SetLevel(LevelWarn)

	logger.Log(LevelInfo, "dropped")
	logger.Log(LevelError, "kept")

	assert.Equal(t, LevelWarn, logger.GetLevel())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}
