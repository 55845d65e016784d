package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" warn ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for input, want := range cases {
		got, ok := ParseLevel(input)
		require.True(t, ok, input)
		require.Equal(t, want, got, input)
	}

	got, ok := ParseLevel("verbose")
	require.False(t, ok)
	require.Equal(t, zapcore.InfoLevel, got)
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))

	log := New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), log)
	require.Same(t, log, FromContext(ctx))
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	require.NotNil(t, OrNop(nil))

	log := New(nil)
	require.Same(t, log, OrNop(log))
}
