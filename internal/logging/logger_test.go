// ABOUTME: Tests for the zap logger wrapper.
package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "PRODUCTION", "quiet", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger)
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("goal_id", 7).Warn("goal check failed", "error", "boom")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "goal check failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 7, fields["goal_id"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("ignored", "k", "v")
	l.Sync()
}
