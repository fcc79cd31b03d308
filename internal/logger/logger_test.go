package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_LevelAndFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	closer, err := Init(Config{Level: "debug", Format: "json", File: logFile})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Info().Str("component", "test").Msg("写入日志文件")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "写入日志文件")
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	closer, err := Init(Config{Level: "not-a-level"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	_, err := Init(Config{Level: "info"})
	require.NoError(t, err)

	l := Ctx(context.Background())
	require.NotNil(t, l)
	assert.NotEqual(t, zerolog.Disabled, l.GetLevel())

	ctx := WithContext(context.Background())
	assert.NotNil(t, Ctx(ctx))
}

func TestNewStdLogger(t *testing.T) {
	std := NewStdLogger("[Test] ")
	require.NotNil(t, std)
	assert.Equal(t, "[Test] ", std.Prefix())
}
