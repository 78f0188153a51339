package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.in))
		})
	}
}

func TestShortCaller(t *testing.T) {
	file := filepath.Join("root", "module", "internal", "app", "library", "collection.go")
	assert.Equal(t, filepath.Join("library", "collection.go")+":42", shortCaller(0, file, 42))
	assert.Equal(t, "main.go:7", shortCaller(0, "main.go", 7))
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearo.log")
	require.NoError(t, Init(Config{Output: "file", File: path, Level: "warn"}))
	t.Cleanup(func() { _ = Init(Config{Output: "discard"}) })

	zlog.Info().Msg("hidden")
	zlog.Warn().Msg("shown")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"message":"shown"`)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestInit_Errors(t *testing.T) {
	assert.Error(t, Init(Config{Output: "file"}))
	assert.Error(t, Init(Config{Output: "syslog"}))
	assert.NoError(t, Init(Config{Output: "discard"}))
}
