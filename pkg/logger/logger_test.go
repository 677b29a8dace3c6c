package logger

import (
	"testing"

	"designhub_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		level string
		want  zapcore.Level
	}{
		{"explicit wins", "debug", "warn", zap.WarnLevel},
		{"case insensitive", "release", "ERROR", zap.ErrorLevel},
		{"debug mode default", "debug", "", zap.DebugLevel},
		{"release default", "release", "", zap.InfoLevel},
		{"unknown falls back", "release", "loud", zap.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{Mode: tt.mode}, Log: config.LogConfig{Level: tt.level}}
			assert.Equal(t, tt.want, ParseLevel(cfg))
		})
	}
}

func TestSetLevelAfterInit(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Mode: "release"}}
	InitLogger(cfg)
	defer func() { Log = zap.NewNop() }()

	assert.False(t, Log.Core().Enabled(zap.DebugLevel))

	cfg.Log.Level = "debug"
	SetLevel(cfg)
	assert.True(t, Log.Core().Enabled(zap.DebugLevel))
}
