package logging

import (
	"testing"

	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		enabled zapcore.Level
		muted   zapcore.Level
		wantErr bool
	}{
		{name: "default level", cfg: config.LogConfig{}, enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{name: "debug development", cfg: config.LogConfig{Level: "debug", Development: true}, enabled: zapcore.DebugLevel, muted: zapcore.DebugLevel - 1},
		{name: "warn", cfg: config.LogConfig{Level: "warn"}, enabled: zapcore.WarnLevel, muted: zapcore.InfoLevel},
		{name: "bad level", cfg: config.LogConfig{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.muted))
		})
	}
}
