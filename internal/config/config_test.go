package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("既定値", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, ":8080", cfg.Addr())
		assert.Equal(t, "imagen-4.0-generate-001", cfg.ImageModel)
		assert.Equal(t, "gemini-2.5-flash-image", cfg.EditModel)
		assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
		assert.Equal(t, 0, cfg.ReferenceJPEGQuality)
		assert.Equal(t, 120*time.Second, cfg.WriteTimeout)
	})

	t.Run("環境変数で上書きできる", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("PORT", "1919")
		t.Setenv("REFERENCE_JPEG_QUALITY", "80")
		t.Setenv("HTTP_READ_TIMEOUT", "5s")
		t.Setenv("PRESETS_FILE", "presets.yaml")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":1919", cfg.Addr())
		assert.Equal(t, 80, cfg.ReferenceJPEGQuality)
		assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
		assert.Equal(t, "presets.yaml", cfg.PresetsFile)
	})

	t.Run("APIキーが無ければエラー", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("品質が範囲外ならエラー", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("REFERENCE_JPEG_QUALITY", "101")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.in}
			assert.Equal(t, tt.want, cfg.SlogLevel())
		})
	}
}
