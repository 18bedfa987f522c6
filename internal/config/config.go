package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定です。環境変数から読み込みます。
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	GeminiAPIKey string `env:"GEMINI_API_KEY,required,notEmpty"`

	ImageModel string `env:"IMAGE_MODEL" envDefault:"imagen-4.0-generate-001"`
	EditModel  string `env:"EDIT_MODEL" envDefault:"gemini-2.5-flash-image"`

	// MaxUploadBytes はアップロード 1 件あたりの上限です。
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
	// ReferenceJPEGQuality が 1 以上なら、アップロード画像を送信前に JPEG へ再圧縮します。
	ReferenceJPEGQuality int `env:"REFERENCE_JPEG_QUALITY" envDefault:"0"`

	// PresetsFile を指定すると編集プリセットを YAML ファイルから読み込みます。
	PresetsFile string `env:"PRESETS_FILE"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load は .env.local と .env を (存在すれば) 読み込んだ上で環境変数を解析します。
// 既に設定されている環境変数は上書きしません。
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ReferenceJPEGQuality < 0 || c.ReferenceJPEGQuality > 100 {
		return fmt.Errorf("REFERENCE_JPEG_QUALITY must be between 0 and 100, got %d", c.ReferenceJPEGQuality)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// Addr は http.Server 用の待ち受けアドレスです。
func (c *Config) Addr() string {
	return ":" + c.Port
}

// SlogLevel は LOG_LEVEL を slog.Level に変換します。解釈できなければ Info です。
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
