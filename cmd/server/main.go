package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/gemini-image-studio/internal/config"
	"github.com/shouni/gemini-image-studio/internal/server"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("サーバーが異常終了しました", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := generator.NewGenaiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	content, err := generator.NewGenaiContentModel(client)
	if err != nil {
		return err
	}
	gen, err := generator.NewGeminiGenerator(client.Models, content, generator.Models{
		Image:   cfg.ImageModel,
		Content: cfg.EditModel,
	})
	if err != nil {
		return err
	}

	var presetData []byte
	if cfg.PresetsFile != "" {
		if presetData, err = os.ReadFile(cfg.PresetsFile); err != nil {
			return err
		}
	}
	presets, err := server.LoadPresets(presetData)
	if err != nil {
		return err
	}

	app, err := server.New(server.Options{
		Generator:      gen,
		Normalizer:     imgutil.NewNormalizer(cfg.MaxUploadBytes, cfg.ReferenceJPEGQuality),
		Presets:        presets,
		Metrics:        server.NewMetrics(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP サーバーを起動します", "addr", cfg.Addr(), "image_model", cfg.ImageModel, "edit_model", cfg.EditModel)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("シャットダウンを開始します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("シャットダウンしました")
	return nil
}
