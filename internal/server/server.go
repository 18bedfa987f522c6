package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
	"github.com/shouni/gemini-image-studio/pkg/shell"
)

//go:embed templates/*.html
var templatesFS embed.FS

const defaultGeneratePrompt = "A photorealistic image of a majestic lion in the savanna at sunset, detailed fur, warm lighting"

// Options は App の依存関係です。
type Options struct {
	Generator      generator.ImageGenerator
	Normalizer     *imgutil.Normalizer
	Presets        []Preset
	Metrics        *Metrics
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// App はブラウザ向けの画面と JSON API を提供します。利用者は 1 人を想定しています。
type App struct {
	gen        generator.ImageGenerator
	normalizer *imgutil.Normalizer
	shell      *shell.Shell
	presets    []Preset
	metrics    *Metrics
	tmpl       *template.Template
	maxUpload  int64
	logger     *slog.Logger
	now        func() time.Time

	formMu sync.Mutex
	form   formDraft
}

// formDraft はリダイレクト後もフォームの入力値を残すためのものです。
type formDraft struct {
	GeneratePrompt string
	Shape          domain.OutputShape
	Count          int
	EditPrompt     string
}

// New は App を初期化します。
func New(opts Options) (*App, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if opts.Normalizer == nil {
		opts.Normalizer = imgutil.NewNormalizer(opts.MaxUploadBytes, 0)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = imgutil.DefaultMaxBytes
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"safeURL": func(s string) template.URL { return template.URL(s) },
		"inc":     func(i int) int { return i + 1 },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗しました: %w", err)
	}

	return &App{
		gen:        opts.Generator,
		normalizer: opts.Normalizer,
		shell:      shell.New(shell.ModeGenerate),
		presets:    opts.Presets,
		metrics:    opts.Metrics,
		tmpl:       tmpl,
		maxUpload:  opts.MaxUploadBytes,
		logger:     opts.Logger,
		now:        time.Now,
		form: formDraft{
			GeneratePrompt: defaultGeneratePrompt,
			Shape:          domain.ShapeLandscape,
			Count:          1,
		},
	}, nil
}

// Routes はルーティングを組み立てます。
func (a *App) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(a.logger),
	)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/"+string(shell.ModeGenerate), http.StatusSeeOther)
	})
	r.Get("/healthz", a.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", a.APIGenerate)
		r.Post("/edit", a.APIEdit)
	})

	r.Post("/generate", a.SubmitGenerate)
	r.Post("/generate/references/{index}/delete", a.RemoveReference)
	r.Post("/edit", a.SubmitEdit)
	r.Post("/edit/source", a.UploadSource)
	r.Get("/{mode}", a.Page)
	r.Get("/{mode}/download/{index}", a.Download)

	return r
}

// maxBodyBytes は 1 リクエスト全体の上限です。参照画像の最大枚数ぶんとフォーム項目の余裕を見込みます。
func (a *App) maxBodyBytes() int64 {
	return a.maxUpload*(domain.MaxImageCount+1) + 1<<20
}

// Health は死活監視用です。
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// observe は操作をメトリクス計測で包みます。
func (a *App) observe(mode shell.Mode, op shell.Operation) shell.Operation {
	return func(ctx context.Context) (domain.ResultSet, error) {
		start := a.now()
		results, err := op(ctx)
		a.metrics.Observe(string(mode), outcomeLabel(err), a.now().Sub(start))
		if err != nil {
			a.logger.WarnContext(ctx, "操作が失敗しました", "mode", string(mode), "error", err)
		} else {
			a.logger.InfoContext(ctx, "操作が完了しました", "mode", string(mode), "images", len(results))
		}
		return results, err
	}
}
