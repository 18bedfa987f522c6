package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// GeminiGenerator はテキストからの生成 (Imagen) と、画像を伴う生成・編集 (Gemini) を振り分けます。
// リトライやタイムアウトは持たず、トランスポートの挙動に任せます。
type GeminiGenerator struct {
	images  ImageModel
	content ContentModel
	models  Models
}

// NewGeminiGenerator は依存関係を注入して GeminiGenerator を初期化します。
func NewGeminiGenerator(images ImageModel, content ContentModel, models Models) (*GeminiGenerator, error) {
	if images == nil {
		return nil, fmt.Errorf("images (ImageModel) is required")
	}
	if content == nil {
		return nil, fmt.Errorf("content (ContentModel) is required")
	}
	return &GeminiGenerator{
		images:  images,
		content: content,
		models:  models.withDefaults(),
	}, nil
}

// Generate は参照画像の有無でリクエストを振り分けます。
// 参照画像がある場合の枚数 1 への固定は呼び出し側の契約で、ここでは Shape と Count を無視するだけです。
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.ResultSet, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", domain.ErrInvalidInput)
	}

	switch variantOf(req) {
	case variantReference:
		url, err := g.generateFromImages(ctx, "generate", req.Prompt, req.References, msgGenerateFailed, msgNoReferenceImage)
		if err != nil {
			return nil, err
		}
		return domain.ResultSet{url}, nil
	default:
		return g.generateFromText(ctx, req)
	}
}

// Edit は元画像と指示文を 1 回のリクエストにまとめて送ります。
func (g *GeminiGenerator) Edit(ctx context.Context, req domain.EditRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("%w: editing instruction cannot be empty", domain.ErrInvalidInput)
	}
	if req.Source == nil {
		return "", fmt.Errorf("%w: source image is required", domain.ErrInvalidInput)
	}
	return g.generateFromImages(ctx, "edit", req.Prompt, []domain.ImagePayload{*req.Source}, msgEditFailed, msgNoEditedImage)
}

func (g *GeminiGenerator) generateFromText(ctx context.Context, req domain.GenerationRequest) (domain.ResultSet, error) {
	if req.Count < domain.MinImageCount || req.Count > domain.MaxImageCount {
		return nil, fmt.Errorf("%w (got %d)", domain.ErrInvalidCount, req.Count)
	}

	shape := req.Shape
	if shape == "" {
		shape = domain.ShapeLandscape
	}

	slog.InfoContext(ctx, "Imagen生成リクエスト", "model", g.models.Image, "count", req.Count, "aspect_ratio", string(shape))
	resp, err := g.images.GenerateImages(ctx, g.models.Image, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(req.Count),
		AspectRatio:    string(shape),
		OutputMIMEType: textOutputMIMEType,
	})
	if err != nil {
		slog.WarnContext(ctx, "Imagen生成に失敗しました", "error", err)
		return nil, domain.NewRemoteOperationError("generate", err, msgGenerateFailed)
	}

	urls := imagesToDataURIs(resp)
	if len(urls) == 0 {
		return nil, &domain.NoImageError{Message: msgNoImages}
	}
	return urls, nil
}

// generateFromImages は画像パーツ群 + テキストを送り、最初の画像パーツを data URI で返します。
func (g *GeminiGenerator) generateFromImages(ctx context.Context, op, prompt string, images []domain.ImagePayload, fallback, noImage string) (string, error) {
	parts, err := buildParts(prompt, images)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Gemini画像リクエストを送信します", "op", op, "model", g.models.Content, "images", len(images))
	resp, err := g.content.GenerateWithParts(ctx, g.models.Content, parts, gemini.GenerateOptions{})
	if err != nil {
		slog.WarnContext(ctx, "Gemini画像リクエストに失敗しました", "op", op, "error", err)
		return "", domain.NewRemoteOperationError(op, err, fallback)
	}

	out, err := parseToResponse(resp, noImage)
	if err != nil {
		var noImg *domain.NoImageError
		if errors.As(err, &noImg) {
			return "", noImg
		}
		return "", domain.NewRemoteOperationError(op, err, fallback)
	}
	return imgutil.EncodeDataURI(out.MimeType, out.Data), nil
}

func variantOf(req domain.GenerationRequest) variant {
	if req.HasReferences() {
		return variantReference
	}
	return variantText
}

var _ ImageGenerator = (*GeminiGenerator)(nil)
