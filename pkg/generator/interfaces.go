package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// ImageGenerator はハンドラ層が利用する統合窓口です。
type ImageGenerator interface {
	// Generate はテキスト (と任意の参照画像) から画像を生成します。
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.ResultSet, error)
	// Edit は元画像と指示文から編集済み画像を 1 枚生成します。
	Edit(ctx context.Context, req domain.EditRequest) (string, error)
}

// ImageModel は Imagen によるテキストからの画像生成です。*genai.Models がそのまま満たします。
type ImageModel interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// ContentModel は gemini.GenerativeModel のうち、パーツ列を送って生成する部分だけを切り出したものです。
type ContentModel interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}
