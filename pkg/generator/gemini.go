package generator

import (
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// imageModality は画像だけを返させるための応答モダリティです。
const imageModality = "IMAGE"

// GenaiContentModel は *genai.Models を ContentModel として使うためのアダプターです。
type GenaiContentModel struct {
	models *genai.Models
}

// NewGenaiContentModel は genai クライアントから GenaiContentModel を作ります。
func NewGenaiContentModel(client *genai.Client) (*GenaiContentModel, error) {
	if client == nil || client.Models == nil {
		return nil, fmt.Errorf("genai client is required")
	}
	return &GenaiContentModel{models: client.Models}, nil
}

// GenerateWithParts はパーツ列を 1 つのユーザーコンテンツにまとめて送信します。
func (m *GenaiContentModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{imageModality},
	}
	if opts.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := m.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, err
	}
	return &gemini.Response{RawResponse: resp}, nil
}

// NewGenaiClient は Gemini API バックエンドの genai クライアントを作成します。
func NewGenaiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
}

var _ ContentModel = (*GenaiContentModel)(nil)
var _ ImageModel = (*genai.Models)(nil)
