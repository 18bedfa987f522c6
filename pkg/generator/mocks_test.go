package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// --- Mocks ---

type mockImageModel struct {
	calls      int
	lastModel  string
	lastPrompt string
	lastConfig *genai.GenerateImagesConfig
	resp       *genai.GenerateImagesResponse
	err        error
}

func (m *mockImageModel) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.calls++
	m.lastModel = model
	m.lastPrompt = prompt
	m.lastConfig = config
	return m.resp, m.err
}

type mockContentModel struct {
	calls     int
	lastModel string
	lastParts []*genai.Part
	resp      *gemini.Response
	err       error
}

func (m *mockContentModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.calls++
	m.lastModel = model
	m.lastParts = parts
	return m.resp, m.err
}

// imagenResponse は n 枚の画像を返す Imagen レスポンスを作ります。i 番目のデータは []byte{byte(i)}。
func imagenResponse(n int) *genai.GenerateImagesResponse {
	resp := &genai.GenerateImagesResponse{}
	for i := 0; i < n; i++ {
		resp.GeneratedImages = append(resp.GeneratedImages, &genai.GeneratedImage{
			Image: &genai.Image{ImageBytes: []byte{byte(i + 1)}, MIMEType: "image/jpeg"},
		})
	}
	return resp
}

func imageContentResponse(mimeType string, data []byte) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "here you go"},
						{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
					},
				},
			}},
		},
	}
}
