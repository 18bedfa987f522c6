package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// --- Mocks ---

type fakeGenerator struct {
	mu        sync.Mutex
	gate      chan struct{}
	genCalls  int
	editCalls int
	lastGen   domain.GenerationRequest
	lastEdit  domain.EditRequest
	results   domain.ResultSet
	editURL   string
	err       error
}

func (f *fakeGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.ResultSet, error) {
	f.mu.Lock()
	f.genCalls++
	f.lastGen = req
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return f.results, f.err
}

func (f *fakeGenerator) Edit(ctx context.Context, req domain.EditRequest) (string, error) {
	f.mu.Lock()
	f.editCalls++
	f.lastEdit = req
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return f.editURL, f.err
}

func (f *fakeGenerator) calls() (gen, edit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.genCalls, f.editCalls
}

func (f *fakeGenerator) generated() domain.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastGen
}

func (f *fakeGenerator) edited() domain.EditRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastEdit
}

// tinyPNG は 4x4 の PNG を返します。
func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeImageModel struct {
	mu     sync.Mutex
	calls  int
	config *genai.GenerateImagesConfig
}

func (m *fakeImageModel) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.config = config

	resp := &genai.GenerateImagesResponse{}
	for i := int32(0); i < config.NumberOfImages; i++ {
		resp.GeneratedImages = append(resp.GeneratedImages, &genai.GeneratedImage{
			Image: &genai.Image{ImageBytes: []byte{byte(i + 1)}, MIMEType: "image/jpeg"},
		})
	}
	return resp, nil
}

type unusedContentModel struct{}

func (unusedContentModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	return nil, errors.New("content model should not be called")
}
