package generator

import (
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// buildParts は画像パーツを入力順に並べ、最後にプロンプトを置きます。
func buildParts(prompt string, images []domain.ImagePayload) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	for i, img := range images {
		data, err := img.Bytes()
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MediaType(), Data: data},
		})
	}
	return append(parts, &genai.Part{Text: prompt}), nil
}

// parseToResponse は最初の候補から最初の画像パーツを取り出します。
func parseToResponse(resp *gemini.Response, noImage string) (*ImageOutput, error) {
	if resp == nil || resp.RawResponse == nil {
		return nil, fmt.Errorf("invalid response")
	}
	if len(resp.RawResponse.Candidates) == 0 {
		return nil, &domain.NoImageError{Message: noImage}
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate != nil && candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &ImageOutput{Data: part.InlineData.Data, MimeType: part.InlineData.MIMEType}, nil
			}
		}
	}

	// 安全フィルター等によるブロック
	if candidate != nil && candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, &domain.NoImageError{Message: noImage, Reason: string(candidate.FinishReason)}
	}
	return nil, &domain.NoImageError{Message: noImage}
}

// imagesToDataURIs は Imagen の結果を返却順のまま data URI に変換します。
func imagesToDataURIs(resp *genai.GenerateImagesResponse) domain.ResultSet {
	if resp == nil {
		return nil
	}
	var urls domain.ResultSet
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := gi.Image.MIMEType
		if mimeType == "" {
			mimeType = textOutputMIMEType
		}
		urls = append(urls, imgutil.EncodeDataURI(mimeType, gi.Image.ImageBytes))
	}
	return urls
}
