package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	MinImageCount = 1
	MaxImageCount = 8
)

// ImagePayload はアップロードされた画像を自己完結した形で保持します。
// 生成後は変更されません。
type ImagePayload struct {
	base64    string
	mediaType string
}

// NewImagePayload は base64 文字列とメディアタイプから ImagePayload を作成します。
// 形式の検証は imgutil 側の責務で、ここでは空値のみ弾きます。
func NewImagePayload(encoded, mediaType string) (ImagePayload, error) {
	if encoded == "" || mediaType == "" {
		return ImagePayload{}, fmt.Errorf("%w: empty payload", ErrInvalidFile)
	}
	return ImagePayload{base64: encoded, mediaType: mediaType}, nil
}

func (p ImagePayload) Base64() string    { return p.base64 }
func (p ImagePayload) MediaType() string { return p.mediaType }

// Bytes は base64 をデコードした生データを返します。
func (p ImagePayload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.base64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return data, nil
}

// DataURI は "data:<mime>;base64,<data>" 形式の文字列を返します。
func (p ImagePayload) DataURI() string {
	return DataURI(p.mediaType, p.base64)
}

// DataURI はメディアタイプと base64 文字列から data URI を組み立てます。
func DataURI(mediaType, encoded string) string {
	return "data:" + mediaType + ";base64," + encoded
}

// OutputShape は生成画像のアスペクト比です（テキストからの生成時のみ有効）。
type OutputShape string

const (
	ShapeSquare    OutputShape = "1:1"
	ShapePortrait  OutputShape = "9:16"
	ShapeLandscape OutputShape = "16:9"
	ShapePhoto     OutputShape = "4:3"
	ShapeWide      OutputShape = "3:4"
)

// OutputShapes は UI に並べる順序で全ての形状を返します。
var OutputShapes = []OutputShape{ShapePortrait, ShapeWide, ShapeSquare, ShapePhoto, ShapeLandscape}

var shapeNames = map[string]OutputShape{
	"SQUARE":    ShapeSquare,
	"PORTRAIT":  ShapePortrait,
	"LANDSCAPE": ShapeLandscape,
	"PHOTO":     ShapePhoto,
	"WIDE":      ShapeWide,
}

// ParseOutputShape は名前 (LANDSCAPE) または比率 (16:9) を受け付けます。
// 空文字は既定値の LANDSCAPE になります。
func ParseOutputShape(s string) (OutputShape, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return ShapeLandscape, nil
	}
	if shape, ok := shapeNames[strings.ToUpper(v)]; ok {
		return shape, nil
	}
	for _, shape := range shapeNames {
		if string(shape) == v {
			return shape, nil
		}
	}
	return "", fmt.Errorf("%w: unknown output shape %q", ErrInvalidInput, s)
}

// Name は列挙名 (SQUARE など) を返します。
func (s OutputShape) Name() string {
	for name, shape := range shapeNames {
		if shape == s {
			return name
		}
	}
	return ""
}

// GenerationRequest は画像生成の要求です。
// References が空でない場合、Count は 1 に固定され Shape はリモート側で無視されます。
type GenerationRequest struct {
	Prompt     string
	Shape      OutputShape
	Count      int
	References []ImagePayload
}

// HasReferences は参照画像付きの生成かどうかを返します。
func (r GenerationRequest) HasReferences() bool {
	return len(r.References) > 0
}

// Effective は参照画像がある場合に Count を 1 に強制した要求を返します。
// 呼び出し側の契約であり、Dispatcher はこれを再計算しません。
func (r GenerationRequest) Effective() GenerationRequest {
	if r.HasReferences() {
		r.Count = 1
	}
	return r
}

// EditRequest は画像編集の要求です。両フィールドとも必須です。
type EditRequest struct {
	Prompt string
	Source *ImagePayload
}

// ResultSet は生成結果の data URI を、リモートが返した順序のまま保持します。
type ResultSet []string
