package generator

const (
	// DefaultImageModel はテキストからの生成に使う Imagen モデルです。
	DefaultImageModel = "imagen-4.0-generate-001"
	// DefaultContentModel は参照画像付き生成と編集に使うモデルです。
	DefaultContentModel = "gemini-2.5-flash-image"

	// textOutputMIMEType は Imagen に要求する出力形式です。
	textOutputMIMEType = "image/jpeg"
)

// ユーザーに見せるメッセージ
const (
	msgGenerateFailed   = "Failed to generate images. Please check your prompt and try again."
	msgEditFailed       = "Failed to edit image. Please try again."
	msgNoReferenceImage = "No image was generated from the reference."
	msgNoImages         = "No images were generated."
	msgNoEditedImage    = "No edited image was returned."
)

// Models は用途ごとのモデル名です。空の項目は既定値になります。
type Models struct {
	Image   string
	Content string
}

func (m Models) withDefaults() Models {
	if m.Image == "" {
		m.Image = DefaultImageModel
	}
	if m.Content == "" {
		m.Content = DefaultContentModel
	}
	return m
}

// ImageOutput はレスポンス解析の内部結果です。
type ImageOutput struct {
	Data     []byte
	MimeType string
}

// variant はリクエストの種別で、呼び出し位置で一度だけ決定します。
type variant int

const (
	variantText variant = iota
	variantReference
)
