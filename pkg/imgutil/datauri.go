package imgutil

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

const base64Marker = ";base64"

// ParseDataURI は "data:<mime>;base64,<data>" 形式の文字列を ImagePayload に変換します。
// ヘッダが無い、base64 でない、データが空の場合は domain.ErrInvalidFile を返します。
func ParseDataURI(s string) (domain.ImagePayload, error) {
	header, data, found := strings.Cut(s, ",")
	if !found || data == "" {
		return domain.ImagePayload{}, fmt.Errorf("%w: missing data URI separator", domain.ErrInvalidFile)
	}

	meta, ok := strings.CutPrefix(header, "data:")
	if !ok {
		return domain.ImagePayload{}, fmt.Errorf("%w: missing data URI header", domain.ErrInvalidFile)
	}
	mediaType, ok := strings.CutSuffix(meta, base64Marker)
	if !ok {
		return domain.ImagePayload{}, fmt.Errorf("%w: data URI is not base64 encoded", domain.ErrInvalidFile)
	}
	// "image/png;charset=..." のようなパラメータは落とす
	mediaType, _, _ = strings.Cut(mediaType, ";")
	if mediaType == "" || !strings.Contains(mediaType, "/") {
		return domain.ImagePayload{}, fmt.Errorf("%w: missing media type", domain.ErrInvalidFile)
	}

	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return domain.ImagePayload{}, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}

	return domain.NewImagePayload(data, strings.ToLower(mediaType))
}

// SplitDataURI は data URI からメディアタイプとデコード済みデータを取り出します。
func SplitDataURI(s string) (string, []byte, error) {
	p, err := ParseDataURI(s)
	if err != nil {
		return "", nil, err
	}
	data, err := p.Bytes()
	if err != nil {
		return "", nil, err
	}
	return p.MediaType(), data, nil
}

// EncodeDataURI はバイト列を data URI に変換します。
func EncodeDataURI(mediaType string, data []byte) string {
	return domain.DataURI(mediaType, base64.StdEncoding.EncodeToString(data))
}
