package imgutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// DefaultMaxBytes はアップロード 1 件あたりの上限です。
const DefaultMaxBytes = 20 << 20

// Normalizer はユーザーが選んだファイルを domain.ImagePayload に変換します。
type Normalizer struct {
	// MaxBytes は 1 ファイルの上限サイズです。0 以下なら DefaultMaxBytes。
	MaxBytes int64
	// JPEGQuality が 1 以上なら、デコード可能な画像を JPEG に再圧縮します。
	JPEGQuality int
}

// NewNormalizer は Normalizer を初期化します。
func NewNormalizer(maxBytes int64, jpegQuality int) *Normalizer {
	return &Normalizer{MaxBytes: maxBytes, JPEGQuality: jpegQuality}
}

func (n *Normalizer) maxBytes() int64 {
	if n.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return n.MaxBytes
}

// FromReader は r の内容を読み込み、data URI を経由して ImagePayload を作ります。
// declaredType が image/* でなければ内容からメディアタイプを推定します。
func (n *Normalizer) FromReader(ctx context.Context, name, declaredType string, r io.Reader) (domain.ImagePayload, error) {
	if err := ctx.Err(); err != nil {
		return domain.ImagePayload{}, err
	}

	limit := n.maxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidFile, name, err)
	}
	if len(data) == 0 {
		return domain.ImagePayload{}, fmt.Errorf("%w: %s: empty file", domain.ErrInvalidFile, name)
	}
	if int64(len(data)) > limit {
		return domain.ImagePayload{}, fmt.Errorf("%w: %s: file exceeds %d bytes", domain.ErrInvalidFile, name, limit)
	}

	mediaType := detectMediaType(declaredType, data)
	if !strings.HasPrefix(mediaType, "image/") {
		return domain.ImagePayload{}, fmt.Errorf("%w: %s: not an image (%s)", domain.ErrInvalidFile, name, mediaType)
	}

	if w, h, ok := Dimensions(data); ok {
		slog.DebugContext(ctx, "画像を受け付けました", "file", name, "media_type", mediaType, "width", w, "height", h, "bytes", len(data))
	}

	if n.JPEGQuality > 0 {
		if compressed, err := CompressToJPEG(data, n.JPEGQuality); err == nil {
			data, mediaType = compressed, "image/jpeg"
		} else {
			slog.WarnContext(ctx, "JPEG圧縮に失敗したため元データを使用します", "file", name, "error", err)
		}
	}

	p, err := ParseDataURI(EncodeDataURI(mediaType, data))
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// FromFileHeader は multipart のファイルを開いて変換します。
func (n *Normalizer) FromFileHeader(ctx context.Context, fh *multipart.FileHeader) (domain.ImagePayload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidFile, fh.Filename, err)
	}
	defer f.Close()
	return n.FromReader(ctx, fh.Filename, fh.Header.Get("Content-Type"), f)
}

// FromFileHeaders は複数ファイルを並行に変換します。
// 1 件でも失敗すれば部分的な結果は返さずエラーになります。順序は入力順を保ちます。
func (n *Normalizer) FromFileHeaders(ctx context.Context, headers []*multipart.FileHeader) ([]domain.ImagePayload, error) {
	return normalizeAll(ctx, headers, n.FromFileHeader)
}

// FromDataURIs は JSON API などで受け取った data URI 群を並行に検証します。
func (n *Normalizer) FromDataURIs(ctx context.Context, uris []string) ([]domain.ImagePayload, error) {
	return normalizeAll(ctx, uris, func(ctx context.Context, uri string) (domain.ImagePayload, error) {
		if err := ctx.Err(); err != nil {
			return domain.ImagePayload{}, err
		}
		return ParseDataURI(uri)
	})
}

func normalizeAll[T any](ctx context.Context, inputs []T, fn func(context.Context, T) (domain.ImagePayload, error)) ([]domain.ImagePayload, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	out := make([]domain.ImagePayload, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		g.Go(func() error {
			p, err := fn(gctx, in)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func detectMediaType(declared string, data []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "image/") {
			return mt
		}
	}
	mt, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return mt
}
