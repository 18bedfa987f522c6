package imgutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestNormalizer_FromReader(t *testing.T) {
	ctx := context.Background()
	pngData := createDummyImageData(t, "png")

	t.Run("PNGをそのままペイロードにする", func(t *testing.T) {
		n := NewNormalizer(0, 0)
		p, err := n.FromReader(ctx, "a.png", "", bytes.NewReader(pngData))
		require.NoError(t, err)
		assert.Equal(t, "image/png", p.MediaType())

		data, err := p.Bytes()
		require.NoError(t, err)
		assert.Equal(t, pngData, data)
	})

	t.Run("宣言されたContent-Typeを優先する", func(t *testing.T) {
		n := NewNormalizer(0, 0)
		p, err := n.FromReader(ctx, "a.webp", "image/webp", bytes.NewReader([]byte("RIFF....WEBP")))
		require.NoError(t, err)
		assert.Equal(t, "image/webp", p.MediaType())
	})

	t.Run("JPEG再圧縮が有効ならimage/jpegになる", func(t *testing.T) {
		n := NewNormalizer(0, 75)
		p, err := n.FromReader(ctx, "a.png", "image/png", bytes.NewReader(pngData))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", p.MediaType())
	})

	failures := []struct {
		name string
		n    *Normalizer
		r    func() *bytes.Reader
	}{
		{"画像でない", NewNormalizer(0, 0), func() *bytes.Reader { return bytes.NewReader([]byte("plain text")) }},
		{"空ファイル", NewNormalizer(0, 0), func() *bytes.Reader { return bytes.NewReader(nil) }},
		{"サイズ超過", NewNormalizer(8, 0), func() *bytes.Reader { return bytes.NewReader(pngData) }},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.n.FromReader(ctx, "x", "", tt.r())
			assert.ErrorIs(t, err, domain.ErrInvalidFile)
		})
	}

	t.Run("読み込みエラー", func(t *testing.T) {
		_, err := NewNormalizer(0, 0).FromReader(ctx, "x", "", failingReader{})
		assert.ErrorIs(t, err, domain.ErrInvalidFile)
	})
}

func TestNormalizer_FromFileHeaders(t *testing.T) {
	ctx := context.Background()
	pngData := createDummyImageData(t, "png")
	jpgData := createDummyImageData(t, "jpeg")

	t.Run("全件成功なら入力順で返る", func(t *testing.T) {
		headers := multipartFiles(t, map[string][]byte{"a.png": pngData, "b.jpg": jpgData}, "a.png", "b.jpg")
		got, err := NewNormalizer(0, 0).FromFileHeaders(ctx, headers)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "image/png", got[0].MediaType())
		assert.Equal(t, "image/jpeg", got[1].MediaType())
	})

	t.Run("1件でも失敗すれば部分結果は返さない", func(t *testing.T) {
		headers := multipartFiles(t, map[string][]byte{"a.png": pngData, "notes.txt": []byte("hello")}, "a.png", "notes.txt")
		got, err := NewNormalizer(0, 0).FromFileHeaders(ctx, headers)
		assert.ErrorIs(t, err, domain.ErrInvalidFile)
		assert.Nil(t, got)
	})

	t.Run("空なら nil", func(t *testing.T) {
		got, err := NewNormalizer(0, 0).FromFileHeaders(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestNormalizer_FromDataURIs(t *testing.T) {
	ctx := context.Background()
	n := NewNormalizer(0, 0)

	got, err := n.FromDataURIs(ctx, []string{"data:image/png;base64,aGVsbG8=", "data:image/gif;base64,R0lG"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "image/gif", got[1].MediaType())

	_, err = n.FromDataURIs(ctx, []string{"data:image/png;base64,aGVsbG8=", "aGVsbG8="})
	assert.ErrorIs(t, err, domain.ErrInvalidFile)
}

// multipartFiles は order の順で files を "references" フィールドに詰めた FileHeader を返します。
func multipartFiles(t *testing.T, files map[string][]byte, order ...string) []*multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for _, name := range order {
		fw, err := w.CreateFormFile("references", name)
		require.NoError(t, err)
		_, err = fw.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["references"]
}

func TestNormalizer_LogsDimensions(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, err := NewNormalizer(0, 0).FromReader(context.Background(), "a.png", "", bytes.NewReader(createDummyImageData(t, "png")))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "a.png", entry["file"])
	assert.EqualValues(t, 10, entry["width"])
	assert.EqualValues(t, 10, entry["height"])
}
