// Package presenter は UI 状態を表示用のビューモデルに変換します。状態以外の入力は持ちません。
package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/shouni/gemini-image-studio/pkg/shell"
)

// Kind は結果パネルに何を表示するかを表します。
type Kind int

const (
	KindPlaceholder Kind = iota
	KindProgress
	KindError
	KindGallery
)

func (k Kind) String() string {
	switch k {
	case KindProgress:
		return "progress"
	case KindError:
		return "error"
	case KindGallery:
		return "gallery"
	default:
		return "placeholder"
	}
}

// Image はギャラリーの 1 枚です。
type Image struct {
	Index        int
	URL          string
	MediaType    string
	Alt          string
	DownloadName string
}

// View は結果パネルのビューモデルです。
type View struct {
	Mode    shell.Mode
	Kind    Kind
	Message string
	Images  []Image
	Columns int
}

// Busy は送信ボタンを無効化すべきかどうかを返します。
func (v View) Busy() bool { return v.Kind == KindProgress }

// Render は mode と state から View を作ります。
// ダウンロード名には成功時刻 (無ければ now) と 1 始まりの番号が入ります。
func Render(mode shell.Mode, state shell.State, now time.Time) View {
	v := View{Mode: mode, Kind: KindPlaceholder, Columns: 1, Message: placeholder(mode)}

	switch st := state.(type) {
	case shell.Busy:
		v.Kind = KindProgress
		v.Message = progressLabel(mode)
	case shell.Failed:
		v.Kind = KindError
		v.Message = st.Message
	case shell.Succeeded:
		if len(st.Results) == 0 {
			return v
		}
		at := st.At
		if at.IsZero() {
			at = now
		}
		v.Kind = KindGallery
		v.Message = ""
		if len(st.Results) > 1 {
			v.Columns = 2
		}
		for i, url := range st.Results {
			mediaType := mediaTypeOf(url)
			v.Images = append(v.Images, Image{
				Index:        i + 1,
				URL:          url,
				MediaType:    mediaType,
				Alt:          altText(mode, i+1),
				DownloadName: DownloadName(mode, at, i+1, mediaType),
			})
		}
	}
	return v
}

// DownloadName は保存時のファイル名を返します。
// 生成: ai-generated-<unix ms>-<n>.<ext>、編集: ai-edited-<unix ms>.<ext>
func DownloadName(mode shell.Mode, at time.Time, index int, mediaType string) string {
	ext := Extension(mediaType)
	if mode == shell.ModeEdit {
		return fmt.Sprintf("ai-edited-%d.%s", at.UnixMilli(), ext)
	}
	return fmt.Sprintf("ai-generated-%d-%d.%s", at.UnixMilli(), index, ext)
}

// Extension はメディアタイプに対応する拡張子です。
func Extension(mediaType string) string {
	switch strings.ToLower(mediaType) {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

func mediaTypeOf(dataURI string) string {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return ""
	}
	mt, _, _ := strings.Cut(rest, ";")
	return mt
}

func altText(mode shell.Mode, n int) string {
	if mode == shell.ModeEdit {
		return "Edited image"
	}
	return fmt.Sprintf("Generated image %d", n)
}

func placeholder(mode shell.Mode) string {
	if mode == shell.ModeEdit {
		return "Your edited image will appear here."
	}
	return "Your generated images will appear here."
}

func progressLabel(mode shell.Mode) string {
	if mode == shell.ModeEdit {
		return "Editing..."
	}
	return "Generating..."
}
