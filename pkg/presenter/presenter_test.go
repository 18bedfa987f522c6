package presenter

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/shell"
)

func TestRender(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	t.Run("Idle はプレースホルダ", func(t *testing.T) {
		v := Render(shell.ModeGenerate, shell.Idle{}, now)
		assert.Equal(t, KindPlaceholder, v.Kind)
		assert.Equal(t, "Your generated images will appear here.", v.Message)
		assert.False(t, v.Busy())

		v = Render(shell.ModeEdit, shell.Idle{}, now)
		assert.Equal(t, "Your edited image will appear here.", v.Message)
	})

	t.Run("Busy は進捗表示", func(t *testing.T) {
		v := Render(shell.ModeEdit, shell.Busy{Ticket: uuid.New()}, now)
		assert.Equal(t, KindProgress, v.Kind)
		assert.Equal(t, "Editing...", v.Message)
		assert.True(t, v.Busy())
	})

	t.Run("Failed はエラーメッセージ", func(t *testing.T) {
		v := Render(shell.ModeGenerate, shell.Failed{Message: "boom"}, now)
		assert.Equal(t, KindError, v.Kind)
		assert.Equal(t, "boom", v.Message)
		assert.Empty(t, v.Images)
	})

	t.Run("複数枚は2列でファイル名に時刻と番号が入る", func(t *testing.T) {
		state := shell.Succeeded{Results: domain.ResultSet{
			"data:image/jpeg;base64,QQ==",
			"data:image/jpeg;base64,Qg==",
		}, At: now}
		v := Render(shell.ModeGenerate, state, time.Time{})

		assert.Equal(t, KindGallery, v.Kind)
		assert.Equal(t, 2, v.Columns)
		require.Len(t, v.Images, 2)
		assert.Equal(t, "ai-generated-1700000000000-1.jpeg", v.Images[0].DownloadName)
		assert.Equal(t, "ai-generated-1700000000000-2.jpeg", v.Images[1].DownloadName)
		assert.Equal(t, "Generated image 2", v.Images[1].Alt)
		assert.Equal(t, "data:image/jpeg;base64,Qg==", v.Images[1].URL)
	})

	t.Run("編集結果は1列", func(t *testing.T) {
		state := shell.Succeeded{Results: domain.ResultSet{"data:image/png;base64,QQ=="}}
		v := Render(shell.ModeEdit, state, now)

		assert.Equal(t, 1, v.Columns)
		require.Len(t, v.Images, 1)
		assert.Equal(t, "ai-edited-1700000000000.png", v.Images[0].DownloadName)
		assert.Equal(t, "image/png", v.Images[0].MediaType)
	})

	t.Run("空の成功はプレースホルダ扱い", func(t *testing.T) {
		v := Render(shell.ModeGenerate, shell.Succeeded{}, now)
		assert.Equal(t, KindPlaceholder, v.Kind)
	})
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpeg", Extension("image/jpeg"))
	assert.Equal(t, "webp", Extension("image/webp"))
	assert.Equal(t, "png", Extension("application/octet-stream"))
}
