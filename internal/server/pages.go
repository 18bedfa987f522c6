package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
	"github.com/shouni/gemini-image-studio/pkg/presenter"
	"github.com/shouni/gemini-image-studio/pkg/shell"
)

// 入力検証で表示するメッセージ
const (
	msgReferencesUnreadable = "Could not process one or more images. Please try again."
	msgEmptyPrompt          = "Prompt cannot be empty."
	msgSourceUnreadable     = "Could not process file. Please try another image."
	msgEditIncomplete       = "Please upload an image and provide an editing instruction."
)

var countOptions = func() []int {
	opts := make([]int, 0, domain.MaxImageCount)
	for n := domain.MinImageCount; n <= domain.MaxImageCount; n++ {
		opts = append(opts, n)
	}
	return opts
}()

type shapeOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Mode         string
	View         presenter.View
	Refresh      bool
	Form         formDraft
	Shapes       []shapeOption
	CountOptions []int
	Presets      []Preset
	Source       string
	References   []string
}

// Page はモード画面を描画します。表示中と異なるモードへの遷移はモード切替です。
func (a *App) Page(w http.ResponseWriter, r *http.Request) {
	mode, ok := shell.ParseMode(chi.URLParam(r, "mode"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if a.shell.SwitchMode(mode) {
		a.logger.InfoContext(r.Context(), "モードを切り替えました", "mode", string(mode))
	}

	snap := a.shell.Snapshot()
	view := presenter.Render(snap.Mode, snap.State, a.now())

	a.formMu.Lock()
	form := a.form
	a.formMu.Unlock()

	data := pageData{
		Mode:         string(snap.Mode),
		View:         view,
		Refresh:      view.Busy(),
		Form:         form,
		Shapes:       shapeOptions(form.Shape),
		CountOptions: countOptions,
		Presets:      a.presets,
	}
	if snap.Source != nil {
		data.Source = snap.Source.DataURI()
	}
	for _, ref := range snap.References {
		data.References = append(data.References, ref.DataURI())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.tmpl.ExecuteTemplate(w, "page.html", data); err != nil {
		a.logger.ErrorContext(r.Context(), "画面の描画に失敗しました", "error", err)
	}
}

// SubmitGenerate は生成フォームを受け付け、バックグラウンドで生成を開始します。
func (a *App) SubmitGenerate(w http.ResponseWriter, r *http.Request) {
	defer a.redirectTo(w, r, shell.ModeGenerate)

	if err := a.parseForm(w, r); err != nil {
		a.refuse(r, shell.ModeGenerate, msgReferencesUnreadable, err)
		return
	}

	prompt := r.FormValue("prompt")
	shape, err := domain.ParseOutputShape(r.FormValue("shape"))
	if err != nil {
		a.refuse(r, shell.ModeGenerate, err.Error(), err)
		return
	}
	count := 1
	if v := r.FormValue("count"); v != "" {
		if count, err = strconv.Atoi(v); err != nil {
			a.refuse(r, shell.ModeGenerate, domain.ErrInvalidCount.Error(), err)
			return
		}
	}

	a.formMu.Lock()
	a.form.GeneratePrompt, a.form.Shape, a.form.Count = prompt, shape, count
	a.formMu.Unlock()

	if !a.addReferences(r) {
		return
	}

	if strings.TrimSpace(prompt) == "" {
		a.refuse(r, shell.ModeGenerate, msgEmptyPrompt, domain.ErrInvalidInput)
		return
	}

	refs := a.shell.Snapshot().References
	req := domain.GenerationRequest{Prompt: prompt, Shape: shape, Count: count, References: refs}.Effective()
	a.start(r, shell.ModeGenerate, func(ctx context.Context) (domain.ResultSet, error) {
		return a.gen.Generate(ctx, req)
	})
}

// RemoveReference は保持している参照画像を 1 枚取り除きます。index は 1 始まりです。
func (a *App) RemoveReference(w http.ResponseWriter, r *http.Request) {
	defer a.redirectTo(w, r, shell.ModeGenerate)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return
	}
	if err := a.shell.RemoveReference(index - 1); err != nil {
		a.logger.InfoContext(r.Context(), "参照画像を削除できません", "index", index, "error", err)
	}
}

// UploadSource は編集元の画像を受け取って保持します。
func (a *App) UploadSource(w http.ResponseWriter, r *http.Request) {
	defer a.redirectTo(w, r, shell.ModeEdit)

	if err := a.parseForm(w, r); err != nil {
		a.refuse(r, shell.ModeEdit, msgSourceUnreadable, err)
		return
	}
	files := formFiles(r.MultipartForm, "image")
	if len(files) == 0 {
		a.refuse(r, shell.ModeEdit, msgEditIncomplete, domain.ErrInvalidInput)
		return
	}
	a.setSource(r, files[0])
}

// SubmitEdit は編集フォームを受け付けます。画像が添付されていれば元画像を差し替えてから編集します。
func (a *App) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	defer a.redirectTo(w, r, shell.ModeEdit)

	if err := a.parseForm(w, r); err != nil {
		a.refuse(r, shell.ModeEdit, msgSourceUnreadable, err)
		return
	}

	prompt := r.FormValue("prompt")
	a.formMu.Lock()
	a.form.EditPrompt = prompt
	a.formMu.Unlock()

	if files := formFiles(r.MultipartForm, "image"); len(files) > 0 {
		if !a.setSource(r, files[0]) {
			return
		}
	}

	snap := a.shell.Snapshot()
	if snap.Source == nil || strings.TrimSpace(prompt) == "" {
		a.refuse(r, shell.ModeEdit, msgEditIncomplete, domain.ErrInvalidInput)
		return
	}

	req := domain.EditRequest{Prompt: prompt, Source: snap.Source}
	a.start(r, shell.ModeEdit, func(ctx context.Context) (domain.ResultSet, error) {
		url, err := a.gen.Edit(ctx, req)
		if err != nil {
			return nil, err
		}
		return domain.ResultSet{url}, nil
	})
}

// Download は結果画像をデコードし、推奨ファイル名付きで返します。
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	mode, ok := shell.ParseMode(chi.URLParam(r, "mode"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	snap := a.shell.Snapshot()
	st, ok := snap.State.(shell.Succeeded)
	if !ok || snap.Mode != mode || index < 1 || index > len(st.Results) {
		http.NotFound(w, r)
		return
	}

	mediaType, data, err := imgutil.SplitDataURI(st.Results[index-1])
	if err != nil {
		a.logger.ErrorContext(r.Context(), "結果画像のデコードに失敗しました", "error", err)
		http.Error(w, domain.UserMessage(err), http.StatusInternalServerError)
		return
	}

	at := st.At
	if at.IsZero() {
		at = a.now()
	}
	name := presenter.DownloadName(mode, at, index, mediaType)
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// addReferences はアップロードされた参照画像を保持中の一覧に追加します。
func (a *App) addReferences(r *http.Request) bool {
	files := formFiles(r.MultipartForm, "references")
	if len(files) == 0 {
		return true
	}
	refs, err := a.normalizer.FromFileHeaders(r.Context(), files)
	if err != nil {
		a.refuse(r, shell.ModeGenerate, msgReferencesUnreadable, err)
		return false
	}
	if err := a.shell.AddReferences(refs...); err != nil {
		a.logger.InfoContext(r.Context(), "処理中のため参照画像を追加できません", "error", err)
		return false
	}
	return true
}

func (a *App) setSource(r *http.Request, fh *multipart.FileHeader) bool {
	p, err := a.normalizer.FromFileHeader(r.Context(), fh)
	if err != nil {
		a.refuse(r, shell.ModeEdit, msgSourceUnreadable, err)
		return false
	}
	if err := a.shell.SetSource(p); err != nil {
		a.logger.WarnContext(r.Context(), "元画像を差し替えられません", "error", err)
		return false
	}
	return true
}

// start は op を Shell で実行します。処理中の再送信は無視します。
func (a *App) start(r *http.Request, mode shell.Mode, op shell.Operation) {
	ticket, _, err := a.shell.Run(r.Context(), mode, a.observe(mode, op))
	if errors.Is(err, shell.ErrBusy) {
		a.logger.InfoContext(r.Context(), "処理中のため送信を無視しました", "mode", string(mode))
		return
	}
	a.logger.InfoContext(r.Context(), "操作を開始しました", "mode", string(mode), "ticket", ticket.String())
}

// refuse はリモート呼び出しをせずに入力エラーを表示します。
func (a *App) refuse(r *http.Request, mode shell.Mode, message string, cause error) {
	a.logger.InfoContext(r.Context(), "入力を受け付けませんでした", "mode", string(mode), "reason", message, "error", cause)
	if err := a.shell.Refuse(mode, message); err != nil {
		a.logger.InfoContext(r.Context(), "処理中のため入力エラーを表示しません", "mode", string(mode))
	}
}

func (a *App) redirectTo(w http.ResponseWriter, r *http.Request, mode shell.Mode) {
	http.Redirect(w, r, "/"+string(mode), http.StatusSeeOther)
}

// parseForm は multipart とそれ以外のフォームの両方を受け付けます。
func (a *App) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBodyBytes())
	err := r.ParseMultipartForm(a.maxUpload)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func formFiles(form *multipart.Form, field string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	return form.File[field]
}

func shapeOptions(selected domain.OutputShape) []shapeOption {
	opts := make([]shapeOption, 0, len(domain.OutputShapes))
	for _, s := range domain.OutputShapes {
		opts = append(opts, shapeOption{
			Value:    s.Name(),
			Label:    fmt.Sprintf("%s (%s)", titleCase(s.Name()), string(s)),
			Selected: s == selected,
		})
	}
	return opts
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}
