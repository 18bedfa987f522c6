package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/shell"
)

// GenerateRequest は POST /api/generate の本文です。画像はすべて data URI です。
type GenerateRequest struct {
	Prompt     string   `json:"prompt"`
	Shape      string   `json:"shape,omitempty"`
	Count      *int     `json:"count,omitempty"`
	References []string `json:"references,omitempty"`
}

// GenerateResponse は生成結果です。
type GenerateResponse struct {
	Images []string `json:"images"`
}

// EditRequest は POST /api/edit の本文です。
type EditRequest struct {
	Prompt string `json:"prompt"`
	Image  string `json:"image"`
}

// EditResponse は編集結果です。
type EditResponse struct {
	Image string `json:"image"`
}

// APIGenerate は同期的に画像を生成します。画面の状態には影響しません。
func (a *App) APIGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := a.decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	shape, err := domain.ParseOutputShape(body.Shape)
	if err != nil {
		writeError(w, err)
		return
	}
	count := 1
	if body.Count != nil {
		count = *body.Count
	}
	refs, err := a.normalizer.FromDataURIs(r.Context(), body.References)
	if err != nil {
		writeError(w, err)
		return
	}

	req := domain.GenerationRequest{Prompt: body.Prompt, Shape: shape, Count: count, References: refs}.Effective()
	results, err := a.observe(shell.ModeGenerate, func(ctx context.Context) (domain.ResultSet, error) {
		return a.gen.Generate(ctx, req)
	})(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Images: results})
}

// APIEdit は同期的に画像を編集します。
func (a *App) APIEdit(w http.ResponseWriter, r *http.Request) {
	var body EditRequest
	if err := a.decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Image == "" {
		writeError(w, fmt.Errorf("%w: image is required", domain.ErrInvalidInput))
		return
	}

	sources, err := a.normalizer.FromDataURIs(r.Context(), []string{body.Image})
	if err != nil {
		writeError(w, err)
		return
	}

	req := domain.EditRequest{Prompt: body.Prompt, Source: &sources[0]}
	results, err := a.observe(shell.ModeEdit, func(ctx context.Context) (domain.ResultSet, error) {
		url, err := a.gen.Edit(ctx, req)
		if err != nil {
			return nil, err
		}
		return domain.ResultSet{url}, nil
	})(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EditResponse{Image: results[0]})
}

func (a *App) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, a.maxBodyBytes()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
