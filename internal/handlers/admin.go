// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the client portal.
// Handlers are grouped by concern (admin, public, auth), speak JSON, and
// receive their dependencies through the handler struct.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"clientportal/internal/imaging"
	"clientportal/internal/models"
	"clientportal/internal/portal"
	"clientportal/internal/storage"
)

// maxLogoSize is the largest logo upload accepted (2 MB).
const maxLogoSize = 2 << 20

// LogoStore uploads and removes client logos. *storage.Client satisfies it.
type LogoStore interface {
	UploadLogo(ctx context.Context, clientID uuid.UUID, contentType string, body io.Reader, size int64) (string, error)
	DeleteByURL(ctx context.Context, rawURL string) error
}

// Admin groups the editor API handlers and their dependencies.
type Admin struct {
	resolver *portal.Resolver
	mutator  *portal.Mutator
	logos    LogoStore
}

// NewAdmin creates a new Admin handler group. logos may be nil if object
// storage is not configured; logo uploads then answer 503.
func NewAdmin(resolver *portal.Resolver, mutator *portal.Mutator, logos LogoStore) *Admin {
	return &Admin{resolver: resolver, mutator: mutator, logos: logos}
}

// --- Clients ---

// ClientsList returns every client, newest first.
func (a *Admin) ClientsList(w http.ResponseWriter, r *http.Request) {
	clients, err := a.resolver.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// ClientCreate registers a client from {"name", "email"}.
func (a *Admin) ClientCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := a.mutator.CreateClient(r.Context(), in.Name, in.Email)
	if err != nil {
		writeServiceError(w, r, err, c)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ClientShow returns the editor view of a client.
func (a *Admin) ClientShow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	view, err := a.resolver.ResolveAdminView(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ClientUpdate applies a partial update to a client.
func (a *Admin) ClientUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var patch models.ClientPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := a.mutator.UpdateClient(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ClientDelete removes a client with its config and blocks.
func (a *Admin) ClientDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := a.mutator.DeleteClient(r.Context(), id); err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Config ---

// ConfigUpsert writes the fields present in the body to the client's config.
func (a *Admin) ConfigUpsert(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var patch models.ConfigPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := a.mutator.UpsertClientConfig(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// LogoUpload stores a multipart "logo" image in object storage and points
// the client's config at it. Large raster logos are scaled down first. A
// previous logo in the same bucket is removed.
func (a *Admin) LogoUpload(w http.ResponseWriter, r *http.Request) {
	if a.logos == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	view, err := a.resolver.ResolveAdminView(ctx, id)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize+1024)
	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "logo too large, maximum size is 2 MB")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no logo provided")
		return
	}
	defer file.Close()
	if header.Size > maxLogoSize {
		writeError(w, http.StatusRequestEntityTooLarge, "logo too large, maximum size is 2 MB")
		return
	}

	contentType, err := sniffContentType(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read logo")
		return
	}
	if _, ok := storage.LogoExtension(contentType); !ok {
		writeError(w, http.StatusUnsupportedMediaType, "logo must be a PNG, JPEG, WebP, GIF or SVG image")
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read logo")
		return
	}
	logo, err := imaging.NormalizeLogo(raw, contentType)
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, "logo could not be decoded")
		return
	}

	url, err := a.logos.UploadLogo(ctx, id, logo.ContentType, bytes.NewReader(logo.Data), int64(len(logo.Data)))
	if err != nil {
		slog.Error("logo upload failed", "client", id, "error", err)
		writeError(w, http.StatusBadGateway, "failed to upload logo")
		return
	}

	cfg, err := a.mutator.UpsertClientConfig(ctx, id, models.ConfigPatch{LogoURL: &url})
	if err != nil {
		if derr := a.logos.DeleteByURL(ctx, url); derr != nil {
			slog.Warn("orphaned logo cleanup failed", "url", url, "error", derr)
		}
		writeServiceError(w, r, err, nil)
		return
	}

	if old := view.Config.LogoURL; old != "" && old != url {
		if err := a.logos.DeleteByURL(ctx, old); err != nil {
			slog.Warn("old logo delete failed", "url", old, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, cfg)
}

// --- Blocks ---

// BlocksList returns every block of a client, drafts included.
func (a *Admin) BlocksList(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	blocks, err := a.resolver.ResolveBlocksByClientID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

// blockInput is the create body. Order is optional; without it the block
// is appended after the client's existing blocks.
type blockInput struct {
	Type        models.BlockType   `json:"type"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Order       *int               `json:"order"`
	IsPublished bool               `json:"is_published"`
	Config      models.BlockConfig `json:"config"`
}

// BlockCreate adds a block to a client.
func (a *Admin) BlockCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in blockInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	nb := models.NewBlock{
		ClientID:    id,
		Type:        in.Type,
		Title:       in.Title,
		Content:     in.Content,
		IsPublished: in.IsPublished,
		Config:      in.Config,
	}
	var (
		b   *models.Block
		err error
	)
	if in.Order != nil {
		nb.Order = *in.Order
		b, err = a.mutator.CreateBlock(r.Context(), nb)
	} else {
		b, err = a.mutator.AppendBlock(r.Context(), nb)
	}
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// BlocksReorder sets the display order of a client's blocks from
// {"ids": [...]}.
func (a *Admin) BlocksReorder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.IDs == nil {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}

	if err := a.mutator.ReorderBlocks(r.Context(), id, in.IDs); err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BlockUpdate applies a partial update to a block.
func (a *Admin) BlockUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var patch models.BlockPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := a.mutator.UpdateBlock(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// BlockPublish makes a block visible on the portal.
func (a *Admin) BlockPublish(w http.ResponseWriter, r *http.Request) {
	a.setPublished(w, r, true)
}

// BlockUnpublish turns a block back into a draft.
func (a *Admin) BlockUnpublish(w http.ResponseWriter, r *http.Request) {
	a.setPublished(w, r, false)
}

func (a *Admin) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	b, err := a.mutator.SetBlockPublished(r.Context(), id, published)
	if err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// BlockDelete removes a block.
func (a *Admin) BlockDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := a.mutator.DeleteBlock(r.Context(), id); err != nil {
		writeServiceError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sniffContentType detects a file's type from its first 512 bytes and
// rewinds it. SVGs sniff as XML or text, so the extension decides.
func sniffContentType(file io.ReadSeeker, filename string) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	contentType := http.DetectContentType(buf[:n])
	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return contentType, nil
}
