package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"clientportal/internal/models"
)

func portalRequest(t *testing.T, slug string) *http.Request {
	t.Helper()
	req := jsonRequest(t, http.MethodGet, "/api/portal/"+slug, nil, "")
	return withChiURLParam(req, "slug", slug)
}

func TestPortal_ResolvesPublishedBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := env.mustClient(t, "Ana Silva")
	b := env.mustBlock(t, c.ID, "Welcome", true)
	content := "Hello **world**"
	if _, err := env.Mut.UpdateBlock(ctx, b.ID, models.BlockPatch{Content: &content}); err != nil {
		t.Fatalf("UpdateBlock: %v", err)
	}
	env.mustBlock(t, c.ID, "Draft", false)

	rec := serve(env.Public.Portal, portalRequest(t, c.Slug))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type: got %q", ct)
	}
	if strings.Contains(rec.Body.String(), "owner@example.com") {
		t.Error("public view must not expose the client email")
	}

	var got portalResponse
	decode(t, rec, &got)

	if got.Client.Slug != c.Slug || got.Client.Initial != "A" {
		t.Errorf("client: got %+v", got.Client)
	}
	want := models.EffectiveConfig{Theme: models.ThemeDark, Scale: 100, LogoURL: "", PrimaryColor: "#6366f1"}
	if got.Config.EffectiveConfig != want {
		t.Errorf("config: got %+v, want %+v", got.Config.EffectiveConfig, want)
	}
	if !got.Config.IsDark || !got.Config.UsesInitials {
		t.Errorf("derived flags: got %+v", got.Config)
	}
	if len(got.Blocks) != 1 {
		t.Fatalf("blocks: got %d, want 1 (drafts hidden)", len(got.Blocks))
	}
	blk := got.Blocks[0]
	if blk.Title != "Welcome" || blk.Label != "Texto" {
		t.Errorf("block: got %+v", blk)
	}
	if !strings.Contains(blk.ContentHTML, "<strong>world</strong>") {
		t.Errorf("content_html: got %q", blk.ContentHTML)
	}
	if blk.Presentation != presentationFor(models.BlockText) {
		t.Errorf("presentation: got %+v", blk.Presentation)
	}
}

func TestPortal_UnknownSlug(t *testing.T) {
	env := newTestEnv(t)

	rec := serve(env.Public.Portal, portalRequest(t, "nobody-here"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "not found" {
		t.Errorf("error: got %q", body["error"])
	}
	if env.Views.has("nobody-here") {
		t.Error("misses must not be cached")
	}
}

func TestPortal_SlugIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	c := env.mustClient(t, "Ana Silva")
	env.mustBlock(t, c.ID, "Hello", true)

	rec := serve(env.Public.Portal, portalRequest(t, strings.ToUpper(c.Slug)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var got portalResponse
	decode(t, rec, &got)
	if got.Client.Slug != c.Slug {
		t.Errorf("slug: got %q, want %q", got.Client.Slug, c.Slug)
	}
	if !env.Views.has(c.Slug) {
		t.Error("view should be cached under the lowercase slug")
	}
}

func TestPortal_InactiveClient(t *testing.T) {
	env := newTestEnv(t)
	c := env.mustClient(t, "Sleepy")
	env.mustBlock(t, c.ID, "Visible", true)

	if _, err := env.Mut.UpdateClient(context.Background(), c.ID, models.ClientPatch{IsActive: ptr(false)}); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	rec := serve(env.Public.Portal, portalRequest(t, c.Slug))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestPortal_ServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	c := env.mustClient(t, "Cached")
	env.mustBlock(t, c.ID, "One", true)

	first := serve(env.Public.Portal, portalRequest(t, c.Slug))
	if first.Code != http.StatusOK {
		t.Fatalf("first status: %d", first.Code)
	}
	if !env.Views.has(c.Slug) {
		t.Fatal("resolved view was not cached")
	}

	// Bypass the service so nothing invalidates the cached view.
	for id := range env.Mem.Blocks {
		delete(env.Mem.Blocks, id)
	}

	second := serve(env.Public.Portal, portalRequest(t, c.Slug))
	if second.Body.String() != first.Body.String() {
		t.Error("second response should come from the cache unchanged")
	}
	if env.Views.sets != 1 {
		t.Errorf("cache sets: got %d, want 1", env.Views.sets)
	}
}

func TestPortal_MutationInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	c := env.mustClient(t, "Fresh")
	b := env.mustBlock(t, c.ID, "Old title", true)

	serve(env.Public.Portal, portalRequest(t, c.Slug))
	if !env.Views.has(c.Slug) {
		t.Fatal("view not cached")
	}

	if _, err := env.Mut.UpdateBlock(context.Background(), b.ID, models.BlockPatch{Title: ptr("New title")}); err != nil {
		t.Fatalf("UpdateBlock: %v", err)
	}
	if env.Views.has(c.Slug) {
		t.Fatal("update should drop the cached view")
	}

	rec := serve(env.Public.Portal, portalRequest(t, c.Slug))
	var got portalResponse
	decode(t, rec, &got)
	if len(got.Blocks) != 1 || got.Blocks[0].Title != "New title" {
		t.Errorf("blocks after update: %+v", got.Blocks)
	}
}

func TestPortal_WithoutCache(t *testing.T) {
	env := newTestEnv(t)
	c := env.mustClient(t, "NoCache")
	pub := NewPublic(env.Res, nil)

	rec := serve(pub.Portal, portalRequest(t, c.Slug))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var got portalResponse
	decode(t, rec, &got)
	if got.Blocks == nil || len(got.Blocks) != 0 {
		t.Errorf("blocks: want empty list, got %v", got.Blocks)
	}
}

func TestBlockTypes(t *testing.T) {
	env := newTestEnv(t)

	rec := serve(env.Public.BlockTypes, jsonRequest(t, http.MethodGet, "/api/block-types", nil, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var got []struct {
		Type         models.BlockType `json:"type"`
		Label        string           `json:"label"`
		Category     string           `json:"category"`
		Presentation Presentation     `json:"presentation"`
	}
	decode(t, rec, &got)
	if len(got) != len(models.BlockTypes) {
		t.Fatalf("entries: got %d, want %d", len(got), len(models.BlockTypes))
	}
	for _, e := range got {
		if e.Type == models.BlockCustomLink && e.Presentation.Icon != "external-link" {
			t.Errorf("custom_link icon: got %q", e.Presentation.Icon)
		}
		if e.Label == "" || e.Category == "" || e.Presentation.Gradient == "" {
			t.Errorf("incomplete entry: %+v", e)
		}
	}
}

func TestPresentationFallback(t *testing.T) {
	if got := presentationFor("unknown"); got != defaultPresentation {
		t.Errorf("presentationFor(unknown) = %+v", got)
	}
	for _, info := range models.BlockTypes {
		if _, ok := presentations[info.Type]; !ok {
			t.Errorf("block type %q has no presentation", info.Type)
		}
	}
}
