package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"headlinewall/internal/domain"
	"headlinewall/internal/infra"
)

func newHeadlinesApp(headlines domain.HeadlineRepository) *App {
	return &App{
		Config:    testConfig(),
		Logger:    infra.Logger(zerolog.Nop()),
		Headlines: headlines,
	}
}

func TestHeadlineCreate(t *testing.T) {
	headlines := newMemHeadlines()
	app := newHeadlinesApp(headlines)

	rec := postJSON(t, app.HeadlineCreate, map[string]string{
		"headline": "  City rooftops become public farms  ",
		"teamName": "the dreamers",
		"imageUrl": "https://replicate.delivery/out/farm.png",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp headlineResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("missing generated id")
	}
	if resp.Headline != "City rooftops become public farms" {
		t.Fatalf("headline = %q, want trimmed", resp.Headline)
	}
	if resp.TeamName != "The Dreamers" {
		t.Fatalf("teamName = %q, want title-cased", resp.TeamName)
	}
	if resp.Timestamp.IsZero() {
		t.Fatal("missing timestamp")
	}
	stored, err := headlines.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if stored.ImageURL != "https://replicate.delivery/out/farm.png" {
		t.Fatalf("imageUrl = %q", stored.ImageURL)
	}
}

func TestHeadlineCreateValidation(t *testing.T) {
	app := newHeadlinesApp(newMemHeadlines())

	rec := postJSON(t, app.HeadlineCreate, map[string]string{"teamName": "x", "imageUrl": "http://x/i.png"})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Missing headline") {
		t.Fatalf("code = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, app.HeadlineCreate, map[string]string{"headline": "h"})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Missing image") {
		t.Fatalf("code = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHeadlineListNewestFirst(t *testing.T) {
	headlines := newMemHeadlines()
	base := time.Now().UTC()
	for i, title := range []string{"first", "second", "third"} {
		_ = headlines.Create(context.Background(), &domain.Headline{
			ID:        title,
			Headline:  title,
			ImageURL:  "http://x/" + title + ".png",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	app := newHeadlinesApp(headlines)

	req := httptest.NewRequest(http.MethodGet, "/api/headlines?limit=2", nil)
	rec := httptest.NewRecorder()
	app.HeadlineList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp struct {
		Items []headlineResponse `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items = %d, want the limit applied", len(resp.Items))
	}
	if resp.Items[0].Headline != "third" || resp.Items[1].Headline != "second" {
		t.Fatalf("order = [%s, %s], want newest first", resp.Items[0].Headline, resp.Items[1].Headline)
	}
}

func TestHeadlineListAfterCursor(t *testing.T) {
	headlines := newMemHeadlines()
	base := time.Now().UTC()
	for i, title := range []string{"first", "second", "third"} {
		_ = headlines.Create(context.Background(), &domain.Headline{
			ID:        title,
			Headline:  title,
			ImageURL:  "http://x/" + title + ".png",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	app := newHeadlinesApp(headlines)

	cursor := base.Add(time.Minute).Format(time.RFC3339)
	req := httptest.NewRequest(http.MethodGet, "/api/headlines?after="+url.QueryEscape(cursor), nil)
	rec := httptest.NewRecorder()
	app.HeadlineList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp struct {
		Items []headlineResponse `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Headline != "first" {
		t.Fatalf("items = %+v, want only records older than the cursor", resp.Items)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/headlines?after=not-a-time", nil)
	rec = httptest.NewRecorder()
	app.HeadlineList(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400 for a malformed cursor", rec.Code)
	}
}

func TestHeadlineAnimationUpdate(t *testing.T) {
	headlines := newMemHeadlines()
	_ = headlines.Create(context.Background(), &domain.Headline{
		ID: "abc", Headline: "h", IsAnimating: true, CreatedAt: time.Now(),
	})
	app := newHeadlinesApp(headlines)

	router := chi.NewRouter()
	router.Patch("/api/headlines/{id}", app.HeadlineAnimationUpdate)

	payload, _ := json.Marshal(map[string]any{
		"animationUrl": "http://localhost:8080/static/animations/abc.mp4",
		"isAnimating":  false,
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/headlines/abc", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	stored, _ := headlines.GetByID(context.Background(), "abc")
	if stored.AnimationURL == "" || stored.IsAnimating {
		t.Fatalf("record = %+v, want animation recorded and animating cleared", stored)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/headlines/missing", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404 for unknown id", rec.Code)
	}
}

func TestHeadlineExportArchivesInlineImages(t *testing.T) {
	pixel := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	headlines := newMemHeadlines()
	_ = headlines.Create(context.Background(), &domain.Headline{
		ID:        "inline-1",
		Headline:  "h1",
		ImageData: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pixel),
		CreatedAt: time.Now(),
	})
	// URL-only records carry no payload to export.
	_ = headlines.Create(context.Background(), &domain.Headline{
		ID: "url-only", Headline: "h2", ImageURL: "http://x/i.png", CreatedAt: time.Now(),
	})
	app := newHeadlinesApp(headlines)

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/export", nil)
	rec := httptest.NewRecorder()
	app.HeadlineExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}
	reader, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 1 {
		t.Fatalf("archive entries = %d, want only the inline image", len(reader.File))
	}
	if reader.File[0].Name != "inline-1.png" {
		t.Fatalf("entry name = %q", reader.File[0].Name)
	}
	rc, err := reader.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), pixel) {
		t.Fatal("archived bytes differ from the stored payload")
	}
}
