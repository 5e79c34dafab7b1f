package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"headlinewall/internal/domain"
	"headlinewall/internal/middleware"
	"headlinewall/internal/providers/prompt"
	zippkg "headlinewall/pkg/zip"
)

type headlineCreateRequest struct {
	Headline  string `json:"headline"`
	TeamName  string `json:"teamName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	ImageData string `json:"imageData,omitempty"`
}

type headlineResponse struct {
	ID           string    `json:"id"`
	Headline     string    `json:"headline"`
	TeamName     string    `json:"teamName,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	ImageData    string    `json:"imageData,omitempty"`
	AnimationURL string    `json:"animationUrl,omitempty"`
	IsAnimating  bool      `json:"isAnimating"`
	Country      string    `json:"country,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// HeadlineCreate persists a gallery record after the submission UI has a
// generated image in hand.
func (a *App) HeadlineCreate(w http.ResponseWriter, r *http.Request) {
	var req headlineCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Headline) == "" {
		a.error(w, http.StatusBadRequest, "Missing headline")
		return
	}
	if req.ImageURL == "" && req.ImageData == "" {
		a.error(w, http.StatusBadRequest, "Missing image for headline")
		return
	}

	record := &domain.Headline{
		ID:        uuid.NewString(),
		Headline:  strings.TrimSpace(req.Headline),
		TeamName:  prompt.Caption(req.TeamName),
		ImageURL:  req.ImageURL,
		ImageData: req.ImageData,
		Country:   middleware.CountryFromContext(r.Context()),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Headlines.Create(r.Context(), record); err != nil {
		a.Logger.Error().Err(err).Msg("create headline failed")
		a.error(w, http.StatusInternalServerError, "Failed to save headline")
		return
	}
	a.json(w, http.StatusCreated, toHeadlineResponse(record))
}

// HeadlineList returns the newest records first. The wall display polls this
// endpoint instead of holding a realtime subscription; `after` pages past the
// records it already rendered.
func (a *App) HeadlineList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := domain.ListQuery{Limit: limit}
	if after := r.URL.Query().Get("after"); after != "" {
		cursor, err := time.Parse(time.RFC3339, after)
		if err != nil {
			a.error(w, http.StatusBadRequest, "Invalid after cursor")
			return
		}
		query.Before = cursor
	}
	items, err := a.Headlines.ListRecent(r.Context(), query)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list headlines failed")
		a.error(w, http.StatusInternalServerError, "Failed to load headlines")
		return
	}
	out := make([]headlineResponse, 0, len(items))
	for i := range items {
		out = append(out, toHeadlineResponse(&items[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

// HeadlineAnimationUpdate records the animation outcome for one headline.
func (a *App) HeadlineAnimationUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "Missing headline ID")
		return
	}
	var update struct {
		AnimationURL *string `json:"animationUrl"`
		IsAnimating  *bool   `json:"isAnimating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	err := a.Headlines.UpdateAnimation(r.Context(), id, domain.AnimationUpdate{
		AnimationURL: update.AnimationURL,
		IsAnimating:  update.IsAnimating,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Headline not found")
			return
		}
		a.Logger.Error().Err(err).Str("headline_id", id).Msg("update headline failed")
		a.error(w, http.StatusInternalServerError, "Failed to update headline")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HeadlineExport bundles all inline gallery images into a zip archive so
// operators can take the wall home after the exhibit closes.
func (a *App) HeadlineExport(w http.ResponseWriter, r *http.Request) {
	items, err := a.Headlines.ListRecent(r.Context(), domain.ListQuery{Limit: 200})
	if err != nil {
		a.Logger.Error().Err(err).Msg("export headlines failed")
		a.error(w, http.StatusInternalServerError, "Failed to load headlines")
		return
	}
	var assets []zippkg.Asset
	for i := range items {
		data, mime, ok := decodeInlineImage(items[i].ImageData)
		if !ok {
			continue
		}
		assets = append(assets, zippkg.Asset{
			Filename: fmt.Sprintf("%s%s", items[i].ID, extensionFor(mime)),
			MIME:     mime,
			Data:     data,
		})
	}
	archive := zippkg.Archive(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=gallery-export.zip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// decodeInlineImage unpacks the base64 data-URI format the submission UI
// stores ("data:image/webp;base64,....") or a bare base64 payload.
func decodeInlineImage(raw string) ([]byte, string, bool) {
	if raw == "" {
		return nil, "", false
	}
	mime := "image/png"
	if strings.HasPrefix(raw, "data:") {
		rest := strings.TrimPrefix(raw, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, "", false
		}
		if m := strings.TrimSpace(rest[:semi]); m != "" {
			mime = m
		}
		raw = rest[semi+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(data) == 0 {
		return nil, "", false
	}
	return data, mime, true
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func toHeadlineResponse(h *domain.Headline) headlineResponse {
	return headlineResponse{
		ID:           h.ID,
		Headline:     h.Headline,
		TeamName:     h.TeamName,
		ImageURL:     h.ImageURL,
		ImageData:    h.ImageData,
		AnimationURL: h.AnimationURL,
		IsAnimating:  h.IsAnimating,
		Country:      h.Country,
		Timestamp:    h.CreatedAt,
	}
}
