package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"headlinewall/internal/domain"
	"headlinewall/internal/genjob"
	"headlinewall/internal/providers/runway"
)

type animateRequest struct {
	PromptImage string `json:"promptImage"`
	PromptText  string `json:"promptText"`
	HeadlineID  string `json:"headlineId"`
}

type animationResult struct {
	Status       string `json:"status"`
	ID           string `json:"id,omitempty"`
	VideoData    string `json:"videoData,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
	AnimationURL string `json:"animationUrl,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Animate submits an image-to-video task to Runway. When the provider
// resolves the task synchronously the full result is returned right away;
// otherwise the caller gets the task id and drives the polling loop against
// the check endpoint.
func (a *App) Animate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req animateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PromptImage == "" || req.PromptText == "" || req.HeadlineID == "" {
		a.error(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	snap, err := a.Runway.CreateImageToVideo(r.Context(), runway.TaskRequest{
		PromptImage: req.PromptImage,
		PromptText:  req.PromptText,
	})
	if err != nil {
		var pe *genjob.ProviderError
		if errors.As(err, &pe) {
			a.relayProviderError(w, pe)
			return
		}
		a.Logger.Error().Err(err).Msg("animate: submit failed")
		a.json(w, http.StatusInternalServerError, map[string]string{
			"message": "Error processing animation request",
			"error":   err.Error(),
		})
		return
	}

	status, resolveErr := genjob.Resolve(snap)
	if status == genjob.StatusProcessing {
		a.markAnimating(r, req.HeadlineID, true)
		a.json(w, http.StatusAccepted, animationResult{Status: "processing", ID: snap.ID})
		return
	}

	a.json(w, http.StatusOK, a.finishAnimation(r, snap, resolveErr, req.HeadlineID))
}

// finishAnimation turns a terminal snapshot into the three-outcome protocol
// the UI understands, downloading and optionally re-hosting the artifact on
// success.
func (a *App) finishAnimation(r *http.Request, snap genjob.Snapshot, resolveErr error, headlineID string) animationResult {
	if resolveErr != nil {
		a.Logger.Warn().
			Str("task_id", snap.ID).
			Str("raw_status", snap.RawStatus).
			Err(resolveErr).
			Msg("animation failed")
		a.markAnimating(r, headlineID, false)
		return animationResult{Status: "failed", Message: resolveErr.Error()}
	}

	artifact, err := a.Relay.Fetch(r.Context(), snap.OutputURL)
	if err != nil {
		// The generation itself succeeded; only delivery failed. Reported as
		// its own failure mode so operators can tell the two apart.
		a.Logger.Error().Err(err).Str("task_id", snap.ID).Msg("animation artifact fetch failed")
		a.markAnimating(r, headlineID, false)
		return animationResult{Status: "failed", Message: "Animation succeeded but the result could not be retrieved"}
	}

	contentType := artifact.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = genjob.KindAnimation.ArtifactContentType()
	}
	result := animationResult{
		Status:      "success",
		VideoData:   base64.StdEncoding.EncodeToString(artifact.Data),
		ContentType: contentType,
	}
	if headlineID != "" {
		if url := a.rehostAnimation(r, headlineID, artifact.Data); url != "" {
			result.AnimationURL = url
		}
	}
	return result
}

// rehostAnimation stores the artifact under a stable URL and records it on
// the headline. Best effort: the inline payload in the response is the
// primary delivery path.
func (a *App) rehostAnimation(r *http.Request, headlineID string, data []byte) string {
	if a.Store == nil || a.Headlines == nil {
		return ""
	}
	key, err := a.Store.Write(r.Context(), "animations/"+headlineID+".mp4", data)
	if err != nil {
		a.Logger.Error().Err(err).Str("headline_id", headlineID).Msg("store animation failed")
		return ""
	}
	url := a.Config.StorageBaseURL + "/" + key
	animating := false
	err = a.Headlines.UpdateAnimation(r.Context(), headlineID, domain.AnimationUpdate{
		AnimationURL: &url,
		IsAnimating:  &animating,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("headline_id", headlineID).Msg("record animation url failed")
	}
	return url
}

func (a *App) markAnimating(r *http.Request, headlineID string, animating bool) {
	if a.Headlines == nil || headlineID == "" {
		return
	}
	err := a.Headlines.UpdateAnimation(r.Context(), headlineID, domain.AnimationUpdate{IsAnimating: &animating})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.Logger.Warn().Err(err).Str("headline_id", headlineID).Msg("mark animating failed")
	}
}
