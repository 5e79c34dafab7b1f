package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"headlinewall/internal/genjob"
)

type checkAnimationRequest struct {
	ID         string `json:"id"`
	HeadlineID string `json:"headlineId,omitempty"`
}

// CheckAnimation performs exactly one status poll for a previously submitted
// animation task. The UI calls it every couple of seconds and owns the retry
// loop, which also gives it natural cancellation: it can just stop calling.
func (a *App) CheckAnimation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req checkAnimationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ID == "" {
		a.error(w, http.StatusBadRequest, "Missing animation ID")
		return
	}

	snap, err := a.Runway.PollStatus(r.Context(), req.ID)
	if err != nil {
		var pe *genjob.ProviderError
		if errors.As(err, &pe) {
			a.relayProviderError(w, pe)
			return
		}
		a.Logger.Error().Err(err).Msg("check-animation: poll failed")
		a.json(w, http.StatusInternalServerError, map[string]string{
			"message": "Error checking animation status",
			"error":   err.Error(),
		})
		return
	}

	status, resolveErr := genjob.Resolve(snap)
	if status == genjob.StatusProcessing {
		a.json(w, http.StatusOK, animationResult{Status: "processing"})
		return
	}
	a.json(w, http.StatusOK, a.finishAnimation(r, snap, resolveErr, req.HeadlineID))
}
