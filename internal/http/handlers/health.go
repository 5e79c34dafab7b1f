package handlers

import (
	"net/http"
)

// Health reports liveness plus whether the provider clients hold credentials,
// so a venue operator can spot a misconfigured kiosk before visitors do.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"replicate": a.Replicate != nil && a.Replicate.HasCredentials(),
		"runway":    a.Runway != nil && a.Runway.HasCredentials(),
	})
}
