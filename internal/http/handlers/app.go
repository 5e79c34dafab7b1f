package handlers

import (
	"encoding/json"
	"net/http"

	"headlinewall/internal/domain"
	"headlinewall/internal/genjob"
	"headlinewall/internal/infra"
	"headlinewall/internal/providers/replicate"
	"headlinewall/internal/providers/runway"
	"headlinewall/internal/relay"
	"headlinewall/internal/storage"
)

// App bundles the handlers' dependencies. Everything is injected so tests
// can point the provider clients at stub servers.
type App struct {
	Config    *infra.Config
	Logger    infra.Logger
	Replicate *replicate.Client
	Runway    *runway.Client
	Relay     *relay.Fetcher
	Headlines domain.HeadlineRepository
	Store     *storage.FileStore
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"message": message})
}

// relayProviderError passes the provider's own HTTP status and body through
// to the caller unchanged, preserving the raw error for diagnostics.
func (a *App) relayProviderError(w http.ResponseWriter, pe *genjob.ProviderError) {
	a.Logger.Warn().
		Str("provider", pe.Provider).
		Int("status", pe.StatusCode).
		Msg("provider call rejected")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(pe.StatusCode)
	_, _ = w.Write(pe.Body)
}
