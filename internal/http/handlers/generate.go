package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"headlinewall/internal/genjob"
	"headlinewall/internal/providers/prompt"
	"headlinewall/internal/providers/replicate"
)

type generateRequest struct {
	Model struct {
		ID     string         `json:"id"`
		Config map[string]any `json:"config"`
	} `json:"model"`
	Input map[string]any `json:"input"`
	// Headline is a server-side shortcut: when set and no explicit input is
	// given, the model preset and scene prompt are built here instead of in
	// the submission UI.
	Headline string `json:"headline,omitempty"`
}

// Generate proxies an image generation request to Replicate and blocks,
// polling in-process, until the prediction settles. The success response
// mirrors the provider's own prediction object.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Model.ID == "" && req.Headline != "" {
		preset := prompt.DefaultPreset()
		req.Model.ID = preset.ID
		if len(req.Input) == 0 {
			req.Input = make(map[string]any, len(preset.Config)+1)
			for k, v := range preset.Config {
				req.Input[k] = v
			}
			req.Input["prompt"] = prompt.ForHeadline(req.Headline)
		}
	}
	if req.Model.ID == "" || len(req.Input) == 0 {
		a.error(w, http.StatusBadRequest, "Missing model configuration or input")
		return
	}

	snap, err := a.Replicate.CreatePrediction(r.Context(), replicate.PredictionRequest{
		Model: req.Model.ID,
		Input: req.Input,
	})
	if err != nil {
		var pe *genjob.ProviderError
		if errors.As(err, &pe) {
			a.relayProviderError(w, pe)
			return
		}
		a.Logger.Error().Err(err).Msg("generate: submit failed")
		a.json(w, http.StatusInternalServerError, map[string]string{
			"message": "Error generating image",
			"error":   err.Error(),
		})
		return
	}

	poller := genjob.NewPoller(a.Replicate, genjob.KindImage, genjob.Options{
		Interval:    a.Config.GeneratePollInterval,
		MaxAttempts: a.Config.PollMaxAttempts,
		Logger:      &a.Logger,
	})
	job, err := poller.Await(r.Context(), snap)
	if err != nil {
		var pe *genjob.ProviderError
		var fe *genjob.FailedError
		var te *genjob.TimeoutError
		switch {
		case errors.As(err, &pe):
			a.relayProviderError(w, pe)
		case errors.As(err, &fe):
			a.json(w, http.StatusBadRequest, map[string]string{
				"message": "Image generation failed",
				"error":   fe.Detail,
			})
		case errors.As(err, &te):
			a.error(w, http.StatusGatewayTimeout, err.Error())
		default:
			a.json(w, http.StatusBadGateway, map[string]string{
				"message": "Image generation failed",
				"error":   err.Error(),
			})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(job.Raw)
}
