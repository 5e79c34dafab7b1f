package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"headlinewall/internal/genjob"
	"headlinewall/internal/infra"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("replicate: api token is required")

// vocabulary declares the statuses the Replicate predictions API is known to
// return. Anything else normalizes to unknown and fails closed downstream.
var vocabulary = genjob.Vocabulary{
	Succeeded: []string{"succeeded"},
	Failed:    []string{"failed", "canceled"},
	Pending:   []string{"starting", "processing"},
}

// Options configures the Replicate predictions client.
type Options struct {
	APIToken string
	BaseURL  string
	// Wait asks Replicate to hold the submit call open until the prediction
	// settles, via the Prefer header. The response may then already be
	// terminal and no polling is needed.
	Wait           bool
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Replicate predictions API.
type Client struct {
	apiToken   string
	baseURL    string
	wait       bool
	httpClient *http.Client
	logger     *infra.Logger
}

// PredictionRequest captures the inputs for one model run.
type PredictionRequest struct {
	// Model is the "owner/name" identifier of the model to run.
	Model string
	Input map[string]any
}

// Prediction mirrors the provider's own prediction object. Output is kept
// raw because historical model variants return either a bare URL string or
// an array of URLs.
type Prediction struct {
	ID     string          `json:"id"`
	Model  string          `json:"model,omitempty"`
	Status string          `json:"status"`
	Input  map[string]any  `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiToken:   strings.TrimSpace(opts.APIToken),
		baseURL:    baseURL,
		wait:       opts.Wait,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiToken != ""
}

// CreatePrediction submits a model run. With Wait enabled the returned
// snapshot may already be terminal.
func (c *Client) CreatePrediction(ctx context.Context, req PredictionRequest) (genjob.Snapshot, error) {
	if !c.HasCredentials() {
		return genjob.Snapshot{}, ErrMissingToken
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return genjob.Snapshot{}, errors.New("replicate: model is required")
	}
	if len(req.Input) == 0 {
		return genjob.Snapshot{}, errors.New("replicate: input is required")
	}

	payload, err := json.Marshal(map[string]any{"input": req.Input})
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("replicate: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	if c.wait {
		httpReq.Header.Set("Prefer", "wait")
	}

	snap, err := c.do(httpReq)
	if err != nil {
		return snap, err
	}
	c.logger.Debug().
		Str("model", model).
		Str("prediction_id", snap.ID).
		Str("raw_status", snap.RawStatus).
		Bool("wait", c.wait).
		Msg("replicate: prediction created")
	return snap, nil
}

// PollStatus fetches the current state of a prediction. It satisfies
// genjob.StatusClient.
func (c *Client) PollStatus(ctx context.Context, jobID string) (genjob.Snapshot, error) {
	if !c.HasCredentials() {
		return genjob.Snapshot{}, ErrMissingToken
	}
	if strings.TrimSpace(jobID) == "" {
		return genjob.Snapshot{}, errors.New("replicate: prediction id is required")
	}
	endpoint := fmt.Sprintf("%s/predictions/%s", c.baseURL, jobID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (genjob.Snapshot, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return genjob.Snapshot{}, &genjob.ProviderError{
			Provider:   "replicate",
			StatusCode: resp.StatusCode,
			Body:       raw,
		}
	}

	var prediction Prediction
	if err := json.Unmarshal(raw, &prediction); err != nil {
		return genjob.Snapshot{}, fmt.Errorf("replicate: decode response: %w", err)
	}
	return snapshot(prediction, raw), nil
}

func snapshot(p Prediction, raw []byte) genjob.Snapshot {
	return genjob.Snapshot{
		ID:          p.ID,
		Status:      vocabulary.Normalize(p.Status),
		RawStatus:   p.Status,
		OutputURL:   FirstOutputURL(p.Output),
		ErrorDetail: p.Error,
		Raw:         raw,
	}
}

// FirstOutputURL extracts the artifact URL from a prediction output, which
// is a bare string for some models and an array of strings for others.
func FirstOutputURL(output json.RawMessage) string {
	if len(output) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(output, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var many []string
	if err := json.Unmarshal(output, &many); err == nil && len(many) > 0 {
		return strings.TrimSpace(many[0])
	}
	return ""
}

var _ genjob.StatusClient = (*Client)(nil)
