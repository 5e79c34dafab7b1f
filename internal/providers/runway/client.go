package runway

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

// ErrMissingSecret indicates that the client was configured without credentials.
var ErrMissingSecret = errors.New("runway: api secret is required")

// vocabulary declares the statuses the Runway task API is known to return.
var vocabulary = genjob.Vocabulary{
	Succeeded: []string{"SUCCEEDED"},
	Failed:    []string{"FAILED", "CANCELLED"},
	Pending:   []string{"PENDING", "RUNNING", "THROTTLED"},
}

// Options configures the Runway image-to-video client.
type Options struct {
	APISecret      string
	BaseURL        string
	Version        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Runway image-to-video task API.
type Client struct {
	apiSecret  string
	baseURL    string
	version    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// TaskRequest captures the inputs for one animation task.
type TaskRequest struct {
	PromptImage string
	PromptText  string
}

type task struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Output  []string `json:"output,omitempty"`
	Failure string   `json:"failure,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.dev.runwayml.com/v1"
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "2024-11-06"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gen3a_turbo"
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
		apiSecret:  strings.TrimSpace(opts.APISecret),
		baseURL:    baseURL,
		version:    version,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiSecret != ""
}

// CreateImageToVideo submits an animation task. Runway resolves some tasks
// synchronously, so the returned snapshot may already be terminal.
func (c *Client) CreateImageToVideo(ctx context.Context, req TaskRequest) (genjob.Snapshot, error) {
	if !c.HasCredentials() {
		return genjob.Snapshot{}, ErrMissingSecret
	}
	if strings.TrimSpace(req.PromptImage) == "" {
		return genjob.Snapshot{}, errors.New("runway: prompt image is required")
	}
	if strings.TrimSpace(req.PromptText) == "" {
		return genjob.Snapshot{}, errors.New("runway: prompt text is required")
	}

	payload, err := json.Marshal(map[string]any{
		"promptImage": req.PromptImage,
		"promptText":  req.PromptText,
		"model":       c.model,
	})
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("runway: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image_to_video", bytes.NewReader(payload))
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("runway: build request: %w", err)
	}
	c.setHeaders(httpReq)

	snap, err := c.do(httpReq)
	if err != nil {
		return snap, err
	}
	c.logger.Debug().
		Str("model", c.model).
		Str("task_id", snap.ID).
		Str("raw_status", snap.RawStatus).
		Msg("runway: task created")
	return snap, nil
}

// PollStatus fetches the current state of a task. It satisfies
// genjob.StatusClient.
func (c *Client) PollStatus(ctx context.Context, jobID string) (genjob.Snapshot, error) {
	if !c.HasCredentials() {
		return genjob.Snapshot{}, ErrMissingSecret
	}
	if strings.TrimSpace(jobID) == "" {
		return genjob.Snapshot{}, errors.New("runway: task id is required")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/image_to_video/"+jobID, nil)
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("runway: build request: %w", err)
	}
	c.setHeaders(httpReq)
	return c.do(httpReq)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiSecret)
	req.Header.Set("X-Runway-Version", c.version)
}

func (c *Client) do(req *http.Request) (genjob.Snapshot, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("runway: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return genjob.Snapshot{}, fmt.Errorf("runway: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return genjob.Snapshot{}, &genjob.ProviderError{
			Provider:   "runway",
			StatusCode: resp.StatusCode,
			Body:       raw,
		}
	}

	var t task
	if err := json.Unmarshal(raw, &t); err != nil {
		return genjob.Snapshot{}, fmt.Errorf("runway: decode response: %w", err)
	}
	return snapshot(t, raw), nil
}

func snapshot(t task, raw []byte) genjob.Snapshot {
	var output string
	if len(t.Output) > 0 {
		output = strings.TrimSpace(t.Output[0])
	}
	detail := strings.TrimSpace(t.Failure)
	if detail == "" {
		detail = strings.TrimSpace(t.Error)
	}
	return genjob.Snapshot{
		ID:          t.ID,
		Status:      vocabulary.Normalize(t.Status),
		RawStatus:   t.Status,
		OutputURL:   output,
		ErrorDetail: detail,
		Raw:         raw,
	}
}

var _ genjob.StatusClient = (*Client)(nil)
