package runway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"headlinewall/internal/genjob"
)

type responseStub struct {
	status int
	body   []byte
}

type captureTransport struct {
	responses map[string]responseStub
	lastReq   *http.Request
	lastBody  []byte
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lastReq = req
	if req.Body != nil {
		t.lastBody, _ = io.ReadAll(req.Body)
	}
	stub, ok := t.responses[req.URL.Path]
	if !ok {
		stub = responseStub{status: http.StatusNotFound, body: []byte(`{"error":"not found"}`)}
	}
	return &http.Response{
		StatusCode: stub.status,
		Body:       io.NopCloser(bytes.NewReader(stub.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func (t *captureTransport) setJSON(path string, status int, v any) {
	body, _ := json.Marshal(v)
	t.responses[path] = responseStub{status: status, body: body}
}

func newTestClient(t *testing.T, transport *captureTransport) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APISecret:  "test-secret",
		BaseURL:    "https://runway.test/v1",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestCreateImageToVideoPayloadAndHeaders(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSON("/v1/image_to_video", http.StatusOK, map[string]any{
		"id":     "task-1",
		"status": "PENDING",
	})
	client := newTestClient(t, transport)

	snap, err := client.CreateImageToVideo(context.Background(), TaskRequest{
		PromptImage: "http://x/img.png",
		PromptText:  "Mars colony turns 10",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if snap.ID != "task-1" || snap.Status != genjob.StatusProcessing {
		t.Fatalf("snapshot = %+v", snap)
	}
	if got := transport.lastReq.Header.Get("Authorization"); got != "Bearer test-secret" {
		t.Fatalf("Authorization = %q", got)
	}
	if got := transport.lastReq.Header.Get("X-Runway-Version"); got != "2024-11-06" {
		t.Fatalf("X-Runway-Version = %q", got)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["promptImage"] != "http://x/img.png" {
		t.Fatalf("promptImage = %v", payload["promptImage"])
	}
	if payload["promptText"] != "Mars colony turns 10" {
		t.Fatalf("promptText = %v", payload["promptText"])
	}
	if payload["model"] != "gen3a_turbo" {
		t.Fatalf("model = %v", payload["model"])
	}
}

func TestCreateImageToVideoSynchronousCompletion(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSON("/v1/image_to_video", http.StatusOK, map[string]any{
		"id":     "task-2",
		"status": "SUCCEEDED",
		"output": []string{"https://cdn.runway.test/video.mp4"},
	})
	client := newTestClient(t, transport)

	snap, err := client.CreateImageToVideo(context.Background(), TaskRequest{
		PromptImage: "http://x/img.png",
		PromptText:  "headline",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if snap.Status != genjob.StatusSucceeded {
		t.Fatalf("status = %s, want succeeded", snap.Status)
	}
	if snap.OutputURL != "https://cdn.runway.test/video.mp4" {
		t.Fatalf("output url = %q", snap.OutputURL)
	}
}

func TestPollStatusMapsVocabulary(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)

	cases := []struct {
		raw  string
		want genjob.Status
	}{
		{"PENDING", genjob.StatusProcessing},
		{"RUNNING", genjob.StatusProcessing},
		{"THROTTLED", genjob.StatusProcessing},
		{"SUCCEEDED", genjob.StatusSucceeded},
		{"FAILED", genjob.StatusFailed},
		{"CANCELLED", genjob.StatusFailed},
		{"QUEUED", genjob.StatusUnknown},
	}
	for _, tc := range cases {
		transport.setJSON("/v1/image_to_video/task-3", http.StatusOK, map[string]any{
			"id":     "task-3",
			"status": tc.raw,
			"output": []string{"https://cdn.runway.test/v.mp4"},
		})
		snap, err := client.PollStatus(context.Background(), "task-3")
		if err != nil {
			t.Fatalf("poll %s: %v", tc.raw, err)
		}
		if snap.Status != tc.want {
			t.Fatalf("status for %q = %s, want %s", tc.raw, snap.Status, tc.want)
		}
	}
}

func TestPollStatusCarriesFailureDetail(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSON("/v1/image_to_video/task-4", http.StatusOK, map[string]any{
		"id":     "task-4",
		"status": "FAILED",
		"error":  "model overloaded",
	})
	client := newTestClient(t, transport)

	snap, err := client.PollStatus(context.Background(), "task-4")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if snap.ErrorDetail != "model overloaded" {
		t.Fatalf("error detail = %q", snap.ErrorDetail)
	}

	// The dedicated failure field wins over the generic one.
	transport.setJSON("/v1/image_to_video/task-4", http.StatusOK, map[string]any{
		"id":      "task-4",
		"status":  "FAILED",
		"failure": "input image rejected",
		"error":   "ignored",
	})
	snap, err = client.PollStatus(context.Background(), "task-4")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if snap.ErrorDetail != "input image rejected" {
		t.Fatalf("error detail = %q", snap.ErrorDetail)
	}
}

func TestProviderErrorPreservedOnSubmit(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSON("/v1/image_to_video", http.StatusTooManyRequests, map[string]any{
		"error": "quota exhausted",
	})
	client := newTestClient(t, transport)

	_, err := client.CreateImageToVideo(context.Background(), TaskRequest{
		PromptImage: "http://x/img.png",
		PromptText:  "headline",
	})
	var pe *genjob.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *genjob.ProviderError", err)
	}
	if pe.Provider != "runway" || pe.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("provider error = %+v", pe)
	}
}

func TestCreateImageToVideoValidatesInput(t *testing.T) {
	client := newTestClient(t, &captureTransport{responses: map[string]responseStub{}})
	if _, err := client.CreateImageToVideo(context.Background(), TaskRequest{PromptText: "x"}); err == nil {
		t.Fatal("expected error for missing prompt image")
	}
	if _, err := client.CreateImageToVideo(context.Background(), TaskRequest{PromptImage: "http://x"}); err == nil {
		t.Fatal("expected error for missing prompt text")
	}
}
