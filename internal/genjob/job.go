package genjob

import (
	"encoding/json"
	"time"
)

// Kind enumerates the generation job categories the exhibit runs.
type Kind string

const (
	KindImage     Kind = "image"
	KindAnimation Kind = "animation"
)

// Status is the normalized job lifecycle state, independent of how a
// provider spells it on the wire.
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"

	// StatusUnknown marks a raw status outside the provider's declared
	// vocabulary. It is never a resting state: the poller fails closed on it.
	StatusUnknown Status = "unknown"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Snapshot is a single observation of a provider-side job, already mapped
// into the normalized vocabulary. Raw carries the provider's verbatim
// response body so handlers can mirror it to callers.
type Snapshot struct {
	ID          string
	Status      Status
	RawStatus   string
	OutputURL   string
	ErrorDetail string
	Raw         json.RawMessage
}

// Job tracks one generation request from submission to a terminal outcome.
// It lives only for the duration of a request/poll cycle; callers persist
// derived records if they need durability.
type Job struct {
	ID          string
	Kind        Kind
	Status      Status
	CreatedAt   time.Time
	OutputURL   string
	ErrorDetail string
	Raw         json.RawMessage
}

// NewJob starts tracking a job from its initial snapshot.
func NewJob(kind Kind, snap Snapshot) *Job {
	job := &Job{
		ID:        snap.ID,
		Kind:      kind,
		Status:    StatusSubmitted,
		CreatedAt: time.Now().UTC(),
	}
	job.observe(snap)
	return job
}

// observe advances the job with a new snapshot. Transitions are monotonic:
// once a terminal state is reached the job no longer changes.
func (j *Job) observe(snap Snapshot) {
	if j.Status.Terminal() {
		return
	}
	if snap.ID != "" {
		j.ID = snap.ID
	}
	if len(snap.Raw) > 0 {
		j.Raw = snap.Raw
	}
	switch snap.Status {
	case StatusSucceeded:
		j.Status = StatusSucceeded
		j.OutputURL = snap.OutputURL
	case StatusFailed, StatusUnknown:
		j.Status = StatusFailed
		j.ErrorDetail = snap.ErrorDetail
	default:
		j.Status = StatusProcessing
	}
}

// Vocabulary declares how one provider spells its job statuses. Raw values
// outside all three sets normalize to StatusUnknown.
type Vocabulary struct {
	Succeeded []string
	Failed    []string
	Pending   []string
}

// Normalize maps a raw provider status onto the shared vocabulary.
func (v Vocabulary) Normalize(raw string) Status {
	for _, s := range v.Succeeded {
		if raw == s {
			return StatusSucceeded
		}
	}
	for _, s := range v.Failed {
		if raw == s {
			return StatusFailed
		}
	}
	for _, s := range v.Pending {
		if raw == s {
			return StatusProcessing
		}
	}
	return StatusUnknown
}

// Resolve classifies a terminal-or-not snapshot the way the poller does for
// its final observation. It is used directly by the client-driven polling
// endpoint, where the caller owns the retry loop.
//
// Succeeded snapshots must carry an output reference; a success status with
// no artifact is reported as a failure, never silently passed through.
func Resolve(snap Snapshot) (Status, error) {
	switch snap.Status {
	case StatusSucceeded:
		if snap.OutputURL == "" {
			return StatusFailed, ErrNoOutput
		}
		return StatusSucceeded, nil
	case StatusFailed:
		msg := snap.ErrorDetail
		if msg == "" {
			msg = "generation failed"
		}
		return StatusFailed, &FailedError{Detail: msg}
	case StatusUnknown:
		return StatusFailed, &UnexpectedStatusError{RawStatus: snap.RawStatus}
	default:
		return StatusProcessing, nil
	}
}

func (k Kind) String() string { return string(k) }

// ArtifactContentType guesses a default content type for the job kind when
// the delivery response does not declare one.
func (k Kind) ArtifactContentType() string {
	switch k {
	case KindAnimation:
		return "video/mp4"
	default:
		return "image/png"
	}
}
