package genjob

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"headlinewall/internal/infra"
)

// StatusClient is the slice of a provider client the poller needs once a job
// has been submitted.
type StatusClient interface {
	PollStatus(ctx context.Context, jobID string) (Snapshot, error)
}

// Options configures a Poller.
type Options struct {
	// Interval is the fixed delay between status polls.
	Interval time.Duration
	// MaxAttempts bounds the polling loop. Exhausting it is a Failed
	// terminal state (timeout), never an infinite loop.
	MaxAttempts int
	Logger      *infra.Logger
}

// Poller drives a submitted job to a terminal state by repeatedly asking the
// provider for its status. It holds no external state: every call is an
// independent job, so callers may simply resubmit after a failure.
type Poller struct {
	client      StatusClient
	kind        Kind
	interval    time.Duration
	maxAttempts int
	logger      *infra.Logger
}

// NewPoller wires a poller over a provider status client.
func NewPoller(client StatusClient, kind Kind, opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 30
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Poller{
		client:      client,
		kind:        kind,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Await advances a job from its initial submission snapshot to a terminal
// state. Wait-capable providers may hand back a terminal snapshot at submit
// time, in which case no poll is issued at all.
//
// The returned Job always has a terminal status. The error describes why a
// job is Failed: *FailedError for a provider-reported failure, *TimeoutError
// when the attempt budget ran out, *UnexpectedStatusError for a status
// outside the vocabulary, ErrNoOutput for a success with no artifact, or a
// *ProviderError when a poll call itself was rejected.
func (p *Poller) Await(ctx context.Context, initial Snapshot) (*Job, error) {
	job := NewJob(p.kind, initial)
	p.logger.Info().
		Str("kind", p.kind.String()).
		Str("job_id", job.ID).
		Str("raw_status", initial.RawStatus).
		Msg("job submitted")

	snap := initial
	for attempt := 0; !isSettled(snap); attempt++ {
		if attempt >= p.maxAttempts {
			err := &TimeoutError{Attempts: p.maxAttempts, Interval: p.interval}
			p.fail(job, err.Error())
			return job, err
		}
		select {
		case <-time.After(p.interval):
		case <-ctx.Done():
			p.fail(job, ctx.Err().Error())
			return job, ctx.Err()
		}

		next, err := p.client.PollStatus(ctx, job.ID)
		if err != nil {
			p.fail(job, err.Error())
			return job, err
		}
		snap = next
		job.observe(snap)
		p.logger.Debug().
			Str("kind", p.kind.String()).
			Str("job_id", job.ID).
			Str("raw_status", snap.RawStatus).
			Int("attempt", attempt+1).
			Msg("job polled")
	}

	status, err := Resolve(snap)
	job.Status = status
	if err != nil {
		job.OutputURL = ""
		job.ErrorDetail = err.Error()
	}
	p.logger.Info().
		Str("kind", p.kind.String()).
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Str("output_url", job.OutputURL).
		Msg("job reached terminal state")
	return job, err
}

func (p *Poller) fail(job *Job, detail string) {
	job.Status = StatusFailed
	job.ErrorDetail = detail
	p.logger.Warn().
		Str("kind", p.kind.String()).
		Str("job_id", job.ID).
		Str("detail", detail).
		Msg("job failed")
}

// isSettled reports whether polling should stop for this snapshot. Unknown
// statuses settle immediately: Resolve turns them into a failure rather than
// letting the loop spin on a value it cannot interpret.
func isSettled(snap Snapshot) bool {
	return snap.Status.Terminal() || snap.Status == StatusUnknown
}
