package blitz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultPollInterval is the wait between two status requests.
const DefaultPollInterval = 2 * time.Second

// Job statuses reported by the service.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// State is the position of a Runner in its lifecycle.
type State int

const (
	StateCreated State = iota
	StateValidating
	StateAuthenticating
	StateSubmitting
	StatePolling
	StateAborting
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	"created", "validating", "authenticating", "submitting",
	"polling", "aborting", "completed", "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerConfig)

type runnerConfig struct {
	interval time.Duration
	logger   *zap.Logger
	onQueued func(jobID string)
}

// WithPollInterval overrides the wait between status requests.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(c *runnerConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger for state transitions and poll outcomes.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(c *runnerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnQueued registers fn to be called with the job id once the service
// has accepted the job, before the first poll.
func WithOnQueued(fn func(jobID string)) RunnerOption {
	return func(c *runnerConfig) {
		c.onQueued = fn
	}
}

// Runner drives one job through validate, authenticate, submit and poll.
// Execute and JobStatus block the calling goroutine; Abort may be called
// from another goroutine while they do. Run several Runners to run several
// jobs at once.
type Runner[R any] struct {
	client   *Client
	job      Job[R]
	interval time.Duration
	logger   *zap.Logger
	onQueued func(jobID string)

	mu    sync.Mutex
	jobID string
	state State
}

// NewRunner creates a Runner for job that talks through client.
func NewRunner[R any](client *Client, job Job[R], opts ...RunnerOption) *Runner[R] {
	cfg := runnerConfig{
		interval: DefaultPollInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runner[R]{
		client:   client,
		job:      job,
		interval: cfg.interval,
		logger:   cfg.logger,
		onQueued: cfg.onQueued,
	}
}

// Client returns the transport the runner uses.
func (r *Runner[R]) Client() *Client {
	return r.client
}

// JobID returns the id of the submitted job, or "" before submission.
func (r *Runner[R]) JobID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobID
}

// State returns the current lifecycle state.
func (r *Runner[R]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Attach points the runner at a job submitted elsewhere so that JobStatus
// and Abort can act on it.
func (r *Runner[R]) Attach(jobID string) {
	r.mu.Lock()
	r.jobID = jobID
	r.mu.Unlock()
}

func (r *Runner[R]) setState(s State) {
	r.mu.Lock()
	r.state = s
	id := r.jobID
	r.mu.Unlock()
	r.logger.Debug("runner state", zap.Stringer("state", s), zap.String("job_id", id))
}

func (r *Runner[R]) fail(err error) error {
	r.setState(StateFailed)
	r.logger.Debug("runner failed", zap.Error(err))
	return err
}

// Execute validates options, authenticates if needed, queues the job and
// then polls it until completion, calling callback for every result.
//
// options may be a struct or map that encodes to a JSON object, or the
// encoded JSON itself.
func (r *Runner[R]) Execute(ctx context.Context, options interface{}, callback func(R)) error {
	r.setState(StateValidating)
	payload, err := encodeOptions(options)
	if err != nil {
		return r.fail(newClientError("Invalid options", err))
	}
	if !gjson.ValidBytes(payload) {
		return r.fail(newClientError("Invalid options", nil))
	}
	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return r.fail(newClientError("Invalid options", nil))
	}
	if failed := uniqueFields(r.job.Validate(doc)); len(failed) > 0 {
		return r.fail(&ValidationError{Msg: "Validation error.", Fields: failed})
	}

	if err := r.checkAuthentication(ctx); err != nil {
		return r.fail(err)
	}

	r.setState(StateSubmitting)
	queued, err := r.client.Execute(ctx, payload)
	if err != nil {
		return r.fail(err)
	}
	if !queued.Exists() {
		return r.fail(newClientError("No response", nil))
	}
	if err := ServerErrorFrom(queued); err != nil {
		return r.fail(err)
	}
	jobID := queued.Get("job_id").String()
	if jobID == "" {
		return r.fail(newClientError("Wrong response format", nil))
	}
	r.Attach(jobID)
	r.logger.Info("job queued", zap.String("job_id", jobID))
	if r.onQueued != nil {
		r.onQueued(jobID)
	}

	return r.JobStatus(ctx, callback)
}

// JobStatus polls the attached job every poll interval until it completes.
// Queued responses and running responses without a result are skipped;
// every other response is shaped and passed to callback. The first error
// stops polling.
func (r *Runner[R]) JobStatus(ctx context.Context, callback func(R)) error {
	jobID := r.JobID()
	if jobID == "" {
		return r.fail(newClientError("No job", nil))
	}
	if err := r.checkAuthentication(ctx); err != nil {
		return r.fail(err)
	}

	r.setState(StatePolling)
	for {
		if err := sleepContext(ctx, r.interval); err != nil {
			return r.fail(err)
		}

		job, err := r.client.JobStatus(ctx, jobID)
		if err != nil {
			return r.fail(err)
		}
		if !job.Exists() {
			return r.fail(newClientError("No response", nil))
		}
		status := job.Get("status")
		if !status.Exists() {
			return r.fail(newClientError("Wrong response format", nil))
		}
		if err := ServerErrorFrom(job); err != nil {
			return r.fail(err)
		}
		result := job.Get("result")
		if err := ServerErrorFrom(result); err != nil {
			return r.fail(err)
		}

		s := status.String()
		if s == StatusQueued || (s == StatusRunning && !result.Exists()) {
			r.logger.Debug("job pending", zap.String("job_id", jobID), zap.String("status", s))
			continue
		}

		callback(r.job.ShapeResult(result))

		if s == StatusCompleted {
			r.setState(StateCompleted)
			r.logger.Info("job completed", zap.String("job_id", jobID))
			return nil
		}
	}
}

// Abort asks the service to stop the attached job. It is best effort: any
// failure of the abort call is logged and dropped, never returned.
func (r *Runner[R]) Abort(ctx context.Context) {
	jobID := r.JobID()
	if jobID == "" {
		return
	}
	r.mu.Lock()
	if r.state == StatePolling {
		r.state = StateAborting
	}
	r.mu.Unlock()

	if _, err := r.client.AbortJob(ctx, jobID); err != nil {
		r.logger.Warn("abort failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// checkAuthentication logs in once; later calls are no-ops while the client
// holds a private key.
func (r *Runner[R]) checkAuthentication(ctx context.Context) error {
	if r.client.PrivateKey() != "" {
		return nil
	}
	r.setState(StateAuthenticating)
	return r.client.Authenticate(ctx)
}

// ServerErrorFrom returns the ServerError carried by a response document's
// error and reason fields, or nil when doc reports no error.
func ServerErrorFrom(doc gjson.Result) error {
	if !doc.IsObject() {
		return nil
	}
	code := doc.Get("error")
	if !code.Exists() {
		return nil
	}
	return &ServerError{Code: code.String(), Msg: doc.Get("reason").String()}
}

func uniqueFields(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
