package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"reviewpulse/internal/adapters/observability"
	"reviewpulse/internal/domain"
)

// Pipeline states. The run is a strict linear machine: each stage's remote
// call is only issued after the previous stage returned successfully, and a
// failure in any stage is absorbing.
const (
	StateIdle             = "idle"
	StateSubmitting       = "submitting"
	StateSentimentPending = "sentiment_pending"
	StateAspectsPending   = "aspects_pending"
	StateSummaryPending   = "summary_pending"
	StateDone             = "done"
	StateFailed           = "failed"
)

const (
	eventSubmit    = "submit"
	eventCreated   = "review_created"
	eventSentiment = "sentiment_done"
	eventAspects   = "aspects_done"
	eventSummary   = "summary_done"
	eventFail      = "fail"
)

var (
	ErrEmptyReview = errors.New("review text is empty")
	ErrNotCSV      = errors.New("batch file must be a .csv")
	ErrAlreadyRun  = errors.New("pipeline already consumed; start a new one")
)

// StageError marks a remote stage failure. Error() carries the cause for
// logs; UserMessage() is the only text shown to end users.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("analysis stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) UserMessage() string {
	return "An error occurred while analyzing the review. Please try again."
}

type runContext struct{ RunID string }

// Pipeline runs the create → sentiment → aspects → summary chain for one
// submitted review. A Pipeline is single-use: a failed run stays Failed and
// a user retry starts a fresh one from Idle.
type Pipeline struct {
	client domain.AnalysisClient
	itp    *statekit.Interpreter[runContext]
	runID  string
	onStep func(state string, percent int)
}

type Option func(*Pipeline)

// WithProgress registers a callback invoked on every state change with the
// new state and its percent-complete figure.
func WithProgress(fn func(state string, percent int)) Option {
	return func(p *Pipeline) { p.onStep = fn }
}

func NewPipeline(client domain.AnalysisClient, opts ...Option) (*Pipeline, error) {
	runID := uuid.NewString()

	b := statekit.NewMachine[runContext]("analysis-pipeline").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(runContext{RunID: runID})

	b.State(StateIdle).
		On(eventSubmit).Target(StateSubmitting).
		On(eventFail).Target(StateFailed).
		Done()
	b.State(StateSubmitting).
		On(eventCreated).Target(StateSentimentPending).
		On(eventFail).Target(StateFailed).
		Done()
	b.State(StateSentimentPending).
		On(eventSentiment).Target(StateAspectsPending).
		On(eventFail).Target(StateFailed).
		Done()
	b.State(StateAspectsPending).
		On(eventAspects).Target(StateSummaryPending).
		On(eventFail).Target(StateFailed).
		Done()
	b.State(StateSummaryPending).
		On(eventSummary).Target(StateDone).
		On(eventFail).Target(StateFailed).
		Done()
	b.State(StateDone).Done()
	b.State(StateFailed).Done()

	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build pipeline machine: %w", err)
	}
	itp := statekit.NewInterpreter(m)
	itp.Start()

	p := &Pipeline{client: client, itp: itp, runID: runID}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

func (p *Pipeline) State() string { return string(p.itp.State().Value) }

func (p *Pipeline) RunID() string { return p.runID }

// Percent maps a pipeline state to the single coarse progress figure the
// serialized design gives us.
func Percent(state string) int {
	switch state {
	case StateIdle:
		return 0
	case StateSubmitting:
		return 20
	case StateSentimentPending:
		return 40
	case StateAspectsPending:
		return 60
	case StateSummaryPending:
		return 80
	case StateDone, StateFailed:
		return 100
	}
	return 0
}

func (p *Pipeline) step(event string) {
	p.itp.Send(statekit.Event{Type: statekit.EventType(event)})
	s := p.State()
	observability.ObservePipelineStage(s)
	if p.onStep != nil {
		p.onStep(s, Percent(s))
	}
}

// Run executes the full pipeline for one review text.
//
// Validation happens before any network call: empty (post-trim) text fails
// fast with ErrEmptyReview and zero calls issued. On a remote failure the
// remaining stages are never issued and the review created by the first
// stage, if any, is left behind on the service without analysis rows; there
// is no rollback. No stage is retried.
func (p *Pipeline) Run(ctx context.Context, text, source string) (domain.CombinedAnalysis, error) {
	if p.State() != StateIdle {
		return domain.CombinedAnalysis{}, ErrAlreadyRun
	}
	if strings.TrimSpace(text) == "" {
		p.step(eventFail)
		return domain.CombinedAnalysis{}, ErrEmptyReview
	}
	if source == "" {
		source = "manual"
	}

	p.step(eventSubmit)
	log.Info().Str("run_id", p.runID).Str("source", source).Msg("analysis pipeline started")

	review, err := p.client.CreateReview(ctx, text, source)
	if err != nil {
		return domain.CombinedAnalysis{}, p.fail(StateSubmitting, err)
	}
	p.step(eventCreated)

	sentiment, err := p.client.AnalyzeSentiment(ctx, review.ID)
	if err != nil {
		return domain.CombinedAnalysis{}, p.fail(StateSentimentPending, err)
	}
	p.step(eventSentiment)

	aspects, err := p.client.ExtractAspects(ctx, review.ID)
	if err != nil {
		return domain.CombinedAnalysis{}, p.fail(StateAspectsPending, err)
	}
	p.step(eventAspects)

	summary, err := p.client.SummarizeReview(ctx, review.ID)
	if err != nil {
		return domain.CombinedAnalysis{}, p.fail(StateSummaryPending, err)
	}
	p.step(eventSummary)

	out := domain.CombinedAnalysis{
		Review:    review,
		Sentiment: &sentiment,
		Aspects:   aspects,
		Summary:   &summary,
	}
	log.Info().Str("run_id", p.runID).Int64("review_id", review.ID).Msg("analysis pipeline done")
	return out, nil
}

func (p *Pipeline) fail(stage string, cause error) error {
	p.step(eventFail)
	log.Warn().Str("run_id", p.runID).Str("stage", stage).Err(cause).Msg("analysis pipeline failed")
	return &StageError{Stage: stage, Err: cause}
}

// UploadBatch sends a CSV of reviews in one request, bypassing the per-review
// pipeline. The file name must end in .csv; the check runs before any network
// call. Rows are analyzed by the service out-of-band, so the receipt only
// reports how many were accepted.
func UploadBatch(ctx context.Context, client domain.AnalysisClient, filename string, file io.Reader) (domain.UploadReceipt, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return domain.UploadReceipt{}, fmt.Errorf("%w: %s", ErrNotCSV, filename)
	}
	rc, err := client.UploadCSV(ctx, filename, file)
	if err != nil {
		return domain.UploadReceipt{}, err
	}
	log.Info().Str("filename", rc.Filename).Int("accepted", rc.Accepted).Msg("batch upload accepted")
	return rc, nil
}
