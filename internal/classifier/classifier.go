package classifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/observability"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultMaxTokens = 200
)

// Source reports which path produced a classification.
type Source string

const (
	SourceEmpty    Source = "empty"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// FailureReason explains why the remote path was not used.
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonLocalOnly         FailureReason = "local_only"
	ReasonUnavailable       FailureReason = "unavailable"
	ReasonTimeout           FailureReason = "timeout"
	ReasonCanceled          FailureReason = "canceled"
	ReasonEmptyResponse     FailureReason = "empty_response"
	ReasonMalformedResponse FailureReason = "malformed_response"
)

// Result is a classification plus the path that produced it.
type Result struct {
	domain.Classification
	Source Source
	Reason FailureReason
}

// remoteOutcome is either a parsed payload (reason empty) or a failure reason with its cause.
type remoteOutcome struct {
	payload payload
	reason  FailureReason
	err     error
}

func (o remoteOutcome) ok() bool {
	return o.reason == ReasonNone
}

// Classifier maps ticket text to a classification, preferring the remote service and
// falling back to local keyword rules whenever the remote path fails.
type Classifier struct {
	taxonomy  domain.Taxonomy
	remote    Remote
	timeout   time.Duration
	maxTokens int
	localOnly bool
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithTimeout bounds each remote call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxTokens bounds the size of the remote reply.
func WithMaxTokens(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLocalOnly skips the remote call entirely.
func WithLocalOnly(localOnly bool) Option {
	return func(c *Classifier) {
		c.localOnly = localOnly
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Classifier) {
		c.metrics = metrics
	}
}

// New constructs a Classifier. A nil remote behaves like local-only mode.
func New(taxonomy domain.Taxonomy, remote Remote, opts ...Option) *Classifier {
	c := &Classifier{
		taxonomy:  taxonomy,
		remote:    remote,
		timeout:   defaultTimeout,
		maxTokens: defaultMaxTokens,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Taxonomy returns the taxonomy the classifier validates against.
func (c *Classifier) Taxonomy() domain.Taxonomy {
	return c.taxonomy
}

// Classify never fails. Empty text short-circuits to other/Low/0 without a remote call.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	if text == "" {
		c.metrics.RecordClassification(string(SourceEmpty), "")
		return Result{
			Classification: domain.Classification{Category: domain.CategoryOther, Priority: domain.PriorityLow, Confidence: 0},
			Source:         SourceEmpty,
		}
	}

	outcome := c.callRemote(ctx, text)
	if outcome.ok() {
		c.metrics.RecordClassification(string(SourceRemote), "")
		return Result{
			Classification: outcome.payload.normalize(c.taxonomy),
			Source:         SourceRemote,
		}
	}

	if outcome.reason != ReasonLocalOnly {
		c.logger.Warn("remote classification failed, using keyword fallback",
			zap.String("reason", string(outcome.reason)),
			zap.Error(outcome.err),
		)
	}
	c.metrics.RecordClassification(string(SourceFallback), string(outcome.reason))
	return Result{
		Classification: Heuristic(text),
		Source:         SourceFallback,
		Reason:         outcome.reason,
	}
}

func (c *Classifier) callRemote(ctx context.Context, text string) remoteOutcome {
	if c.localOnly || c.remote == nil {
		return remoteOutcome{reason: ReasonLocalOnly}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	reply, err := c.remote.Complete(callCtx, Request{
		Prompt:      buildPrompt(c.taxonomy, text),
		MaxTokens:   c.maxTokens,
		Temperature: 0,
	})
	c.metrics.ObserveRemoteClassification(time.Since(start))
	if err != nil {
		return remoteOutcome{reason: failureReason(ctx, callCtx, err), err: err}
	}

	if strings.TrimSpace(reply) == "" {
		return remoteOutcome{reason: ReasonEmptyResponse, err: ErrEmptyResponse}
	}

	parsed, err := parseResponse(reply)
	if err != nil {
		return remoteOutcome{reason: ReasonMalformedResponse, err: err}
	}
	return remoteOutcome{payload: parsed}
}

func failureReason(parent, call context.Context, err error) FailureReason {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return ReasonEmptyResponse
	case errors.Is(parent.Err(), context.Canceled):
		return ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(call.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonUnavailable
	}
}
