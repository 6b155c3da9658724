package reasonchain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultStageTimeout = 60 * time.Second

	defaultReasoningName = "reasoning"
	defaultAnswerName    = "answer"
	connectivityHint   = ". Please check your internet connection and API keys."
	logPromptLimit     = 100
)

// Config wires the pipeline. Both providers are required; the rest have defaults.
type Config struct {
	Reasoning ReasoningProvider
	Answer    AnswerProvider
	// ReasoningName and AnswerName label errors returned by providers that do not
	// name themselves, such as plain funcs.
	ReasoningName string
	AnswerName    string
	StageTimeout  time.Duration // per provider call
	Logger        *slog.Logger
	Clock         func() time.Time
}

// Pipeline chains the reasoning and answer providers. It holds no per-run state and
// is safe for concurrent use.
type Pipeline struct {
	reasoning     ReasoningProvider
	answer        AnswerProvider
	reasoningName string
	answerName    string
	stageTimeout  time.Duration
	logger       *slog.Logger
	clock        func() time.Time
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.Reasoning == nil || cfg.Answer == nil {
		return nil, ErrMissingProvider
	}

	p := &Pipeline{
		reasoning:     cfg.Reasoning,
		answer:        cfg.Answer,
		reasoningName: cfg.ReasoningName,
		answerName:    cfg.AnswerName,
		stageTimeout:  cfg.StageTimeout,
		logger:        cfg.Logger,
		clock:         cfg.Clock,
	}
	if p.reasoningName == "" {
		p.reasoningName = defaultReasoningName
	}
	if p.answerName == "" {
		p.answerName = defaultAnswerName
	}
	if p.stageTimeout <= 0 {
		p.stageTimeout = DefaultStageTimeout
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	return p, nil
}

// stageOutcome is the result of one provider call: either text or a classified error.
type stageOutcome struct {
	text string
	err  *ProviderError
}

func (o stageOutcome) ok() bool { return o.err == nil }

// Run executes the pipeline for prompt. It never fails: every error is reported
// through the returned Result's status and error fields. The prompt must be non-empty.
func (p *Pipeline) Run(ctx context.Context, prompt string) *Result {
	res := newResult(prompt, p.clock().UTC().Round(0))
	logger := p.logger.With("run_id", uuid.NewString())
	start := time.Now()

	logger.Info("getting reference material", "prompt", truncate(prompt, logPromptLimit))
	ref := p.runStage(ctx, logger, p.reasoningName, func(ctx context.Context) (string, error) {
		return p.reasoning.FetchReasoning(ctx, prompt)
	})
	if !ref.ok() {
		res.fail(reasoningFailureMessage(ref.err))
		logger.Error("pipeline failed", "stage", p.reasoningName, "kind", ref.err.Kind.String(), "error", ref.err)
		return res
	}
	res.ReferenceMaterial = ref.text

	if err := ctx.Err(); err != nil {
		res.partial("Answer generation failed: " + err.Error())
		logger.Warn("pipeline cancelled before answer stage", "error", err)
		return res
	}

	logger.Info("getting answer using the reference material", "reference_len", len(ref.text))
	ans := p.runStage(ctx, logger, p.answerName, func(ctx context.Context) (string, error) {
		return p.answer.FetchAnswer(ctx, prompt, ref.text)
	})
	if !ans.ok() {
		res.partial("Answer generation failed: " + ans.err.Error())
		logger.Error("answer stage failed", "kind", ans.err.Kind.String(), "error", ans.err)
		return res
	}

	res.complete(ans.text)
	logger.Info("pipeline completed", "duration", time.Since(start))
	return res
}

func (p *Pipeline) runStage(ctx context.Context, logger *slog.Logger, stage string, call func(context.Context) (string, error)) (out stageOutcome) {
	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("provider panic: %v", r)
			out = stageOutcome{err: &ProviderError{Provider: stage, Kind: KindResponse, Message: err.Error(), Err: err}}
		}
		logger.Debug("stage finished", "stage", stage, "duration", time.Since(start), "ok", out.ok())
	}()

	text, err := call(ctx)
	if err != nil {
		return stageOutcome{err: newProviderError(stage, err)}
	}
	if strings.TrimSpace(text) == "" {
		return stageOutcome{err: emptyContentError(stage)}
	}
	return stageOutcome{text: text}
}

func reasoningFailureMessage(err *ProviderError) string {
	msg := err.Error()
	if err.Kind == KindEmptyContent {
		msg = fmt.Sprintf("No reference material received from %s API", err.Provider)
	}
	msg = "Error processing request: " + msg
	if IsTransport(err) {
		msg += connectivityHint
	}
	return msg
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
