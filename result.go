package reasonchain

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusInitialized Status = "initialized"
	StatusCompleted   Status = "completed"
	StatusPartial     Status = "partial"
	StatusFailed      Status = "failed"
)

// Terminal reports whether no further transition can happen from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

var ErrInconsistentResult = errors.New("inconsistent pipeline result")

// Result is the outcome of one end-to-end pipeline run. Optional fields are empty
// when absent and omitted from JSON.
type Result struct {
	Timestamp         time.Time `json:"timestamp"`
	OriginalPrompt    string    `json:"original_prompt"`
	PipelineStatus    Status    `json:"pipeline_status"`
	ReferenceMaterial string    `json:"reference_material,omitempty"`
	FinalAnswer       string    `json:"final_answer,omitempty"`
	Error             string    `json:"error,omitempty"`
}

func newResult(prompt string, now time.Time) *Result {
	return &Result{
		Timestamp:      now,
		OriginalPrompt: prompt,
		PipelineStatus: StatusInitialized,
	}
}

func (r *Result) fail(msg string) {
	r.PipelineStatus = StatusFailed
	r.ReferenceMaterial = ""
	r.FinalAnswer = ""
	r.Error = msg
}

func (r *Result) partial(msg string) {
	r.PipelineStatus = StatusPartial
	r.FinalAnswer = ""
	r.Error = msg
}

func (r *Result) complete(answer string) {
	r.PipelineStatus = StatusCompleted
	r.FinalAnswer = answer
	r.Error = ""
}

// Validate checks that the populated fields agree with PipelineStatus.
func (r *Result) Validate() error {
	hasRef := r.ReferenceMaterial != ""
	hasAnswer := r.FinalAnswer != ""
	hasErr := r.Error != ""

	var ok bool
	switch r.PipelineStatus {
	case StatusInitialized:
		ok = !hasAnswer && !hasErr
	case StatusCompleted:
		ok = hasRef && hasAnswer && !hasErr
	case StatusPartial:
		ok = hasRef && !hasAnswer && hasErr
	case StatusFailed:
		ok = !hasRef && !hasAnswer && hasErr
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInconsistentResult, r.PipelineStatus)
	}

	if !ok {
		return fmt.Errorf("%w: status %s with reference=%t answer=%t error=%t",
			ErrInconsistentResult, r.PipelineStatus, hasRef, hasAnswer, hasErr)
	}
	return nil
}
