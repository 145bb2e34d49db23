package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
)

// Step names one stage of a staged operation.
//
// Operations that change viewer state run in a fixed order: validate the
// input, perform the upstream call, verify the upstream agrees with the
// result, archive it into the session, then shape the response. Nothing is
// archived unless verification passed, so a half-finished sign-in never
// leaves the session upgraded.
type Step string

const (
	StepValidate Step = "validate"
	StepPerform  Step = "perform"
	StepVerify   Step = "verify"
	StepArchive  Step = "archive"
	StepRespond  Step = "respond"
)

// StepError records which stage of an operation failed.
type StepError struct {
	Operation string
	Step      Step
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep reports the stage an operation error came from.
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}

	return "", false
}

// Operation describes the stages of one staged operation. Nil stages are
// skipped. I is the input, P what Perform produced, V what Verify confirmed
// and O the response.
type Operation[I, P, V, O any] struct {
	Name string

	Validate func(ctx context.Context, in I) error
	Perform  func(ctx context.Context, in I) (P, error)
	Verify   func(ctx context.Context, in I, performed P) (V, error)
	Archive  func(ctx context.Context, in I, verified V) error
	Respond  func(ctx context.Context, in I, verified V) (O, error)
}

// Executor runs operations and logs each stage.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. The logger is used when the context
// carries none.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

func (e *Executor) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := logging.Lookup(ctx); ok {
		return l
	}

	return e.logger
}

// Execute runs op against in. A failing stage stops the run and is returned
// as a *StepError wrapping the stage's own error, so errors.Is still sees
// domain sentinels.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], in I) (O, error) {
	var (
		zero      O
		performed P
		verified  V
	)

	logger := exec.loggerFor(ctx).With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step Step, err error) (O, error) {
		level := slog.LevelError
		if step == StepValidate {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "operation step failed",
			slog.String("step", string(step)),
			slog.Any("error", err),
		)

		return zero, &StepError{Operation: op.Name, Step: step, Err: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, in); err != nil {
			return fail(StepValidate, err)
		}
	}

	if op.Perform != nil {
		p, err := op.Perform(ctx, in)
		if err != nil {
			return fail(StepPerform, err)
		}

		performed = p
	}

	if op.Verify != nil {
		v, err := op.Verify(ctx, in, performed)
		if err != nil {
			return fail(StepVerify, err)
		}

		verified = v
	} else if v, ok := any(performed).(V); ok {
		verified = v
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, in, verified); err != nil {
			return fail(StepArchive, err)
		}
	}

	out := zero

	if op.Respond != nil {
		o, err := op.Respond(ctx, in, verified)
		if err != nil {
			return fail(StepRespond, err)
		}

		out = o
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return out, nil
}
