// Package staged applies a sequence of writes as one unit: when a write
// fails, the ones already applied are reverted newest first.
//
//	var p staged.Plan
//	p.Add(staged.Func("mirror preferences", writeLocal, restoreLocal))
//	p.Add(staged.Func("save preferences upstream", saveRemote, nil))
//	err := p.Commit(ctx)
package staged

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
)

// ErrCommitted is returned when a plan is reused after Commit.
var ErrCommitted = errors.New("plan already committed")

// Change is one staged write.
type Change interface {
	Apply(ctx context.Context) error

	// Revert undoes a successful Apply. It is best effort.
	Revert(ctx context.Context) error

	Describe() string
}

// Func builds a Change from closures. A nil revert makes the change
// irreversible.
func Func(description string, apply, revert func(ctx context.Context) error) Change {
	return funcChange{description: description, apply: apply, revert: revert}
}

type funcChange struct {
	description string
	apply       func(ctx context.Context) error
	revert      func(ctx context.Context) error
}

func (f funcChange) Apply(ctx context.Context) error { return f.apply(ctx) }

func (f funcChange) Revert(ctx context.Context) error {
	if f.revert == nil {
		return nil
	}

	return f.revert(ctx)
}

func (f funcChange) Describe() string { return f.description }

// Plan collects changes and commits them in order. The zero value is ready to
// use.
type Plan struct {
	mu        sync.Mutex
	changes   []Change
	committed bool
}

// Add stages a change.
func (p *Plan) Add(c Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.committed {
		return ErrCommitted
	}

	p.changes = append(p.changes, c)

	return nil
}

// Changes returns the staged changes.
func (p *Plan) Changes() []Change {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Change, len(p.changes))
	copy(out, p.changes)

	return out
}

// Commit applies every change in order. On the first failure the applied
// changes are reverted newest first and the failure is returned. Revert
// errors are logged.
func (p *Plan) Commit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.committed {
		return ErrCommitted
	}

	p.committed = true

	for i, c := range p.changes {
		err := c.Apply(ctx)
		if err == nil {
			continue
		}

		for j := i - 1; j >= 0; j-- {
			if rerr := p.changes[j].Revert(ctx); rerr != nil {
				logging.FromContext(ctx).WarnContext(ctx, "revert failed",
					slog.String("change", p.changes[j].Describe()),
					slog.Any("error", rerr),
				)
			}
		}

		return fmt.Errorf("%s: %w", c.Describe(), err)
	}

	return nil
}
