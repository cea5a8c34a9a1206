// Package runner drives reconciliations against named devices.
//
// Each request is independent: it opens its own session, takes its own
// device lock when a locker is configured, reconciles one entry and writes
// one audit event. Nothing is rolled back when a later request fails.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/newtron-network/rosctl/pkg/audit"
	"github.com/newtron-network/rosctl/pkg/entry"
	"github.com/newtron-network/rosctl/pkg/inventory"
	"github.com/newtron-network/rosctl/pkg/lock"
	"github.com/newtron-network/rosctl/pkg/reconcile"
	"github.com/newtron-network/rosctl/pkg/util"
)

// Session is an open command channel to one device.
type Session interface {
	reconcile.Executor
	Close() error
}

// Dialer opens a session to the named device.
type Dialer func(ctx context.Context, device string) (Session, error)

// Options control a Runner.
type Options struct {
	// DryRun previews: the count query runs, the mutation does not, and no
	// audit event or lock is taken.
	DryRun bool
	// KeepGoing continues a task list past a failed task.
	KeepGoing bool
	// User is recorded in audit events.
	User string
}

// Runner reconciles entries on devices reached through a Dialer.
type Runner struct {
	dial   Dialer
	locker *lock.Locker
	audit  audit.Logger
	opts   Options
}

// New returns a Runner. Locking and auditing are off until configured.
func New(dial Dialer, opts Options) *Runner {
	return &Runner{dial: dial, opts: opts}
}

// WithLocker serializes mutations per device through l.
func (r *Runner) WithLocker(l *lock.Locker) *Runner {
	r.locker = l
	return r
}

// WithAudit records every executed reconciliation in logger.
func (r *Runner) WithAudit(logger audit.Logger) *Runner {
	r.audit = logger
	return r
}

// RunOne reconciles one entry on device.
func (r *Runner) RunOne(ctx context.Context, device string, spec entry.Spec, desired entry.State) (*reconcile.Result, error) {
	start := time.Now()
	res, err := r.runOne(ctx, device, spec, desired)
	if !r.opts.DryRun {
		r.record(device, spec, res, err, time.Since(start))
	}
	return res, err
}

func (r *Runner) runOne(ctx context.Context, device string, spec entry.Spec, desired entry.State) (*reconcile.Result, error) {
	log := util.WithDevice(device)

	if r.locker != nil && !r.opts.DryRun {
		held, err := r.locker.Acquire(ctx, device)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := held.Release(context.Background()); err != nil {
				log.Warnf("releasing lock: %v", err)
			}
		}()
	}

	sess, err := r.dial(ctx, device)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	rec := reconcile.New(spec.Kind, sess, reconcile.Options{DryRun: r.opts.DryRun})
	res, err := rec.Reconcile(ctx, spec, desired)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s %s: %s changed=%t", spec.Kind.Name, res.Key, res.Action, res.Changed)
	return res, nil
}

func (r *Runner) record(device string, spec entry.Spec, res *reconcile.Result, err error, d time.Duration) {
	if r.audit == nil {
		return
	}
	event := audit.NewEvent(r.opts.User, device, spec.Kind.Name).WithDuration(d)
	if res != nil {
		event.WithResult(res)
	} else {
		event.WithKey(spec.Key.String())
	}
	if err != nil {
		event.WithError(err)
	}
	if lerr := r.audit.Log(event); lerr != nil {
		util.WithDevice(device).Warnf("writing audit event: %v", lerr)
	}
}

// TaskResult is the outcome of one task. Exactly one of Result and Err is set.
type TaskResult struct {
	Task     inventory.Task
	Result   *reconcile.Result
	Err      error
	Duration time.Duration
}

// Run executes tasks in order. It stops at the first failed task unless
// KeepGoing is set, and returns the results of the tasks it ran. A device
// rejection is a result, not a failure.
func (r *Runner) Run(ctx context.Context, tasks []inventory.Task) ([]TaskResult, error) {
	results := make([]TaskResult, 0, len(tasks))
	failed := 0
	var first error

	for _, t := range tasks {
		start := time.Now()
		tr := TaskResult{Task: t}

		spec, state, err := t.Resolve()
		if err == nil {
			tr.Result, err = r.RunOne(ctx, t.Device, spec, state)
		}
		tr.Err = err
		tr.Duration = time.Since(start)
		results = append(results, tr)

		if err != nil {
			util.WithTask(t.Name, t.Device).Debugf("task failed: %v", err)
			failed++
			if first == nil {
				first = err
			}
			if !r.opts.KeepGoing {
				return results, fmt.Errorf("%s: %w", t.Name, err)
			}
		}
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
	}

	if failed > 0 {
		return results, fmt.Errorf("%d of %d tasks failed, first: %w", failed, len(tasks), first)
	}
	return results, nil
}
