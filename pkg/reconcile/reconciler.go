// Package reconcile drives one keyed entry on a device toward a desired state.
//
// Each invocation observes once (a count-only query), decides once, and sends
// at most one mutating command. There is no re-query after the mutation: a
// second read would not make the write atomic with the check, so the
// observe-then-act window against other writers is accepted and left to the
// caller (see pkg/lock).
//
// Failures come in two classes that are never mixed. Engine errors
// (validation, transport, unparseable count) are returned as errors. A
// device rejection of the mutating command is data: the Result reports
// changed=false and carries the device text in Stdout.
package reconcile

import (
	"context"

	"github.com/newtron-network/rosctl/pkg/entry"
	"github.com/newtron-network/rosctl/pkg/util"
)

// Outcome is the classified response to the mutating command.
type Outcome struct {
	Lines     []string
	Succeeded bool
}

// Result is the structured record of one invocation. It is produced for
// every invocation that does not return an error.
type Result struct {
	Kind         string      `json:"kind"`
	Key          string      `json:"key"`
	State        entry.State `json:"state"`
	Changed      bool        `json:"changed"`
	Action       Action      `json:"action"`
	Message      string      `json:"message"`
	Entries      int         `json:"entries"`
	CountCommand string      `json:"count_command"`
	Command      string      `json:"command"`
	Stdout       []string    `json:"stdout"`
	StdoutLines  [][]string  `json:"stdout_lines"`
	DryRun       bool        `json:"dry_run,omitempty"`
}

// Rejected reports whether the device refused the mutating command.
func (r *Result) Rejected() bool {
	return r.Action != ActionNone && !r.DryRun && !r.Changed
}

// Commands returns the commands sent to the device, count query first.
func (r *Result) Commands() []string {
	cmds := []string{r.CountCommand}
	if r.Command != "" && !r.DryRun {
		cmds = append(cmds, r.Command)
	}
	return cmds
}

// Options tunes a Reconciler.
type Options struct {
	// DryRun stops after the decision: the mutating command is synthesized
	// and reported but not sent.
	DryRun bool
}

// Reconciler reconciles entries of one Kind through one Executor. It holds
// no state between calls.
type Reconciler struct {
	kind entry.Kind
	exec Executor
	opts Options
}

// New returns a Reconciler for kind that sends commands through exec.
func New(kind entry.Kind, exec Executor, opts Options) *Reconciler {
	return &Reconciler{kind: kind, exec: exec, opts: opts}
}

// Kind returns the entry kind this reconciler manages.
func (r *Reconciler) Kind() entry.Kind {
	return r.kind
}

// Reconcile brings the entry described by spec to the desired state.
func (r *Reconciler) Reconcile(ctx context.Context, spec entry.Spec, desired entry.State) (*Result, error) {
	if !desired.Valid() {
		return nil, util.NewValidationError("unknown desired state " + string(desired))
	}
	if spec.Kind.Name != r.kind.Name {
		return nil, util.NewValidationError("spec is for " + spec.Kind.Name + ", reconciler manages " + r.kind.Name)
	}
	filter, err := entry.BuildFilter(spec.Key)
	if err != nil {
		return nil, err
	}
	// present may need "add", so its attributes are checked before any
	// command goes out.
	var createArgs string
	if desired == entry.StatePresent {
		if createArgs, err = spec.CreateArgs(); err != nil {
			return nil, err
		}
	}
	log := util.WithEntry(r.kind.Name, filter.String())

	result := &Result{
		Kind:         r.kind.Name,
		Key:          spec.Key.String(),
		State:        desired,
		Action:       ActionNone,
		CountCommand: countCommand(r.kind.Prefix, filter),
		Stdout:       []string{},
		StdoutLines:  [][]string{},
		DryRun:       r.opts.DryRun,
	}

	lines, err := r.exec.Execute(ctx, result.CountCommand)
	if err != nil {
		return nil, util.NewTransportError(result.CountCommand, err)
	}
	count, err := parseCount(result.CountCommand, lines)
	if err != nil {
		return nil, err
	}
	result.Entries = count

	action, msg := Decide(count > 0, desired)
	result.Action = action
	result.Message = msg
	log.Debugf("entries=%d desired=%s action=%s", count, desired, action)
	if action == ActionNone {
		return result, nil
	}

	if action == ActionCreate {
		result.Command = addCommand(r.kind.Prefix, createArgs)
	} else {
		result.Command = findCommand(r.kind.Prefix, action, filter)
	}

	if r.opts.DryRun {
		log.Debugf("dry-run, not sending: %s", result.Command)
		return result, nil
	}

	outcome, err := r.apply(ctx, result.Command)
	if err != nil {
		return nil, err
	}
	result.Changed = outcome.Succeeded
	result.Stdout = outcome.Lines
	result.StdoutLines = toLines(outcome.Lines)
	if !outcome.Succeeded {
		log.Warnf("device rejected %q: %s", result.Command, lastLine(outcome.Lines))
	}
	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, command string) (Outcome, error) {
	lines, err := r.exec.Execute(ctx, command)
	if err != nil {
		return Outcome{}, util.NewTransportError(command, err)
	}
	if lines == nil {
		lines = []string{}
	}
	return Outcome{Lines: lines, Succeeded: succeeded(lines)}, nil
}
