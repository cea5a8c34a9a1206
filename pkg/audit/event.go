// Package audit provides audit logging for reconciliation runs.
package audit

import (
	"fmt"
	"time"

	"github.com/newtron-network/rosctl/pkg/reconcile"
)

// Event records one reconciliation against one device.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Device    string        `json:"device"`
	Kind      string        `json:"kind"`
	Key       string        `json:"key,omitempty"`
	State     string        `json:"state,omitempty"`
	Action    string        `json:"action,omitempty"`
	Changed   bool          `json:"changed"`
	Entries   int           `json:"entries"`
	Command   string        `json:"command,omitempty"`
	Output    []string      `json:"output,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	DryRun    bool          `json:"dry_run"`
	Duration  time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Device      string
	Kind        string
	Action      string
	StartTime   time.Time
	EndTime     time.Time
	ChangedOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, device, kind string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Device:    device,
		Kind:      kind,
	}
}

// WithResult copies the reconciliation outcome into the event. A device
// rejection is recorded as a failure with the device text as the error.
func (e *Event) WithResult(r *reconcile.Result) *Event {
	e.Key = r.Key
	e.State = string(r.State)
	e.Action = string(r.Action)
	e.Changed = r.Changed
	e.Entries = r.Entries
	e.Command = r.Command
	e.Output = r.Stdout
	e.DryRun = r.DryRun
	e.Success = !r.Rejected()
	if !e.Success && len(r.Stdout) > 0 {
		e.Error = r.Stdout[len(r.Stdout)-1]
	}
	return e
}

// WithKey sets the entry key when no result is available
func (e *Event) WithKey(key string) *Event {
	e.Key = key
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
