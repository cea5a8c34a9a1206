package reconcile

import "context"

// Executor sends one command to the device and returns the literal lines of
// its response. An error means the channel failed, never that the device
// rejected the command.
type Executor interface {
	Execute(ctx context.Context, command string) ([]string, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, command string) ([]string, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, command string) ([]string, error) {
	return f(ctx, command)
}
