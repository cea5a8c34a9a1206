package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/newtron-network/rosctl/pkg/cli"
	"github.com/newtron-network/rosctl/pkg/reconcile"
	"github.com/newtron-network/rosctl/pkg/runner"
)

// status is the one-word outcome of a result.
func status(res *reconcile.Result) string {
	switch {
	case res.Action == reconcile.ActionNone:
		return green("ok")
	case res.DryRun:
		return yellow("would " + string(res.Action))
	case res.Rejected():
		return red("rejected")
	default:
		return green("changed")
	}
}

// printResult renders one reconciliation.
func printResult(w io.Writer, device string, res *reconcile.Result) error {
	if jsonOutput {
		return writeJSON(w, res)
	}

	fmt.Fprintf(w, "%s %s on %s\n", bold(res.Kind), res.Key, device)
	fmt.Fprintf(w, "  Entries: %d  Desired: %s  Action: %s\n", res.Entries, res.State, res.Action)
	if res.Message != "" {
		fmt.Fprintf(w, "  %s\n", res.Message)
	}
	if res.Command != "" {
		fmt.Fprintf(w, "  Command: %s\n", res.Command)
	}
	for _, line := range res.Stdout {
		fmt.Fprintf(w, "  %s %s\n", cli.Dim("|"), line)
	}
	fmt.Fprintf(w, "  Status:  %s\n", status(res))

	if res.DryRun && res.Action != reconcile.ActionNone {
		fmt.Fprintln(w, "\n"+yellow("DRY-RUN: No changes applied. Use -x to execute."))
	}
	return nil
}

// taskJSON is the --json shape of one apply task.
type taskJSON struct {
	Name   string            `json:"name"`
	Device string            `json:"device"`
	Result *reconcile.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// printTaskResults renders an apply run, one dot-padded line per task.
func printTaskResults(w io.Writer, results []runner.TaskResult) error {
	if jsonOutput {
		out := make([]taskJSON, 0, len(results))
		for _, tr := range results {
			tj := taskJSON{Name: tr.Task.Name, Device: tr.Task.Device, Result: tr.Result}
			if tr.Err != nil {
				tj.Error = tr.Err.Error()
			}
			out = append(out, tj)
		}
		return writeJSON(w, out)
	}

	width := 0
	for _, tr := range results {
		if n := len(tr.Task.Name) + len(tr.Task.Device) + 3; n > width {
			width = n
		}
	}
	width += 4

	dryRun := false
	for _, tr := range results {
		label := cli.DotPad(fmt.Sprintf("%s (%s)", tr.Task.Name, tr.Task.Device), width)
		if tr.Err != nil {
			fmt.Fprintf(w, "%s %s %s\n", label, red("error"), firstLine(tr.Err.Error()))
			continue
		}
		res := tr.Result
		dryRun = dryRun || res.DryRun
		detail := res.Message
		if res.Command != "" {
			detail = res.Command
		}
		if res.Rejected() && len(res.Stdout) > 0 {
			detail = res.Stdout[len(res.Stdout)-1]
		}
		fmt.Fprintf(w, "%s %s %s\n", label, status(res), cli.Dim(detail))
	}

	if dryRun {
		fmt.Fprintln(w, "\n"+yellow("DRY-RUN: No changes applied. Use -x to execute."))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
