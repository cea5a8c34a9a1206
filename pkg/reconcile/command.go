package reconcile

import (
	"strconv"
	"strings"

	"github.com/newtron-network/rosctl/pkg/entry"
	"github.com/newtron-network/rosctl/pkg/util"
)

// FailureMarker in the final response line means the device rejected the
// command.
const FailureMarker = "failure:"

func countCommand(prefix string, filter entry.Filter) string {
	return prefix + " print count-only " + filter.String()
}

// findCommand targets the matching entries through the device's own find,
// so identifiers are resolved on the device at execution time.
func findCommand(prefix string, action Action, filter entry.Filter) string {
	return prefix + " " + action.Directive() + " [find " + filter.String() + "]"
}

func addCommand(prefix, args string) string {
	return prefix + " add " + args
}

// parseCount reads the last token of the last non-blank line.
func parseCount(command string, lines []string) (int, error) {
	last := lastLine(lines)
	fields := strings.Fields(last)
	if len(fields) == 0 {
		return 0, util.NewMalformedCountError(command, last)
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || n < 0 {
		return 0, util.NewMalformedCountError(command, last)
	}
	return n, nil
}

// succeeded reports whether the response is free of the failure marker in
// its final line.
func succeeded(lines []string) bool {
	return !strings.Contains(lastLine(lines), FailureMarker)
}

// lastLine returns the last non-blank line, looking inside multi-line
// elements.
func lastLine(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		parts := strings.Split(lines[i], "\n")
		for j := len(parts) - 1; j >= 0; j-- {
			if s := strings.TrimSpace(parts[j]); s != "" {
				return s
			}
		}
	}
	return ""
}

// toLines re-splits every response element on newlines.
func toLines(stdout []string) [][]string {
	out := make([][]string, len(stdout))
	for i, s := range stdout {
		out[i] = strings.Split(s, "\n")
	}
	return out
}
