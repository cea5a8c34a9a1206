// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/newtron-network/rosctl/pkg/entry"
)

// FakeDevice is an in-memory stand-in for a RouterOS shell. It understands
// the subset of the grammar the reconciler emits (print count-only, add, and
// remove/enable/disable over [find ...]) for the kinds it is built with, and
// records every command it receives.
type FakeDevice struct {
	mu       sync.Mutex
	kinds    []entry.Kind
	tables   map[string][]map[string]string
	commands []string
	reject   string
	failErr  error
	failOn   int
}

// NewFakeDevice returns an empty device serving the given kinds.
func NewFakeDevice(kinds ...entry.Kind) *FakeDevice {
	if len(kinds) == 0 {
		kinds = []entry.Kind{entry.IPAddress, entry.IPPool}
	}
	return &FakeDevice{kinds: kinds, tables: make(map[string][]map[string]string)}
}

// Seed adds an entry directly, bypassing the command log.
func (d *FakeDevice) Seed(kind entry.Kind, fields map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row := map[string]string{"disabled": "no"}
	for k, v := range fields {
		row[k] = v
	}
	d.tables[kind.Prefix] = append(d.tables[kind.Prefix], row)
}

// Entries returns copies of the rows stored for kind.
func (d *FakeDevice) Entries(kind entry.Kind) []map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []map[string]string
	for _, row := range d.tables[kind.Prefix] {
		cp := make(map[string]string, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}

// Commands returns every command received so far.
func (d *FakeDevice) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.commands...)
}

// RejectNext makes the next mutating command answer with a failure line.
func (d *FakeDevice) RejectNext(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reject = msg
}

// FailOn makes the n-th command (1-based, counted from now) return err.
func (d *FakeDevice) FailOn(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOn = len(d.commands) + n
	d.failErr = err
}

// Execute implements reconcile.Executor.
func (d *FakeDevice) Execute(_ context.Context, command string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.commands = append(d.commands, command)
	if d.failErr != nil && len(d.commands) == d.failOn {
		err := d.failErr
		d.failErr = nil
		return nil, err
	}

	kind, rest, ok := d.match(command)
	if !ok {
		return []string{"bad command name " + firstWord(command) + " (line 1 column 2)"}, nil
	}
	verb, args, _ := strings.Cut(rest, " ")

	if verb == "print" {
		where := strings.TrimPrefix(args, "count-only ")
		filter, err := parseWhere(where)
		if err != nil {
			return []string{"syntax error (line 1 column 1)"}, nil
		}
		return []string{strconv.Itoa(len(d.find(kind, filter)))}, nil
	}

	if d.reject != "" {
		msg := d.reject
		d.reject = ""
		return []string{"failure: " + msg}, nil
	}

	switch verb {
	case "add":
		fields, err := parsePairs(args)
		if err != nil {
			return []string{"syntax error (line 1 column 1)"}, nil
		}
		key := make(map[string]string)
		for _, f := range kind.KeyFields {
			key[f] = fields[f]
		}
		if len(d.find(kind, key)) > 0 {
			return []string{"failure: already have such entry"}, nil
		}
		fields["disabled"] = "no"
		d.tables[kind.Prefix] = append(d.tables[kind.Prefix], fields)
		return []string{}, nil
	case "remove", "enable", "disable":
		inner := strings.TrimSuffix(strings.TrimPrefix(args, "[find "), "]")
		filter, err := parseWhere(inner)
		if err != nil {
			return []string{"syntax error (line 1 column 1)"}, nil
		}
		idx := d.find(kind, filter)
		switch verb {
		case "remove":
			d.removeRows(kind, idx)
		case "enable":
			d.setDisabled(kind, idx, "no")
		case "disable":
			d.setDisabled(kind, idx, "yes")
		}
		return []string{}, nil
	}
	return []string{"bad command name " + verb + " (line 1 column 2)"}, nil
}

func (d *FakeDevice) match(command string) (entry.Kind, string, bool) {
	for _, k := range d.kinds {
		if rest, ok := strings.CutPrefix(command, k.Prefix+" "); ok {
			return k, rest, true
		}
	}
	return entry.Kind{}, "", false
}

func (d *FakeDevice) find(kind entry.Kind, filter map[string]string) []int {
	var idx []int
	for i, row := range d.tables[kind.Prefix] {
		matched := true
		for k, v := range filter {
			if row[k] != v {
				matched = false
				break
			}
		}
		if matched {
			idx = append(idx, i)
		}
	}
	return idx
}

func (d *FakeDevice) removeRows(kind entry.Kind, idx []int) {
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	rows := d.tables[kind.Prefix]
	for _, i := range idx {
		rows = append(rows[:i], rows[i+1:]...)
	}
	d.tables[kind.Prefix] = rows
}

func (d *FakeDevice) setDisabled(kind entry.Kind, idx []int, v string) {
	for _, i := range idx {
		d.tables[kind.Prefix][i]["disabled"] = v
	}
}

func parseWhere(s string) (map[string]string, error) {
	rest, ok := strings.CutPrefix(s, "where ")
	if !ok {
		return nil, fmt.Errorf("missing where: %q", s)
	}
	return parsePairs(rest)
}

// parsePairs reads k=v and k="v" tokens, undoing \\ and \$ escapes.
func parsePairs(s string) (map[string]string, error) {
	out := make(map[string]string)
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		name, rest, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value in %q", s)
		}
		var val strings.Builder
		if strings.HasPrefix(rest, `"`) {
			i := 1
			for ; i < len(rest) && rest[i] != '"'; i++ {
				if rest[i] == '\\' && i+1 < len(rest) {
					i++
				}
				val.WriteByte(rest[i])
			}
			if i >= len(rest) {
				return nil, fmt.Errorf("unterminated string in %q", s)
			}
			s = rest[i+1:]
		} else {
			v, tail, _ := strings.Cut(rest, " ")
			val.WriteString(v)
			s = tail
		}
		out[name] = val.String()
	}
	return out, nil
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
