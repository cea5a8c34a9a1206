package testutil

import (
	"context"
	"reflect"
	"testing"

	"github.com/newtron-network/rosctl/pkg/entry"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]string
	}{
		{`address=10.0.0.1 interface=ether1`, map[string]string{"address": "10.0.0.1", "interface": "ether1"}},
		{`name="guest pool" ranges=10.0.0.2-10.0.0.9`, map[string]string{"name": "guest pool", "ranges": "10.0.0.2-10.0.0.9"}},
		{`name="a\\b\$c"`, map[string]string{"name": `a\b$c`}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePairs(tt.in)
			if err != nil {
				t.Fatalf("parsePairs() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parsePairs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFakeDevice_UnknownContext(t *testing.T) {
	d := NewFakeDevice(entry.IPPool)
	lines, err := d.Execute(context.Background(), "/interface print count-only")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(lines) != 1 || lines[0] == "0" {
		t.Errorf("Execute() = %v, want an error line", lines)
	}
}
