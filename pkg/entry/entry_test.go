package entry

import (
	"errors"
	"strings"
	"testing"

	"github.com/newtron-network/rosctl/pkg/util"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		values map[string]string
		want   Filter
	}{
		{
			name:   "ip address key order",
			kind:   IPAddress,
			values: map[string]string{"interface": "ether1", "address": "192.168.88.77"},
			want:   `where address="192.168.88.77" interface="ether1"`,
		},
		{
			name:   "ip pool",
			kind:   IPPool,
			values: map[string]string{"name": "dhcp-pool"},
			want:   `where name="dhcp-pool"`,
		},
		{
			name:   "value with space",
			kind:   IPPool,
			values: map[string]string{"name": "guest pool"},
			want:   `where name="guest pool"`,
		},
		{
			name:   "backslash and dollar escaped",
			kind:   IPPool,
			values: map[string]string{"name": `a\b$c`},
			want:   `where name="a\\b\$c"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := tt.kind.NewKey(tt.values)
			if err != nil {
				t.Fatalf("NewKey() error = %v", err)
			}
			got, err := BuildFilter(key)
			if err != nil {
				t.Fatalf("BuildFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildFilter() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildFilter_Deterministic(t *testing.T) {
	values := map[string]string{"address": "10.0.0.1/24", "interface": "bridge"}
	var first Filter
	for i := 0; i < 20; i++ {
		key, err := IPAddress.NewKey(values)
		if err != nil {
			t.Fatalf("NewKey() error = %v", err)
		}
		f, err := BuildFilter(key)
		if err != nil {
			t.Fatalf("BuildFilter() error = %v", err)
		}
		if i == 0 {
			first = f
			continue
		}
		if f != first {
			t.Fatalf("BuildFilter() not deterministic: %s vs %s", f, first)
		}
	}
}

func TestBuildFilter_ZeroKey(t *testing.T) {
	if _, err := BuildFilter(Key{}); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("BuildFilter(zero) error = %v, want validation error", err)
	}
}

func TestNewKey_Validation(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		values  map[string]string
		wantMsg string
	}{
		{"missing interface", IPAddress, map[string]string{"address": "10.0.0.1"}, "interface is required"},
		{"empty address", IPAddress, map[string]string{"address": "", "interface": "ether1"}, "address is required"},
		{"double quote", IPPool, map[string]string{"name": `evil"pool`}, "double quotes"},
		{"newline injection", IPPool, map[string]string{"name": "p\n/system reboot"}, "control characters"},
		{"unknown field", IPPool, map[string]string{"name": "p", "comment": "x"}, "unknown field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.kind.NewKey(tt.values)
			if !errors.Is(err, util.ErrValidationFailed) {
				t.Fatalf("NewKey() error = %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("NewKey() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestSpec_CreateArgs(t *testing.T) {
	t.Run("ip address", func(t *testing.T) {
		spec, err := IPAddress.NewSpec(map[string]string{"address": "192.168.88.77", "interface": "ether1"})
		if err != nil {
			t.Fatalf("NewSpec() error = %v", err)
		}
		got, err := spec.CreateArgs()
		if err != nil {
			t.Fatalf("CreateArgs() error = %v", err)
		}
		if got != "address=192.168.88.77 interface=ether1" {
			t.Errorf("CreateArgs() = %q", got)
		}
	})

	t.Run("ip pool ranges first", func(t *testing.T) {
		spec, err := IPPool.NewSpec(map[string]string{"name": "dhcp-pool", "ranges": "192.168.88.10-192.168.88.100"})
		if err != nil {
			t.Fatalf("NewSpec() error = %v", err)
		}
		got, err := spec.CreateArgs()
		if err != nil {
			t.Fatalf("CreateArgs() error = %v", err)
		}
		if got != "ranges=192.168.88.10-192.168.88.100 name=dhcp-pool" {
			t.Errorf("CreateArgs() = %q", got)
		}
	})

	t.Run("value needing quotes", func(t *testing.T) {
		spec, err := IPPool.NewSpec(map[string]string{"name": "guest pool", "ranges": "10.0.0.2-10.0.0.9"})
		if err != nil {
			t.Fatalf("NewSpec() error = %v", err)
		}
		got, _ := spec.CreateArgs()
		if got != `ranges=10.0.0.2-10.0.0.9 name="guest pool"` {
			t.Errorf("CreateArgs() = %q", got)
		}
	})

	t.Run("missing ranges", func(t *testing.T) {
		spec, err := IPPool.NewSpec(map[string]string{"name": "dhcp-pool"})
		if err != nil {
			t.Fatalf("NewSpec() should accept missing creation attributes: %v", err)
		}
		if _, err := spec.CreateArgs(); !errors.Is(err, util.ErrValidationFailed) {
			t.Errorf("CreateArgs() error = %v, want validation error", err)
		}
	})
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{"", StatePresent, false},
		{"present", StatePresent, false},
		{"Absent", StateAbsent, false},
		{" enabled ", StateEnabled, false},
		{"disabled", StateDisabled, false},
		{"gone", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseState(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseState(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLookupKind(t *testing.T) {
	if k, ok := LookupKind("IP-Pool"); !ok || k.Prefix != "/ip pool" {
		t.Errorf("LookupKind(IP-Pool) = %+v, %v", k, ok)
	}
	if _, ok := LookupKind("firewall"); ok {
		t.Error("LookupKind(firewall) should fail")
	}
	if got := strings.Join(KindNames(), ","); got != "ip-address,ip-pool" {
		t.Errorf("KindNames() = %s", got)
	}
}

func TestKinds_CreateOrderCoversFields(t *testing.T) {
	for _, name := range KindNames() {
		k, _ := LookupKind(name)
		seen := map[string]int{}
		for _, f := range k.CreateOrder {
			seen[f]++
		}
		for _, f := range k.Fields() {
			if seen[f] != 1 {
				t.Errorf("%s: field %q appears %d times in CreateOrder", name, f, seen[f])
			}
		}
		if len(k.CreateOrder) != len(k.Fields()) {
			t.Errorf("%s: CreateOrder has %d fields, want %d", name, len(k.CreateOrder), len(k.Fields()))
		}
	}
}
