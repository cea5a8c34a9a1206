// Package entry describes the keyed configuration entries rosctl manages and
// builds the device lookup filters that select them.
//
// A Kind is pure configuration: the command context prefix, the ordered
// natural key fields, and any creation-only attributes. Adding an entry type
// means adding a Kind value, not code.
package entry

import (
	"sort"
	"strings"
)

// Kind describes one entry type on the device.
type Kind struct {
	// Name is the CLI and inventory name, e.g. "ip-address".
	Name string
	// Prefix is the command context shared by every command for this kind.
	Prefix string
	// KeyFields is the natural key in the order the device accepts it in a
	// multi-field where clause.
	KeyFields []string
	// CreateFields are attributes needed only by "add".
	CreateFields []string
	// CreateOrder is the order of key=value pairs in the "add" command. It
	// holds every key and creation field exactly once.
	CreateOrder []string
}

// IPAddress manages "/ip address" bindings keyed by address and interface.
var IPAddress = Kind{
	Name:        "ip-address",
	Prefix:      "/ip address",
	KeyFields:   []string{"address", "interface"},
	CreateOrder: []string{"address", "interface"},
}

// IPPool manages "/ip pool" definitions keyed by name.
var IPPool = Kind{
	Name:         "ip-pool",
	Prefix:       "/ip pool",
	KeyFields:    []string{"name"},
	CreateFields: []string{"ranges"},
	CreateOrder:  []string{"ranges", "name"},
}

var kinds = map[string]Kind{
	IPAddress.Name: IPAddress,
	IPPool.Name:    IPPool,
}

// LookupKind returns the kind registered under name.
func LookupKind(name string) (Kind, bool) {
	k, ok := kinds[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// KindNames returns the registered kind names, sorted.
func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns the key fields followed by the creation-only fields.
func (k Kind) Fields() []string {
	out := make([]string, 0, len(k.KeyFields)+len(k.CreateFields))
	out = append(out, k.KeyFields...)
	return append(out, k.CreateFields...)
}

func (k Kind) isKeyField(name string) bool {
	for _, f := range k.KeyFields {
		if f == name {
			return true
		}
	}
	return false
}

func (k Kind) isCreateField(name string) bool {
	for _, f := range k.CreateFields {
		if f == name {
			return true
		}
	}
	return false
}
