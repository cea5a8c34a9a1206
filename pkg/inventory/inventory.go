// Package inventory loads the YAML device inventory and task files.
//
// An inventory names the devices rosctl can reach:
//
//	defaults:
//	  user: admin
//	  port: 22
//	devices:
//	  core-rtr1:
//	    host: 192.0.2.1
//	    password_env: CORE_RTR1_PASSWORD
//	  edge-rtr2:
//	    host: 192.0.2.2
//	    key_file: ~/.ssh/id_ed25519
//
// A task file lists single-entry reconciliations; see TaskFile.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/rosctl/pkg/device"
	"github.com/newtron-network/rosctl/pkg/util"
)

// Device is one inventory entry. Empty fields fall back to Defaults.
type Device struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port,omitempty"`
	User            string        `yaml:"user,omitempty"`
	Password        string        `yaml:"password,omitempty"`
	PasswordEnv     string        `yaml:"password_env,omitempty"`
	KeyFile         string        `yaml:"key_file,omitempty"`
	KnownHostsFile  string        `yaml:"known_hosts_file,omitempty"`
	InsecureHostKey bool          `yaml:"insecure_host_key,omitempty"`
	DialTimeout     time.Duration `yaml:"dial_timeout,omitempty"`
	CommandTimeout  time.Duration `yaml:"command_timeout,omitempty"`
}

// Inventory is a parsed inventory file.
type Inventory struct {
	Defaults Device             `yaml:"defaults"`
	Devices  map[string]*Device `yaml:"devices"`
}

// Load reads and validates an inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", path, err)
	}
	inv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", path, err)
	}
	return inv, nil
}

// Parse decodes and validates inventory YAML.
func Parse(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	if err := inv.validate(); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (inv *Inventory) validate() error {
	vb := &util.ValidationBuilder{}
	for _, name := range inv.Names() {
		d := inv.Devices[name]
		if d == nil {
			vb.AddErrorf("device %s: empty definition", name)
			continue
		}
		vb.Add(d.Host != "", fmt.Sprintf("device %s: host is required", name))
		vb.Add(d.Port >= 0 && d.Port <= 65535, fmt.Sprintf("device %s: port %d out of range", name, d.Port))
		vb.Add(d.Password == "" || d.PasswordEnv == "", fmt.Sprintf("device %s: password and password_env are exclusive", name))
	}
	return vb.Build()
}

// Names returns the device names, sorted.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Devices))
	for n := range inv.Devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Device returns the named device merged with the inventory defaults.
func (inv *Inventory) Device(name string) (*Device, error) {
	d, ok := inv.Devices[name]
	if !ok || d == nil {
		return nil, fmt.Errorf("device %q: %w", name, util.ErrNotFound)
	}
	merged := *d
	def := inv.Defaults
	if merged.Port == 0 {
		merged.Port = def.Port
	}
	if merged.User == "" {
		merged.User = def.User
	}
	if merged.Password == "" && merged.PasswordEnv == "" {
		merged.Password = def.Password
		merged.PasswordEnv = def.PasswordEnv
	}
	if merged.KeyFile == "" {
		merged.KeyFile = def.KeyFile
	}
	if merged.KnownHostsFile == "" {
		merged.KnownHostsFile = def.KnownHostsFile
	}
	if !merged.InsecureHostKey {
		merged.InsecureHostKey = def.InsecureHostKey
	}
	if merged.DialTimeout == 0 {
		merged.DialTimeout = def.DialTimeout
	}
	if merged.CommandTimeout == 0 {
		merged.CommandTimeout = def.CommandTimeout
	}
	return &merged, nil
}

// Config converts the device to a dial config. The password is read from
// PasswordEnv when set. No auth is not an error here; the caller may prompt.
func (d *Device) Config(name string) device.Config {
	password := d.Password
	if d.PasswordEnv != "" {
		password = os.Getenv(d.PasswordEnv)
	}
	return device.Config{
		Name:                  name,
		Host:                  d.Host,
		Port:                  d.Port,
		User:                  d.User,
		Password:              password,
		KeyFile:               expandHome(d.KeyFile),
		KnownHostsFile:        expandHome(d.KnownHostsFile),
		InsecureIgnoreHostKey: d.InsecureHostKey,
		DialTimeout:           d.DialTimeout,
		CommandTimeout:        d.CommandTimeout,
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
