package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"sync"

	"golang.org/x/term"

	"github.com/newtron-network/rosctl/pkg/device"
	"github.com/newtron-network/rosctl/pkg/inventory"
	"github.com/newtron-network/rosctl/pkg/lock"
	"github.com/newtron-network/rosctl/pkg/runner"
	"github.com/newtron-network/rosctl/pkg/settings"
	"github.com/newtron-network/rosctl/pkg/util"
)

// connector resolves device names to dial configs and opens sessions.
type connector struct {
	inv      *inventory.Inventory
	settings *settings.Settings
	prompt   func(name, login string) (string, error)

	mu        sync.Mutex
	passwords map[string]string
}

func newConnector(s *settings.Settings) (*connector, error) {
	c := &connector{
		settings:  s,
		prompt:    promptPassword,
		passwords: make(map[string]string),
	}
	if inventoryPath != "" {
		inv, err := inventory.Load(inventoryPath)
		if err != nil {
			return nil, err
		}
		c.inv = inv
	}
	return c, nil
}

// config returns the dial config for name. Without an inventory the name is
// used as the host.
func (c *connector) config(name string) (device.Config, error) {
	var cfg device.Config
	if c.inv != nil {
		d, err := c.inv.Device(name)
		if err != nil {
			return device.Config{}, err
		}
		cfg = d.Config(name)
	} else {
		cfg = device.Config{Name: name, Host: name}
	}

	s := c.settings
	if cfg.User == "" {
		cfg.User = s.DefaultUser
	}
	if cfg.Port == 0 {
		cfg.Port = s.Port
	}
	if cfg.KnownHostsFile == "" {
		cfg.KnownHostsFile = s.KnownHostsFile
	}
	if s.InsecureHostKey {
		cfg.InsecureIgnoreHostKey = true
	}

	if cfg.Password == "" && cfg.KeyFile == "" && cfg.User != "" {
		pw, err := c.password(name, cfg.User)
		if err != nil {
			return device.Config{}, err
		}
		cfg.Password = pw
	}
	return cfg, nil
}

// password prompts once per device and remembers the answer.
func (c *connector) password(name, login string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pw, ok := c.passwords[name]; ok {
		return pw, nil
	}
	pw, err := c.prompt(name, login)
	if err != nil {
		return "", err
	}
	c.passwords[name] = pw
	return pw, nil
}

func (c *connector) dial(ctx context.Context, name string) (runner.Session, error) {
	cfg, err := c.config(name)
	if err != nil {
		return nil, err
	}
	ex, err := device.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return ex, nil
}

func promptPassword(name, login string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s: no password or key file for %s and stdin is not a terminal: %w", name, login, util.ErrInvalidConfig)
	}
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", login, name)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// newRunner wires a runner with the connector, the audit log and, when a
// Redis address is configured and changes will be executed, the device lock.
// The returned cleanup must be called.
func newRunner(keepGoing bool) (*runner.Runner, func(), error) {
	conn, err := newConnector(userSettings)
	if err != nil {
		return nil, nil, err
	}

	r := runner.New(conn.dial, runner.Options{
		DryRun:    !executeMode,
		KeepGoing: keepGoing,
		User:      currentUser(),
	})
	if auditLogger != nil {
		r.WithAudit(auditLogger)
	}

	cleanup := func() {}
	if userSettings.RedisAddr != "" && executeMode {
		locker := lock.Dial(userSettings.RedisAddr, userSettings.GetLockTTL())
		r.WithLocker(locker)
		cleanup = func() { locker.Close() }
	}
	return r, cleanup, nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
