// Package device provides the SSH command channel to a RouterOS device.
package device

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/newtron-network/rosctl/pkg/util"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
)

// Config describes how to reach one device.
type Config struct {
	Name     string
	Host     string
	Port     int
	User     string
	Password string
	KeyFile  string

	// KnownHostsFile defaults to ~/.ssh/known_hosts.
	KnownHostsFile string
	// InsecureIgnoreHostKey skips host key verification. Lab use only.
	InsecureIgnoreHostKey bool

	DialTimeout    time.Duration
	CommandTimeout time.Duration
}

// Addr returns host:port.
func (c *Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Validate checks that the config can be dialed.
func (c *Config) Validate() error {
	return (&util.ValidationBuilder{}).
		Add(c.Host != "", "device host is required").
		Add(c.User != "", "device user is required").
		Add(c.Password != "" || c.KeyFile != "", "device password or key file is required").
		Add(c.Port >= 0 && c.Port <= 65535, fmt.Sprintf("device port %d out of range", c.Port)).
		Build()
}

// SSHExecutor runs device commands over one SSH connection, one session per
// command.
type SSHExecutor struct {
	name    string
	client  *ssh.Client
	timeout time.Duration
	mu      sync.Mutex
	closed  bool
}

// Dial connects and authenticates to the device. Failures are returned as
// *util.TransportError.
func Dial(ctx context.Context, cfg Config) (*SSHExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sshCfg, err := clientConfig(&cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}
	sshCfg.Timeout = timeout

	addr := cfg.Addr()
	name := cfg.Name
	if name == "" {
		name = cfg.Host
	}
	util.WithDevice(name).Debugf("dialing %s as %s", addr, cfg.User)

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, util.NewTransportError("", fmt.Errorf("SSH dial %s: %w", addr, err))
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return nil, util.NewTransportError("", fmt.Errorf("SSH handshake %s: %w", addr, err))
	}
	conn.SetDeadline(time.Time{})

	return &SSHExecutor{
		name:    name,
		client:  ssh.NewClient(c, chans, reqs),
		timeout: cfg.CommandTimeout,
	}, nil
}

func clientConfig(cfg *Config) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parsing key file %s: %w", cfg.KeyFile, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}

	hostKey, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
	}, nil
}

func hostKeyCallback(cfg *Config) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		util.WithDevice(cfg.Host).Warn("host key verification disabled")
		return ssh.InsecureIgnoreHostKey(), nil
	}
	path := cfg.KnownHostsFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts %s: %w", path, err)
	}
	return cb, nil
}

// Execute runs command in a fresh session and returns its output lines.
// A non-zero exit status is not an error: whatever the device printed is
// returned for the caller to classify.
func (e *SSHExecutor) Execute(ctx context.Context, command string) ([]string, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, util.ErrNotConnected
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	session, err := e.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	log := util.WithDevice(e.name)
	log.Debugf("exec: %s", command)

	type reply struct {
		out []byte
		err error
	}
	done := make(chan reply, 1)
	go func() {
		out, err := session.CombinedOutput(command)
		done <- reply{out, err}
	}()

	select {
	case <-ctx.Done():
		session.Close()
		return nil, ctx.Err()
	case r := <-done:
		var exitErr *ssh.ExitError
		var missing *ssh.ExitMissingError
		switch {
		case r.err == nil:
		case errors.As(r.err, &exitErr):
			log.Debugf("exit status %d", exitErr.ExitStatus())
		case errors.As(r.err, &missing):
		default:
			return nil, fmt.Errorf("SSH exec: %w", r.err)
		}
		return SplitOutput(string(r.out)), nil
	}
}

// Close ends the SSH connection.
func (e *SSHExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.client.Close()
}

// SplitOutput normalizes CRLF, drops trailing blank lines and splits on
// newlines. Empty output yields an empty, non-nil slice.
func SplitOutput(out string) []string {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.TrimRight(out, "\r\n \t")
	if out == "" {
		return []string{}
	}
	return strings.Split(out, "\n")
}
