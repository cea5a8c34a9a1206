// Package lock provides an advisory per-device lock in Redis.
//
// The lock only serializes rosctl invocations that share the same Redis. It
// does not stop other tools or operators from changing the device between
// the count query and the mutating command.
package lock

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/rosctl/pkg/util"
)

// DefaultTTL bounds how long a crashed holder can block a device.
const DefaultTTL = 60 * time.Second

// acquireScript sets the lock hash if absent. Returns 1 on success, 0 if
// another holder has it.
var acquireScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
	return 0
end
redis.call("HSET", key, "holder", ARGV[1], "acquired", ARGV[2])
redis.call("EXPIRE", key, tonumber(ARGV[3]))
return 1
`)

// releaseScript deletes the lock only for its holder. Returns 1 on success,
// 0 on holder mismatch, -1 if the key is gone.
var releaseScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 0 then
	return -1
end
if redis.call("HGET", key, "holder") ~= ARGV[1] then
	return 0
end
redis.call("DEL", key)
return 1
`)

// Locker acquires device locks.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	holder string
}

// New returns a Locker using client. A zero ttl means DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Locker{client: client, ttl: ttl, holder: Holder()}
}

// Dial returns a Locker backed by a new client for addr.
func Dial(addr string, ttl time.Duration) *Locker {
	return New(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

// Close closes the underlying client.
func (l *Locker) Close() error {
	return l.client.Close()
}

// Lock is a held device lock.
type Lock struct {
	locker *Locker
	device string
	holder string
}

func lockKey(device string) string {
	return "ROSCTL_LOCK|" + device
}

// Acquire takes the lock for device or returns util.ErrDeviceLocked.
func (l *Locker) Acquire(ctx context.Context, device string) (*Lock, error) {
	secs := int(l.ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	now := time.Now().UTC().Format(time.RFC3339)

	n, err := acquireScript.Run(ctx, l.client, []string{lockKey(device)}, l.holder, now, strconv.Itoa(secs)).Int()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock for %s: %w", device, err)
	}
	if n == 0 {
		holder, _, err := l.HolderOf(ctx, device)
		if err != nil || holder == "" {
			holder = "another holder"
		}
		return nil, fmt.Errorf("%s held by %s: %w", device, holder, util.ErrDeviceLocked)
	}
	util.WithDevice(device).Debugf("lock acquired by %s", l.holder)
	return &Lock{locker: l, device: device, holder: l.holder}, nil
}

// HolderOf reports who holds the lock for device and since when. An empty
// holder means unlocked.
func (l *Locker) HolderOf(ctx context.Context, device string) (string, time.Time, error) {
	vals, err := l.client.HGetAll(ctx, lockKey(device)).Result()
	if err != nil {
		return "", time.Time{}, err
	}
	acquired, _ := time.Parse(time.RFC3339, vals["acquired"])
	return vals["holder"], acquired, nil
}

// Release drops the lock. Releasing an expired lock is not an error.
func (k *Lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, k.locker.client, []string{lockKey(k.device)}, k.holder).Int()
	if err != nil {
		return fmt.Errorf("releasing lock for %s: %w", k.device, err)
	}
	if n == 0 {
		return fmt.Errorf("lock holder mismatch for %s", k.device)
	}
	util.WithDevice(k.device).Debug("lock released")
	return nil
}

// Holder identifies this process as "user@hostname:pid".
func Holder() string {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	hostname := "unknown"
	if h, err := os.Hostname(); err == nil {
		hostname = h
	}
	return fmt.Sprintf("%s@%s:%d", username, hostname, os.Getpid())
}
