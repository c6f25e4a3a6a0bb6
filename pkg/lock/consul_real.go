//go:build consul

package lock

import (
	"time"

	consulapi "github.com/hashicorp/consul/api"
)

// ConsulLocker takes a short-lease session lock in Consul KV so that
// only one server instance runs the sweep at a time.
type ConsulLocker struct {
	cli *consulapi.Client
	key string
	ttl time.Duration
}

// NewConsulLocker connects to Consul at addr and locks key with the
// given session TTL.
func NewConsulLocker(addr, key string, ttl time.Duration) (*ConsulLocker, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ConsulLocker{cli: cli, key: key, ttl: ttl}, nil
}

func (l *ConsulLocker) TryAcquire() (func(), bool) {
	opts := &consulapi.LockOptions{
		Key:          l.key,
		SessionTTL:   l.ttl.String(),
		LockTryOnce:  true,
		LockWaitTime: time.Second,
	}
	lock, err := l.cli.LockOpts(opts)
	if err != nil {
		return nil, false
	}
	ch, err := lock.Lock(nil)
	if err != nil || ch == nil {
		return nil, false
	}
	return func() { _ = lock.Unlock() }, true
}
