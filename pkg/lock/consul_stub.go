//go:build !consul

package lock

import (
	"log"
	"time"
)

// NewConsulLocker falls back to the in-process locker when the consul
// build tag is not enabled.
func NewConsulLocker(addr, key string, ttl time.Duration) (Locker, error) {
	log.Printf("consul lock requested (addr=%s key=%s) but consul build tag not enabled; using local lock", addr, key)
	return NewLocalLocker(), nil
}
