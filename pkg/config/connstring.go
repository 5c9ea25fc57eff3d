// config/connstring.go
package config

import (
	"errors"
	"sync"
)

// ErrNotInitialized is returned when the connection configuration is read
// before startup has written it. Readers must never see a silent default.
var ErrNotInitialized = errors.New("connection configuration not initialized")

// ErrAlreadyInitialized is returned on a second Set; the value is written
// exactly once during startup and read-only afterwards.
var ErrAlreadyInitialized = errors.New("connection configuration already initialized")

// ConnString is the write-once connection configuration handle. It is
// constructed empty, written exactly once before any request is served, and
// then safe for unlimited concurrent readers.
type ConnString struct {
	mu  sync.RWMutex
	dsn string
	set bool
}

func NewConnString() *ConnString { return &ConnString{} }

// Set initializes the value. Empty DSNs are rejected so a missing
// DATABASE_URL fails startup instead of surfacing later as a dial error.
func (c *ConnString) Set(dsn string) error {
	if dsn == "" {
		return errors.New("connection configuration is empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set {
		return ErrAlreadyInitialized
	}
	c.dsn = dsn
	c.set = true
	return nil
}

// Get returns the DSN, or ErrNotInitialized when startup has not written it.
func (c *ConnString) Get() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set {
		return "", ErrNotInitialized
	}
	return c.dsn, nil
}
