// Package memory provides a config.Config whose value is held in memory.
package memory

import (
	"context"
	"sync"

	"github.com/code-payments/metaplex-go/pkg/config"
)

// Config holds a fixed value for production defaults, and a value that tests
// can change, or make fail, between calls.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

// NewConfig returns a config holding value. A nil value means no value is set.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements config.Config.Get.
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil:
		return nil, config.ErrNoValue
	default:
		return c.value, nil
	}
}

// Shutdown implements config.Config.Shutdown.
func (c *Config) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shutdown = true
}

// Set replaces the value. Setting nil makes Get return config.ErrNoValue.
func (c *Config) Set(value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
}

// SetError makes Get fail with err until it is cleared with a nil err.
func (c *Config) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.err = err
}
