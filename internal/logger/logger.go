// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
	mu    sync.RWMutex
)

// Init initializes the global logger for the given environment.
// For "production", it uses a JSON encoder. For "test", it discards output.
// Everything else gets a human-readable console encoder.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		switch env {
		case "production":
			base, err = zap.NewProduction()
		case "test":
			base = zap.NewNop()
		default:
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		Set(base)
	})
}

// Set replaces the global logger. Tests use it with zaptest/observer.
func Set(base *zap.Logger) {
	mu.Lock()
	sugar = base.Sugar()
	mu.Unlock()
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	mu.RLock()
	l := sugar
	mu.RUnlock()
	if l == nil {
		Init("development")
		mu.RLock()
		l = sugar
		mu.RUnlock()
	}
	return l
}

// Named returns a child of the global logger tagged with a component name.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
