// Package cache holds the in-process caches used to keep dashboard
// aggregates warm between writes.
package cache

import (
	"context"
	"time"

	"carteira/internal/log"
)

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// DeletePrefix drops every key starting with prefix and returns how
	// many were removed.
	DeletePrefix(prefix string) int
	Len() int
}

// Sweeper is implemented by caches that can drop expired entries.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps registered caches.
type Janitor struct {
	caches []Sweeper
	logger *log.Logger
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor(logger *log.Logger) *Janitor {
	if logger == nil {
		logger = log.Discard()
	}
	return &Janitor{
		logger: logger.WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register must be called before Start.
func (j *Janitor) Register(c Sweeper) {
	j.caches = append(j.caches, c)
}

func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			swept := 0
			for _, c := range j.caches {
				swept += c.Sweep()
			}
			if swept > 0 {
				j.logger.DebugContext(context.Background(), "Swept expired cache entries", log.FieldCount, swept)
			}
		case <-j.stop:
			return
		}
	}
}

// Stop waits for the sweep goroutine to exit. Safe to call once.
func (j *Janitor) Stop() {
	select {
	case <-j.stop:
		return
	default:
	}
	close(j.stop)
	<-j.done
}
