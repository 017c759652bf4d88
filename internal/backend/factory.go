// Package backend opens the store and event publisher a binary runs on.
package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"carteira/internal/amqp"
	"carteira/internal/log"
	"carteira/internal/ports"
	"carteira/internal/services"
	"carteira/internal/storage"
	"carteira/internal/storage/memory"
)

// CleanupFunc releases a resource opened by the factory.
type CleanupFunc func() error

// Result holds the opened store and, when AMQP is configured and
// reachable, the publisher. Publisher is a nil interface otherwise.
type Result struct {
	Store     ports.Store
	Publisher services.Publisher

	cleanups []CleanupFunc
	once     sync.Once
	err      error
}

// Close releases everything in reverse opening order. Later calls return
// the first result.
func (r *Result) Close() error {
	r.once.Do(func() {
		var errs []error
		for i := len(r.cleanups) - 1; i >= 0; i-- {
			if err := r.cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}
		r.err = errors.Join(errs...)
	})
	return r.err
}

type Factory struct {
	logger *log.Logger
	// dial is replaced in tests
	dial func(url, exchange, queue string) (*amqp.Client, error)
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{
		logger: logger.WithComponent(log.ComponentStorage),
		dial:   amqp.NewClient,
	}
}

// OpenStore opens the configured store.
func (f *Factory) OpenStore(ctx context.Context, cfg Config) (ports.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case MemoryBackend:
		f.logger.WarnContext(ctx, "Using in-memory store; data is lost on exit")
		return memory.New(), nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLiteDBPath, err)
		}
		f.logger.InfoContext(ctx, "Opened SQLite store", "path", cfg.SQLiteDBPath, "schema_version", repo.SchemaVersion())
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

// OpenPublisher connects to the broker. A missing URL or an unreachable
// broker yields a nil client; the app keeps running without exports.
func (f *Factory) OpenPublisher(ctx context.Context, cfg Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		f.logger.InfoContext(ctx, "AMQP disabled, transactions will not be exported")
		return nil
	}
	client, err := f.dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without exports", log.FieldError, err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

// Open opens the store and the optional publisher.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Result, error) {
	store, err := f.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{Store: store, cleanups: []CleanupFunc{store.Close}}

	// a nil *amqp.Client must not end up inside the Publisher interface
	if client := f.OpenPublisher(ctx, cfg); client != nil {
		res.Publisher = client
		res.cleanups = append(res.cleanups, client.Close)
	}
	return res, nil
}
