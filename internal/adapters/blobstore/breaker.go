package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Default breaker configuration constants.
const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
	defaultBreakerName      = "blobstore"
)

// BreakerOption applies a configuration option to the Breaker.
type BreakerOption func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
func WithFailureThreshold(n uint32) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithOpenTimeout sets how long the circuit stays open before probing.
func WithOpenTimeout(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithBreakerLogger sets the logger for state changes.
func WithBreakerLogger(l logger.Logger) BreakerOption {
	return func(b *Breaker) {
		if l != nil {
			b.log = l
		}
	}
}

// Breaker decorates a store with a circuit breaker and store metrics. While
// the circuit is open calls fail fast with ErrUnavailable.
type Breaker struct {
	inner     BlobStore
	driver    string
	threshold uint32
	timeout   time.Duration
	log       logger.Logger
	cb        *gobreaker.CircuitBreaker[interface{}]
}

type getResult struct {
	val   []byte
	found bool
}

// NewBreaker wraps inner. driver labels the store metrics.
func NewBreaker(inner BlobStore, driver string, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		inner:     inner,
		driver:    driver,
		threshold: defaultFailureThreshold,
		timeout:   defaultOpenTimeout,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.cb = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        defaultBreakerName,
		MaxRequests: 1,
		Timeout:     b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrInvalidKey)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, int(to))
			b.log.Warn(context.Background(), "blob store breaker changed state",
				logger.String("driver", b.driver),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateBreakerState(defaultBreakerName, int(gobreaker.StateClosed))
	return b
}

// Unwrap returns the decorated store.
func (b *Breaker) Unwrap() BlobStore { return b.inner }

// State returns the breaker state name.
func (b *Breaker) State() string { return b.cb.State().String() }

func (b *Breaker) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	out, err := b.cb.Execute(fn)
	metrics.RecordStoreOperation(b.driver, op, float64(time.Since(start).Microseconds())/1000, err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, err
}

func (b *Breaker) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := b.execute("get", func() (interface{}, error) {
		val, found, err := b.inner.Get(ctx, key)
		return getResult{val: val, found: found}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := out.(getResult)
	return r.val, r.found, nil
}

func (b *Breaker) Set(ctx context.Context, key string, val []byte) error {
	_, err := b.execute("set", func() (interface{}, error) {
		return nil, b.inner.Set(ctx, key, val)
	})
	return err
}

// SetAll forwards to the decorated store when it can batch.
func (b *Breaker) SetAll(ctx context.Context, blobs map[string][]byte) error {
	batcher, ok := b.inner.(Batcher)
	if !ok {
		return ErrBatchUnsupported
	}
	_, err := b.execute("set_all", func() (interface{}, error) {
		return nil, batcher.SetAll(ctx, blobs)
	})
	return err
}

func (b *Breaker) Close() error {
	return b.inner.Close()
}
