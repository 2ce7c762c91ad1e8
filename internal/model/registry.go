package model

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/sherajsharif/crop-disease-Api/internal/metrics"
)

// DefaultLoadAttempts bounds the startup load loop.
const DefaultLoadAttempts = 3

type State int32

const (
	Unloaded State = iota
	Loaded
	FailedPermanently
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case FailedPermanently:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// OpenFunc builds a Classifier from a model file.
type OpenFunc func(path string) (Classifier, error)

type Option func(*Registry)

// WithAttempts sets how many times Load and Reload try to open the model.
func WithAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithBackOff overrides the delay policy between load attempts.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(r *Registry) {
		r.newBackOff = newBackOff
	}
}

// Registry owns the loaded classifier and its lifecycle. Requests read the
// classifier concurrently; only Reload and Close take the write lock.
type Registry struct {
	open       OpenFunc
	path       string
	attempts   int
	newBackOff func() backoff.BackOff
	logger     *zap.Logger

	state      atomic.Int32
	mu         sync.RWMutex
	classifier Classifier
	loadMu     sync.Mutex
}

func NewRegistry(open OpenFunc, path string, logger *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		open:     open,
		path:     path,
		attempts: DefaultLoadAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
		logger: logger.Named("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load opens the model with bounded retries. On exhaustion the last error is
// returned and, unless a classifier is already loaded, the registry moves to
// FailedPermanently; the caller keeps serving in degraded mode.
func (r *Registry) Load(ctx context.Context) error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	c, err := r.openWithRetry(ctx)
	if err != nil {
		if r.State() != Loaded {
			r.state.Store(int32(FailedPermanently))
		}
		r.logger.Error("model unavailable after all attempts",
			zap.String("path", r.path), zap.Int("attempts", r.attempts), zap.Error(err))
		return err
	}

	r.swap(c)
	return nil
}

// Reload opens the model again and swaps it in. A failed reload keeps the
// previously loaded classifier, if any.
func (r *Registry) Reload(ctx context.Context) error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	c, err := r.openWithRetry(ctx)
	if err != nil {
		if r.State() != Loaded {
			r.state.Store(int32(FailedPermanently))
		}
		r.logger.Error("model reload failed", zap.String("path", r.path), zap.Error(err))
		return err
	}

	r.swap(c)
	return nil
}

func (r *Registry) openWithRetry(ctx context.Context) (Classifier, error) {
	var (
		c       Classifier
		attempt int
	)

	op := func() error {
		attempt++
		loaded, err := r.open(r.path)
		if err != nil {
			metrics.ModelLoadAttempts.WithLabelValues("failure").Inc()
			r.logger.Warn("model load attempt failed",
				zap.Int("attempt", attempt), zap.Int("max_attempts", r.attempts), zap.Error(err))
			return err
		}
		metrics.ModelLoadAttempts.WithLabelValues("success").Inc()
		c = loaded
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.attempts-1)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}

	r.logger.Info("model loaded", zap.String("path", r.path), zap.Int("attempt", attempt))
	return c, nil
}

func (r *Registry) swap(c Classifier) {
	r.mu.Lock()
	old := r.classifier
	r.classifier = c
	r.state.Store(int32(Loaded))
	r.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			r.logger.Warn("failed to close previous classifier", zap.Error(err))
		}
	}
}

func (r *Registry) State() State {
	return State(r.state.Load())
}

func (r *Registry) Loaded() bool {
	return r.State() == Loaded
}

// Classify runs t through the current classifier.
func (r *Registry) Classify(t *Tensor) (Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.classifier == nil {
		return Prediction{}, ErrNotLoaded
	}
	return Classify(t, r.classifier)
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.classifier == nil {
		return nil
	}
	err := r.classifier.Close()
	r.classifier = nil
	r.state.Store(int32(Unloaded))
	return err
}
