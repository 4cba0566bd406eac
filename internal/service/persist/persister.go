package persist

import (
	"context"
	"sync"
	"time"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/pkg/log"
)

// Persister writes turns to the context store off the request path.
// Delivery is at most once: a full queue or a failed write loses the turn.
type Persister struct {
	store   core.ContextStore
	queue   chan core.Turn
	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

func NewPersister(store core.ContextStore, cfg *config.PersistConfig) *Persister {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	size := cfg.QueueSize
	if size < 1 {
		size = 1
	}
	return &Persister{
		store:   store,
		queue:   make(chan core.Turn, size),
		workers: workers,
		timeout: cfg.Timeout,
	}
}

func (p *Persister) Start(ctx context.Context) error {
	p.once.Do(func() {
		base := context.WithoutCancel(ctx)
		log.FromCtx(ctx).Info().Int("workers", p.workers).Int("queue", cap(p.queue)).Msg("starting persister")
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.work(base)
		}
	})
	return nil
}

// Enqueue hands the turn to a worker without blocking. It reports false when
// the turn was dropped.
func (p *Persister) Enqueue(ctx context.Context, turn core.Turn) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	logger := log.FromCtx(ctx)
	if p.closed {
		logger.Warn().Str("user_id", turn.UserID).Msg("persister closed, turn dropped")
		return false
	}

	select {
	case p.queue <- turn:
		return true
	default:
		logger.Warn().Str("user_id", turn.UserID).Int("queue", cap(p.queue)).Msg("persist queue full, turn dropped")
		return false
	}
}

// Shutdown stops accepting turns and waits for the queued ones to be written.
func (p *Persister) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persister) work(ctx context.Context) {
	defer p.wg.Done()
	for turn := range p.queue {
		p.save(ctx, turn)
	}
}

func (p *Persister) save(ctx context.Context, turn core.Turn) {
	logger := log.FromCtx(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("user_id", turn.UserID).Msg("persist worker recovered")
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := p.store.SaveTurn(ctx, turn); err != nil {
		logger.Error().Err(err).Str("user_id", turn.UserID).Str("category", string(turn.Category)).Msg("failed to persist turn")
		return
	}
	logger.Debug().Str("user_id", turn.UserID).Dur("elapsed", time.Since(start)).Msg("turn persisted")
}
