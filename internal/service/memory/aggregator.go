package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/pkg/log"
)

type Source string

const (
	SourceKeyword Source = "keyword"
	SourceRecent  Source = "recent"
	SourceNone    Source = "none"
	SourceTimeout Source = "timeout"
)

// Recall is what memory produced for one message. Snippet is always set:
// without a usable record it holds core.NoContext.
type Recall struct {
	Snippet string
	Source  Source
	// Degraded is set when the deadline fired or a lookup failed for a reason
	// other than an empty result.
	Degraded bool
	Elapsed  time.Duration
}

type branchResult struct {
	snippet string
	err     error
}

type Aggregator struct {
	store     core.ContextStore
	deadline  time.Duration
	maxTokens int
}

func NewAggregator(store core.ContextStore, cfg *config.MemoryConfig) *Aggregator {
	return &Aggregator{
		store:     store,
		deadline:  cfg.Deadline,
		maxTokens: cfg.MaxTokens,
	}
}

// Recall runs the keyword and recency lookups side by side and waits for both,
// never longer than the aggregator deadline. Lookups still running when the
// deadline fires are abandoned.
func (a *Aggregator) Recall(ctx context.Context, message, userID string) Recall {
	start := time.Now()
	logger := log.FromCtx(ctx)

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	var keyword, recent branchResult
	var g errgroup.Group
	g.Go(func() error {
		keyword = a.run(ctx, func(ctx context.Context) (string, error) {
			if strings.TrimSpace(message) == "" {
				return "", core.ErrNoContext
			}
			return a.store.KeywordLookup(ctx, message, userID)
		})
		return nil
	})
	g.Go(func() error {
		recent = a.run(ctx, func(ctx context.Context) (string, error) {
			return a.store.RecentLookup(ctx, userID)
		})
		return nil
	})

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r := Recall{Snippet: core.NoContext, Source: SourceTimeout, Degraded: true, Elapsed: time.Since(start)}
		logger.Warn().Dur("elapsed", r.Elapsed).Msg("memory lookup hit deadline, replying without context")
		return r
	}

	r := Recall{Snippet: core.NoContext, Source: SourceNone, Elapsed: time.Since(start)}
	switch {
	case keyword.err == nil && keyword.snippet != "":
		r.Snippet, r.Source = keyword.snippet, SourceKeyword
	case recent.err == nil && recent.snippet != "":
		r.Snippet, r.Source = recent.snippet, SourceRecent
	}
	r.Degraded = failed(keyword.err) || failed(recent.err)
	r.Snippet = trimTokens(r.Snippet, a.maxTokens)

	ev := logger.Debug()
	if r.Degraded {
		ev = logger.Warn().AnErr("keyword_err", keyword.err).AnErr("recent_err", recent.err)
	}
	ev.Str("source", string(r.Source)).Dur("elapsed", r.Elapsed).Msg("memory lookup finished")

	return r
}

func (a *Aggregator) run(ctx context.Context, lookup func(context.Context) (string, error)) (res branchResult) {
	defer func() {
		if p := recover(); p != nil {
			res = branchResult{err: fmt.Errorf("lookup panicked: %v", p)}
		}
	}()
	snippet, err := lookup(ctx)
	return branchResult{snippet: strings.TrimSpace(snippet), err: err}
}

func failed(err error) bool {
	return err != nil && !errors.Is(err, core.ErrNoContext)
}
