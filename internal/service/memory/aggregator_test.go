package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type branch struct {
	snippet string
	err     error
	delay   time.Duration
	panics  bool
}

type fakeStore struct {
	keyword branch
	recent  branch
}

func (f *fakeStore) answer(ctx context.Context, b branch) (string, error) {
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if b.panics {
		panic("boom")
	}
	return b.snippet, b.err
}

func (f *fakeStore) KeywordLookup(ctx context.Context, query, userID string) (string, error) {
	return f.answer(ctx, f.keyword)
}

func (f *fakeStore) RecentLookup(ctx context.Context, userID string) (string, error) {
	return f.answer(ctx, f.recent)
}

func (f *fakeStore) SaveTurn(context.Context, core.Turn) error { return nil }

func newAggregator(store core.ContextStore, deadline time.Duration) *Aggregator {
	return NewAggregator(store, &config.MemoryConfig{Deadline: deadline, MaxTokens: 200})
}

func TestAggregator_Recall(t *testing.T) {
	errNet := errors.New("connection reset")

	tests := []struct {
		name     string
		store    *fakeStore
		snippet  string
		source   Source
		degraded bool
	}{
		{
			name:    "keyword wins over recent",
			store:   &fakeStore{keyword: branch{snippet: "Past/History: k"}, recent: branch{snippet: "Recent/Context: r"}},
			snippet: "Past/History: k",
			source:  SourceKeyword,
		},
		{
			name:    "keyword wins even when it answers last",
			store:   &fakeStore{keyword: branch{snippet: "Past/History: k", delay: 50 * time.Millisecond}, recent: branch{snippet: "Recent/Context: r"}},
			snippet: "Past/History: k",
			source:  SourceKeyword,
		},
		{
			name:    "recent when keyword is empty",
			store:   &fakeStore{keyword: branch{err: core.ErrNoContext}, recent: branch{snippet: "Recent/Context: r"}},
			snippet: "Recent/Context: r",
			source:  SourceRecent,
		},
		{
			name:     "recent when keyword fails",
			store:    &fakeStore{keyword: branch{err: errNet}, recent: branch{snippet: "Recent/Context: r"}},
			snippet:  "Recent/Context: r",
			source:   SourceRecent,
			degraded: true,
		},
		{
			name:     "recent when keyword panics",
			store:    &fakeStore{keyword: branch{panics: true}, recent: branch{snippet: "Recent/Context: r"}},
			snippet:  "Recent/Context: r",
			source:   SourceRecent,
			degraded: true,
		},
		{
			name:    "sentinel when both are empty",
			store:   &fakeStore{keyword: branch{err: core.ErrNoContext}, recent: branch{err: core.ErrNoContext}},
			snippet: core.NoContext,
			source:  SourceNone,
		},
		{
			name:     "sentinel when both fail",
			store:    &fakeStore{keyword: branch{err: errNet}, recent: branch{panics: true}},
			snippet:  core.NoContext,
			source:   SourceNone,
			degraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newAggregator(tt.store, time.Second).Recall(context.Background(), "cafe", "U1")
			assert.Equal(t, tt.snippet, got.Snippet)
			assert.Equal(t, tt.source, got.Source)
			assert.Equal(t, tt.degraded, got.Degraded)
		})
	}
}

func TestAggregator_DeadlineBoundsWait(t *testing.T) {
	store := &fakeStore{
		keyword: branch{snippet: "Past/History: slow", delay: 5 * time.Second},
		recent:  branch{snippet: "Recent/Context: fast"},
	}
	deadline := 100 * time.Millisecond

	start := time.Now()
	got := newAggregator(store, deadline).Recall(context.Background(), "cafe", "U1")
	elapsed := time.Since(start)

	// One branch answered, but the wait is for both.
	assert.Equal(t, core.NoContext, got.Snippet)
	assert.Equal(t, SourceTimeout, got.Source)
	assert.True(t, got.Degraded)
	assert.GreaterOrEqual(t, elapsed, deadline)
	assert.Less(t, elapsed, deadline+400*time.Millisecond)
}

func TestAggregator_EmptyMessageSkipsKeyword(t *testing.T) {
	store := &fakeStore{keyword: branch{snippet: "Past/History: should not be used"}, recent: branch{snippet: "Recent/Context: r"}}

	got := newAggregator(store, time.Second).Recall(context.Background(), "   ", "U1")
	assert.Equal(t, SourceRecent, got.Source)
}

func TestAggregator_TrimsLongSnippet(t *testing.T) {
	long := "Recent/Context: " + strings.Repeat("brainstorm ", 2000)
	store := &fakeStore{keyword: branch{err: core.ErrNoContext}, recent: branch{snippet: long}}

	agg := NewAggregator(store, &config.MemoryConfig{Deadline: time.Second, MaxTokens: 20})
	got := agg.Recall(context.Background(), "x", "U1")

	require.Equal(t, SourceRecent, got.Source)
	assert.Less(t, len(got.Snippet), len(long))
	assert.True(t, strings.HasPrefix(got.Snippet, "Recent/Context:"))
	assert.True(t, strings.HasSuffix(got.Snippet, "…"))
}

func TestTrimTokens(t *testing.T) {
	assert.Equal(t, "short", trimTokens("short", 200))
	assert.Equal(t, "unchanged", trimTokens("unchanged", 0))

	thai := strings.Repeat("ไอเดียธุรกิจ ", 300)
	got := trimTokens(thai, 10)
	assert.Less(t, len(got), len(thai))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.True(t, strings.ToValidUTF8(got, "") == got)
}
