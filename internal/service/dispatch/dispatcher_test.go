package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/internal/core/coretest"
	"github.com/ideapartner/ideapartner/internal/service/memory"
	"github.com/ideapartner/ideapartner/internal/service/persist"
	"github.com/ideapartner/ideapartner/internal/service/reply"
	"github.com/ideapartner/ideapartner/internal/service/vision"
)

type harness struct {
	store     *coretest.Store
	model     *coretest.Model
	persister *persist.Persister
	d         *Dispatcher
}

func newHarness(t *testing.T, modelOutput string) *harness {
	t.Helper()
	h := &harness{
		store: &coretest.Store{Recent: "Recent/Context: we talked about 'cafe' and I replied 'cool'"},
		model: &coretest.Model{Output: modelOutput},
	}
	h.persister = persist.NewPersister(h.store, &config.PersistConfig{Workers: 1, QueueSize: 8, Timeout: time.Second})
	require.NoError(t, h.persister.Start(context.Background()))
	t.Cleanup(func() { _ = h.persister.Shutdown(context.Background()) })

	h.d = NewDispatcher(
		memory.NewAggregator(h.store, &config.MemoryConfig{Deadline: time.Second, MaxTokens: 200}),
		reply.NewGenerator(h.model, ""),
		vision.NewHandler(h.model, ""),
		h.persister,
	)
	return h
}

// drain waits for every queued write to land.
func (h *harness) drain(t *testing.T) []core.Turn {
	t.Helper()
	require.NoError(t, h.persister.Shutdown(context.Background()))
	return h.store.Turns()
}

func textEvent(text string) core.Event {
	return core.Event{Kind: core.EventText, UserID: "U1", Text: text}
}

func TestHandleText_PersistsByCategory(t *testing.T) {
	tests := []struct {
		category string
		saved    int
	}{
		{"Business", 1},
		{"Productivity", 1},
		{"Self-Dev", 1},
		{"Finance", 1},
		{"", 1},
		{"Off-topic", 0},
		{"off-topic", 0},
	}

	for _, tt := range tests {
		t.Run("category "+tt.category, func(t *testing.T) {
			h := newHarness(t, `{"category":"`+tt.category+`","reply":"hey there"}`)
			ch := &coretest.Channel{}

			require.NoError(t, h.d.Dispatch(context.Background(), textEvent("open a cafe"), ch))
			assert.Equal(t, []string{"hey there"}, ch.Sent())

			turns := h.drain(t)
			require.Len(t, turns, tt.saved)
			if tt.saved == 1 {
				assert.Equal(t, "U1", turns[0].UserID)
				assert.Equal(t, "open a cafe", turns[0].Input)
				assert.Equal(t, "hey there", turns[0].Reply)
				assert.False(t, turns[0].Timestamp.IsZero())
			}
		})
	}
}

func TestHandleText_MemoryReachesPrompt(t *testing.T) {
	h := newHarness(t, `{"category":"Business","reply":"ok"}`)

	require.NoError(t, h.d.HandleText(context.Background(), textEvent("cafe"), &coretest.Channel{}))
	require.Equal(t, 1, h.model.Calls())
	assert.Contains(t, h.model.Prompts[0], "[Memory]\nRecent/Context: we talked about 'cafe'")
	assert.Contains(t, h.model.Prompts[0], "[Input]\ncafe")
}

func TestHandleText_RawFallback(t *testing.T) {
	h := newHarness(t, "not json at all")
	ch := &coretest.Channel{}

	require.NoError(t, h.d.HandleText(context.Background(), textEvent("hi"), ch))
	assert.Equal(t, []string{"not json at all"}, ch.Sent())

	turns := h.drain(t)
	require.Len(t, turns, 1)
	assert.Equal(t, core.CategoryGeneral, turns[0].Category)
}

func TestHandleText_ModelErrorSendsNothing(t *testing.T) {
	h := newHarness(t, "")
	h.model.Err = errors.New("quota")
	ch := &coretest.Channel{}

	err := h.d.HandleText(context.Background(), textEvent("hi"), ch)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ErrorModel, derr.Code)
	assert.Empty(t, ch.Sent())
	assert.Empty(t, h.drain(t))
}

func TestHandleText_ReplyFailureSkipsPersistence(t *testing.T) {
	h := newHarness(t, `{"category":"Business","reply":"ok"}`)
	ch := &coretest.Channel{ReplyErr: errors.New("invalid reply token")}

	err := h.d.HandleText(context.Background(), textEvent("hi"), ch)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ErrorPlatform, derr.Code)
	assert.Empty(t, h.drain(t))
}

func TestHandleText_ReplyDoesNotWaitForPersistence(t *testing.T) {
	h := newHarness(t, `{"category":"Business","reply":"ok"}`)
	h.store.SaveErr = errors.New("notion down")
	ch := &coretest.Channel{}

	require.NoError(t, h.d.HandleText(context.Background(), textEvent("hi"), ch))
	assert.Equal(t, []string{"ok"}, ch.Sent())
	assert.Len(t, h.drain(t), 1)
}

func TestHandleImage(t *testing.T) {
	h := newHarness(t, "สวยมากเพื่อน")
	ch := &coretest.Channel{Image: core.Image{Data: []byte{0xff, 0xd8, 0xff, 0xe0}}}

	ev := core.Event{Kind: core.EventImage, UserID: "U1", MessageID: "m1"}
	require.NoError(t, h.d.Dispatch(context.Background(), ev, ch))

	assert.Equal(t, []string{"สวยมากเพื่อน"}, ch.Sent())
	assert.Equal(t, []string{"m1"}, ch.Fetched)
	assert.Empty(t, h.drain(t))
}

func TestHandleImage_Apology(t *testing.T) {
	h := newHarness(t, "never used")
	ch := &coretest.Channel{FetchErr: errors.New("content expired")}

	ev := core.Event{Kind: core.EventImage, UserID: "U1", MessageID: "m1"}
	require.NoError(t, h.d.Dispatch(context.Background(), ev, ch))

	assert.Equal(t, []string{vision.Apology}, ch.Sent())
	assert.Zero(t, h.model.Calls())
}

func TestDispatch_IgnoresOtherKinds(t *testing.T) {
	h := newHarness(t, "x")
	ch := &coretest.Channel{}

	require.NoError(t, h.d.Dispatch(context.Background(), core.Event{Kind: "sticker", UserID: "U1"}, ch))
	assert.Empty(t, ch.Sent())
	assert.Zero(t, h.model.Calls())
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := newError(ErrorModel, "generate reply", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "dispatch: MODEL_ERROR (generate reply): boom", err.Error())
}
