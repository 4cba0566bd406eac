package dispatch

import (
	"context"
	"time"

	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/internal/service/memory"
	"github.com/ideapartner/ideapartner/internal/service/reply"
	"github.com/ideapartner/ideapartner/internal/service/vision"
	"github.com/ideapartner/ideapartner/pkg/log"
)

type Recaller interface {
	Recall(ctx context.Context, message, userID string) memory.Recall
}

type Replier interface {
	Generate(ctx context.Context, snippet, message string) (reply.Reply, error)
}

type Describer interface {
	Describe(ctx context.Context, ch core.Channel, messageID string) (string, error)
}

type Recorder interface {
	Enqueue(ctx context.Context, turn core.Turn) bool
}

// Dispatcher runs the text and image pipelines for inbound events.
type Dispatcher struct {
	memory   Recaller
	replier  Replier
	vision   Describer
	recorder Recorder
	now      func() time.Time
}

func NewDispatcher(recaller Recaller, replier Replier, describer Describer, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		memory:   recaller,
		replier:  replier,
		vision:   describer,
		recorder: recorder,
		now:      time.Now,
	}
}

// Dispatch routes ev to its pipeline. Kinds without a pipeline are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, ev core.Event, ch core.Channel) error {
	switch ev.Kind {
	case core.EventText:
		return d.HandleText(ctx, ev, ch)
	case core.EventImage:
		return d.HandleImage(ctx, ev, ch)
	default:
		log.FromCtx(ctx).Debug().Str("kind", string(ev.Kind)).Msg("ignoring event")
		return nil
	}
}

// HandleText answers with the model's reply and queues the turn for storage.
// Nothing is sent when the model fails.
func (d *Dispatcher) HandleText(ctx context.Context, ev core.Event, ch core.Channel) error {
	logger := log.FromCtx(ctx)

	recall := d.memory.Recall(ctx, ev.Text, ev.UserID)

	r, err := d.replier.Generate(ctx, recall.Snippet, ev.Text)
	if err != nil {
		return newError(ErrorModel, "generate reply", err)
	}
	if !r.Parsed {
		logger.Warn().Err(r.ParseErr).Msg("model output is not a reply envelope, sending raw text")
	}

	if err := ch.Reply(ctx, r.Text); err != nil {
		return newError(ErrorPlatform, "send reply", err)
	}

	logger.Info().
		Str("category", string(r.Category)).
		Str("memory", string(recall.Source)).
		Msg("text reply sent")

	if r.Category.IsOffTopic() {
		return nil
	}
	d.recorder.Enqueue(ctx, core.Turn{
		UserID:    ev.UserID,
		Input:     ev.Text,
		Reply:     r.Text,
		Category:  r.Category,
		Timestamp: d.now(),
	})
	return nil
}

// HandleImage describes the picture, or apologises when that fails.
func (d *Dispatcher) HandleImage(ctx context.Context, ev core.Event, ch core.Channel) error {
	logger := log.FromCtx(ctx)

	text, err := d.vision.Describe(ctx, ch, ev.MessageID)
	if err != nil {
		logger.Error().Err(err).Str("message_id", ev.MessageID).Msg("vision failed, sending apology")
		text = vision.Apology
	}

	if err := ch.Reply(ctx, text); err != nil {
		return newError(ErrorPlatform, "send image reply", err)
	}
	logger.Info().Str("message_id", ev.MessageID).Msg("image reply sent")
	return nil
}
