package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/pkg/log"
)

const baseContextKey = "base_context"

type Dispatcher interface {
	Dispatch(ctx context.Context, ev core.Event, ch core.Channel) error
}

// Bot is a second front door to the same pipelines, for testing the bot
// from Telegram. With an owner id set, everyone else is ignored.
type Bot struct {
	bot        *tele.Bot
	dispatcher Dispatcher
	ownerID    int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	dispatcher Dispatcher,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:        b,
		dispatcher: dispatcher,
		ownerID:    cfg.OwnerID,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || (bot.ownerID != 0 && sender.ID != bot.ownerID) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleText)
	b.Handle(tele.OnPhoto, bot.handlePhoto)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("username", b.bot.Me.Username).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleText(c tele.Context) error {
	return b.dispatch(c, core.Event{
		Kind:   core.EventText,
		UserID: userID(c),
		Text:   c.Text(),
	})
}

func (b *Bot) handlePhoto(c tele.Context) error {
	photo := c.Message().Photo
	if photo == nil {
		return nil
	}
	return b.dispatch(c, core.Event{
		Kind:      core.EventImage,
		UserID:    userID(c),
		MessageID: photo.FileID,
	})
}

func (b *Bot) dispatch(c tele.Context, ev core.Event) error {
	ctx := log.WithFields(c.Get(baseContextKey).(context.Context), "user_id", ev.UserID, "kind", string(ev.Kind))

	_ = c.Notify(tele.Typing)

	ch := &chatChannel{bot: b.bot, chat: c.Chat()}
	if err := b.dispatcher.Dispatch(ctx, ev, ch); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to handle telegram message")
	}
	return nil
}

func userID(c tele.Context) string {
	return "telegram-" + strconv.FormatInt(c.Sender().ID, 10)
}
