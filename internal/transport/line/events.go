package line

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/ideapartner/ideapartner/internal/core"
)

// toEvent converts a webhook event into a core.Event plus its reply token.
// ok is false for everything except text and image messages.
func toEvent(ev webhook.EventInterface) (out core.Event, replyToken string, ok bool) {
	var msg webhook.MessageEvent
	switch e := ev.(type) {
	case webhook.MessageEvent:
		msg = e
	case *webhook.MessageEvent:
		msg = *e
	default:
		return core.Event{}, "", false
	}

	out.UserID = userID(msg.Source)

	switch m := msg.Message.(type) {
	case webhook.TextMessageContent:
		out.Kind, out.Text, out.MessageID = core.EventText, m.Text, m.Id
	case *webhook.TextMessageContent:
		out.Kind, out.Text, out.MessageID = core.EventText, m.Text, m.Id
	case webhook.ImageMessageContent:
		out.Kind, out.MessageID = core.EventImage, m.Id
	case *webhook.ImageMessageContent:
		out.Kind, out.MessageID = core.EventImage, m.Id
	default:
		return core.Event{}, "", false
	}

	return out, msg.ReplyToken, true
}

func userID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case *webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case *webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	case *webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}
