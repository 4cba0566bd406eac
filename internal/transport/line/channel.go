package line

import (
	"context"
	"strings"

	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/pkg/conv"
)

// maxTextLen is the LINE limit for one text message, in characters.
const maxTextLen = 5000

// channel replies to a single webhook event. A reply token is good for one
// reply only.
type channel struct {
	messenger  Messenger
	replyToken string
	plainText  bool
}

func (c *channel) Reply(ctx context.Context, text string) error {
	if c.plainText {
		text = conv.MarkdownToPlainText(text)
	}
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > maxTextLen {
		text = string(r[:maxTextLen])
	}
	return c.messenger.Reply(ctx, c.replyToken, text)
}

func (c *channel) FetchImage(ctx context.Context, messageID string) (core.Image, error) {
	return c.messenger.Content(ctx, messageID)
}
