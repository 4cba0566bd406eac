package telegram

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	tele "gopkg.in/telebot.v3"

	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/pkg/conv"
	"github.com/ideapartner/ideapartner/pkg/log"
)

const (
	maxTelegramMsgLen = 4000 // below the 4096 hard limit
	maxPhotoSize      = 10 << 20
)

// chatChannel answers one Telegram chat. Unlike LINE there is no reply
// token, so long replies may be split over several messages.
type chatChannel struct {
	bot  *tele.Bot
	chat tele.Recipient
}

func (c *chatChannel) Reply(ctx context.Context, md string) error {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		html = strings.TrimSpace(md)
	}

	for i, chunk := range splitText(html, maxTelegramMsgLen) {
		if _, err := c.bot.Send(c.chat, chunk, tele.ModeHTML); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

func (c *chatChannel) FetchImage(ctx context.Context, fileID string) (core.Image, error) {
	rc, err := c.bot.File(&tele.File{FileID: fileID})
	if err != nil {
		return core.Image{}, fmt.Errorf("telegram file %s: %w", fileID, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPhotoSize))
	if err != nil {
		return core.Image{}, fmt.Errorf("telegram file %s: %w", fileID, err)
	}
	if len(data) == 0 {
		return core.Image{}, core.ErrEmptyContent
	}
	// Telegram re-encodes photos as JPEG.
	return core.Image{Data: data, MIMEType: "image/jpeg"}, nil
}

// splitText cuts text into chunks of at most maxLen bytes, preferring
// newlines and never splitting a rune.
func splitText(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if idx := strings.LastIndex(text[:cut], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
