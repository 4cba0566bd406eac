package line

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
)

const (
	// LINE accepts up to 10 MB per image; anything larger is cut off.
	maxContentSize = 10 << 20

	apiTimeout = 30 * time.Second
)

// Messenger is the outbound side of the LINE Messaging API.
type Messenger interface {
	Reply(ctx context.Context, replyToken, text string) error
	Content(ctx context.Context, messageID string) (core.Image, error)
}

type sdkMessenger struct {
	api  *messaging_api.MessagingApiAPI
	blob *messaging_api.MessagingApiBlobAPI
}

// NewMessenger builds SDK clients shared by all requests. The SDK keeps its
// context on the client itself, so calls are bounded by the HTTP client
// timeout instead of the caller's ctx.
func NewMessenger(cfg *config.LineConfig) (Messenger, error) {
	hc := &http.Client{Timeout: apiTimeout}

	api, err := messaging_api.NewMessagingApiAPI(cfg.AccessToken, messaging_api.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging client: %w", err)
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(cfg.AccessToken, messaging_api.WithBlobHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE blob client: %w", err)
	}
	return &sdkMessenger{api: api, blob: blob}, nil
}

func (m *sdkMessenger) Reply(_ context.Context, replyToken, text string) error {
	_, err := m.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	if err != nil {
		return fmt.Errorf("LINE reply: %w", err)
	}
	return nil
}

func (m *sdkMessenger) Content(_ context.Context, messageID string) (core.Image, error) {
	resp, err := m.blob.GetMessageContent(messageID)
	if err != nil {
		return core.Image{}, fmt.Errorf("LINE message content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Image{}, fmt.Errorf("LINE message content: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return core.Image{}, fmt.Errorf("LINE message content: %w", err)
	}
	if len(data) == 0 {
		return core.Image{}, core.ErrEmptyContent
	}
	return core.Image{Data: data, MIMEType: resp.Header.Get("Content-Type")}, nil
}
