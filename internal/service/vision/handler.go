package vision

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/ideapartner/ideapartner/internal/core"
)

// Apology is sent whenever an image could not be fetched or described.
const Apology = "โทษทีเพื่อน เน็ตไม่ดี มองไม่เห็นรูปเลย 😵‍💫"

const fallbackMIME = "image/jpeg"

//go:embed prompts/vision.md
var defaultPrompt string

var ErrEmptyReply = errors.New("model returned an empty description")

type Handler struct {
	model  core.Model
	prompt string
}

func DefaultPrompt() string {
	return defaultPrompt
}

func NewHandler(model core.Model, prompt string) *Handler {
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultPrompt
	}
	return &Handler{model: model, prompt: strings.TrimSpace(prompt)}
}

// Describe downloads the image behind messageID and asks the model about it.
func (h *Handler) Describe(ctx context.Context, ch core.Channel, messageID string) (string, error) {
	img, err := ch.FetchImage(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("fetch image %s: %w", messageID, err)
	}
	if len(img.Data) == 0 {
		return "", fmt.Errorf("fetch image %s: %w", messageID, core.ErrEmptyContent)
	}
	img.MIMEType = DetectMIME(img.MIMEType, img.Data)

	out, err := h.model.GenerateWithImage(ctx, h.prompt, img)
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyReply
	}
	return out, nil
}

// DetectMIME prefers the declared content type, then sniffs the bytes, and
// settles on JPEG when neither names an image type.
func DetectMIME(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return fallbackMIME
}
