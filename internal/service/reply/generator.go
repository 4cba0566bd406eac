package reply

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ideapartner/ideapartner/internal/core"
)

// FallbackText is sent when the model answered with an envelope but left the reply empty.
const FallbackText = "โทษที เบลอนิดหน่อย เอาใหม่นะ"

//go:embed prompts/system.md
var defaultSystemPrompt string

var errNullEnvelope = errors.New("envelope is null")

// Reply is the model output after envelope parsing. Parsed is false when the
// raw text was used as-is; ParseErr then says why.
type Reply struct {
	Category core.Category
	Text     string
	Parsed   bool
	ParseErr error
}

type envelope struct {
	Category string `json:"category"`
	Reply    string `json:"reply"`
}

type Generator struct {
	model  core.Model
	system string
}

// DefaultSystemPrompt is the built-in persona and envelope instructions.
func DefaultSystemPrompt() string {
	return defaultSystemPrompt
}

func NewGenerator(model core.Model, systemPrompt string) *Generator {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &Generator{
		model:  model,
		system: strings.TrimSpace(systemPrompt),
	}
}

func (g *Generator) BuildPrompt(memory, message string) string {
	return fmt.Sprintf("%s\n\n[Memory]\n%s\n\n[Input]\n%s\n\nResponse (JSON):", g.system, memory, message)
}

func (g *Generator) Generate(ctx context.Context, memory, message string) (Reply, error) {
	raw, err := g.model.Generate(ctx, g.BuildPrompt(memory, message))
	if err != nil {
		return Reply{}, err
	}
	return Parse(raw), nil
}

// Parse decodes the {"category", "reply"} envelope, tolerating markdown code
// fences around it. Anything undecodable becomes a General reply carrying the
// raw text.
func Parse(raw string) Reply {
	raw = strings.TrimSpace(raw)

	var env *envelope
	err := json.Unmarshal([]byte(stripFences(raw)), &env)
	if err == nil && env == nil {
		err = errNullEnvelope
	}
	if err != nil {
		text := raw
		if text == "" {
			text = FallbackText
		}
		return Reply{Category: core.CategoryGeneral, Text: text, ParseErr: err}
	}

	r := Reply{
		Category: core.Category(strings.TrimSpace(env.Category)),
		Text:     strings.TrimSpace(env.Reply),
		Parsed:   true,
	}
	if r.Category == "" {
		r.Category = core.CategoryGeneral
	}
	if r.Text == "" {
		r.Text = FallbackText
	}
	return r
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
