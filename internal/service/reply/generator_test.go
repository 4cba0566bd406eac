package reply

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/internal/core/coretest"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		category core.Category
		text     string
		parsed   bool
	}{
		{
			name:     "plain envelope",
			raw:      `{"category":"Business","reply":"Nice! Who buys first?"}`,
			category: core.CategoryBusiness,
			text:     "Nice! Who buys first?",
			parsed:   true,
		},
		{
			name:     "json fence",
			raw:      "```json\n{\"category\":\"Finance\",\"reply\":\"Track it weekly\"}\n```",
			category: core.CategoryFinance,
			text:     "Track it weekly",
			parsed:   true,
		},
		{
			name:     "bare fence",
			raw:      "```\n{\"category\":\"Self-Dev\",\"reply\":\"You got this\"}\n```",
			category: core.CategorySelfDev,
			text:     "You got this",
			parsed:   true,
		},
		{
			name:     "missing category",
			raw:      `{"reply":"hey"}`,
			category: core.CategoryGeneral,
			text:     "hey",
			parsed:   true,
		},
		{
			name:     "empty reply",
			raw:      `{"category":"Business","reply":""}`,
			category: core.CategoryBusiness,
			text:     FallbackText,
			parsed:   true,
		},
		{
			name:     "not json",
			raw:      "Sure thing, dude!",
			category: core.CategoryGeneral,
			text:     "Sure thing, dude!",
		},
		{
			name:     "truncated json",
			raw:      `{"category":"Business","reply":"cut`,
			category: core.CategoryGeneral,
			text:     `{"category":"Business","reply":"cut`,
		},
		{
			name:     "null",
			raw:      "null",
			category: core.CategoryGeneral,
			text:     "null",
		},
		{
			name:     "empty output",
			raw:      "  ",
			category: core.CategoryGeneral,
			text:     FallbackText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.text, got.Text)
			assert.Equal(t, tt.parsed, got.Parsed)
			if tt.parsed {
				assert.NoError(t, got.ParseErr)
			} else {
				assert.Error(t, got.ParseErr)
			}
		})
	}
}

func TestParse_FencedEqualsUnfenced(t *testing.T) {
	body := `{"category":"Productivity","reply":"Pomodoro it"}`
	assert.Equal(t, Parse(body), Parse("```json\n"+body+"\n```"))
	assert.Equal(t, Parse(body), Parse("```"+body+"```"))
}

func TestGenerator_Prompt(t *testing.T) {
	model := &coretest.Model{Output: `{"category":"Business","reply":"go"}`}
	g := NewGenerator(model, "SYSTEM")

	r, err := g.Generate(context.Background(), "Recent/Context: x", "open a cafe")
	require.NoError(t, err)
	assert.Equal(t, "go", r.Text)

	require.Equal(t, 1, model.Calls())
	assert.Equal(t, "SYSTEM\n\n[Memory]\nRecent/Context: x\n\n[Input]\nopen a cafe\n\nResponse (JSON):", model.Prompts[0])
}

func TestGenerator_DefaultPrompt(t *testing.T) {
	model := &coretest.Model{Output: "{}"}
	g := NewGenerator(model, "")

	_, err := g.Generate(context.Background(), core.NoContext, "hi")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(model.Prompts[0], `Role: You are "IdeaPartner"`))
	assert.Contains(t, model.Prompts[0], "[Memory]\n"+core.NoContext)
}

func TestGenerator_ModelError(t *testing.T) {
	g := NewGenerator(&coretest.Model{Err: errors.New("quota")}, "")

	_, err := g.Generate(context.Background(), core.NoContext, "hi")
	assert.Error(t, err)
}
