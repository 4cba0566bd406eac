package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions  = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags   = html.CommonFlags | html.HrefTargetBlank
	tgPolicy    = bluemonday.NewPolicy()
	plainPolicy = bluemonday.NewPolicy()
)

func init() {
	// https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")

	// Block structure only; emphasis is dropped so no asterisks come back out of html2text.
	plainPolicy.AllowElements("p", "br", "ul", "ol", "li", "pre", "code", "blockquote")
	plainPolicy.AllowAttrs("href").OnElements("a")
}

func render(md []byte) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(p.Parse(md), renderer)
}

// MarkdownToTelegramHTML renders model markdown into the HTML subset Telegram accepts.
func MarkdownToTelegramHTML(md []byte) string {
	return string(tgPolicy.SanitizeBytes(render(md)))
}

// MarkdownToPlainText renders model markdown for channels without rich text (LINE).
// On conversion failure the input is returned unchanged.
func MarkdownToPlainText(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	sanitized := plainPolicy.SanitizeBytes(render([]byte(md)))
	text, err := html2text.FromString(string(sanitized), html2text.Options{OmitLinks: false})
	if err != nil {
		return md
	}
	return strings.TrimSpace(text)
}
