package memory

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// trimTokens cuts text down to at most max cl100k tokens. A non-positive
// max disables trimming. When the tokenizer cannot load, text is cut by runes
// at four per token.
func trimTokens(text string, max int) string {
	if max <= 0 || text == "" {
		return text
	}

	enc, err := getTokenizer()
	if err != nil {
		runes := []rune(text)
		if len(runes) <= max*4 {
			return text
		}
		return string(runes[:max*4]) + "…"
	}

	ids := enc.Encode(text, nil, nil)
	if len(ids) <= max {
		return text
	}
	// A cut can land inside a multi-byte rune.
	return strings.ToValidUTF8(enc.Decode(ids[:max]), "") + "…"
}
