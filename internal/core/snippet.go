package core

import (
	"fmt"
	"strings"
)

// NoContext is injected into the prompt whenever memory has nothing to offer.
const NoContext = "No data (fast reply mode)"

func KeywordSnippet(input, reply string) (string, error) {
	return snippet("Past/History: you once said '%s' and I replied '%s'", input, reply)
}

func RecentSnippet(input, reply string) (string, error) {
	return snippet("Recent/Context: we talked about '%s' and I replied '%s'", input, reply)
}

func snippet(format, input, reply string) (string, error) {
	input, reply = strings.TrimSpace(input), strings.TrimSpace(reply)
	if input == "" || reply == "" {
		return "", ErrNoContext
	}
	return fmt.Sprintf(format, input, reply), nil
}
