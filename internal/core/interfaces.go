package core

import (
	"context"
	"errors"
)

var (
	// ErrNoContext marks a lookup that completed but found nothing usable.
	ErrNoContext = errors.New("no context")
	// ErrEmptyContent marks a platform download with no bytes.
	ErrEmptyContent = errors.New("empty content")
)

// ContextStore is the external record of past turns.
type ContextStore interface {
	// KeywordLookup returns a snippet for the best turn of userID whose input contains query.
	KeywordLookup(ctx context.Context, query, userID string) (string, error)
	// RecentLookup returns a snippet for the latest turn of userID.
	RecentLookup(ctx context.Context, userID string) (string, error)
	SaveTurn(ctx context.Context, turn Turn) error
}

// Model is a single-turn generative model.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, img Image) (string, error)
}

// Channel is the reply side of one inbound event on a messaging platform.
type Channel interface {
	Reply(ctx context.Context, text string) error
	FetchImage(ctx context.Context, messageID string) (Image, error)
}
