// Package coretest holds in-memory fakes of the core interfaces for tests.
package coretest

import (
	"context"
	"sync"

	"github.com/ideapartner/ideapartner/internal/core"
)

type Model struct {
	mu      sync.Mutex
	Output  string
	Err     error
	Prompts []string
	Images  []core.Image
}

func (m *Model) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	return m.Output, m.Err
}

func (m *Model) GenerateWithImage(_ context.Context, prompt string, img core.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	m.Images = append(m.Images, img)
	return m.Output, m.Err
}

func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

type Channel struct {
	mu       sync.Mutex
	Replies  []string
	ReplyErr error
	Image    core.Image
	FetchErr error
	Fetched  []string
}

func (c *Channel) Reply(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Replies = append(c.Replies, text)
	return c.ReplyErr
}

func (c *Channel) FetchImage(_ context.Context, messageID string) (core.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Fetched = append(c.Fetched, messageID)
	return c.Image, c.FetchErr
}

func (c *Channel) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.Replies...)
}

// Store answers lookups with fixed snippets and records saved turns.
type Store struct {
	mu      sync.Mutex
	Keyword string
	Recent  string
	SaveErr error
	Saved   []core.Turn
}

func (s *Store) KeywordLookup(context.Context, string, string) (string, error) {
	if s.Keyword == "" {
		return "", core.ErrNoContext
	}
	return s.Keyword, nil
}

func (s *Store) RecentLookup(context.Context, string) (string, error) {
	if s.Recent == "" {
		return "", core.ErrNoContext
	}
	return s.Recent, nil
}

func (s *Store) SaveTurn(_ context.Context, turn core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved = append(s.Saved, turn)
	return s.SaveErr
}

func (s *Store) Turns() []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Turn(nil), s.Saved...)
}
