package notion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
)

const (
	propIdea     = "Idea"
	propFeedback = "Feedback"
	propUserID   = "UserID"
	propCategory = "Category"
	propDate     = "Date"

	// Notion rejects rich text objects longer than this.
	maxTextLen = 2000
)

// APIError is a non-2xx answer from the Notion API.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: status %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Store reads and writes turns in a Notion database.
type Store struct {
	http        *resty.Client
	databaseID  string
	readTimeout time.Duration
}

func NewStore(cfg *config.NotionConfig) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("notion: config must not be nil")
	}
	if strings.TrimSpace(cfg.DatabaseID) == "" {
		return nil, errors.New("notion: database id must not be empty")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Notion-Version", cfg.Version).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", core.UserAgent)

	return &Store{
		http:        client,
		databaseID:  cfg.DatabaseID,
		readTimeout: cfg.Timeout,
	}, nil
}

func (s *Store) KeywordLookup(ctx context.Context, query, userID string) (string, error) {
	page, err := s.queryFirst(ctx, queryRequest{
		Filter: filter{And: []filter{
			{Property: propIdea, RichText: &textCondition{Contains: query}},
			{Property: propUserID, RichText: &textCondition{Equals: userID}},
		}},
		PageSize: 1,
	})
	if err != nil {
		return "", fmt.Errorf("notion keyword lookup: %w", err)
	}
	return core.KeywordSnippet(page.Properties.Idea.text(), page.Properties.Feedback.text())
}

func (s *Store) RecentLookup(ctx context.Context, userID string) (string, error) {
	page, err := s.queryFirst(ctx, queryRequest{
		Filter:   filter{Property: propUserID, RichText: &textCondition{Equals: userID}},
		Sorts:    []sortSpec{{Property: propDate, Direction: "descending"}},
		PageSize: 1,
	})
	if err != nil {
		return "", fmt.Errorf("notion recent lookup: %w", err)
	}
	return core.RecentSnippet(page.Properties.Idea.text(), page.Properties.Feedback.text())
}

// SaveTurn creates one database page. The caller's context bounds the request.
func (s *Store) SaveTurn(ctx context.Context, turn core.Turn) error {
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	body := createPageRequest{
		Parent: parent{DatabaseID: s.databaseID},
		Properties: map[string]any{
			propIdea:     titleValue{Title: textValues(turn.Input)},
			propFeedback: richTextValue{RichText: textValues(turn.Reply)},
			propUserID:   richTextValue{RichText: textValues(turn.UserID)},
			propCategory: selectValue{Select: selectOption{Name: string(turn.Category)}},
			propDate:     dateValue{Date: dateOption{Start: ts.Format(time.RFC3339)}},
		},
	}

	apiErr := &APIError{}
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(body).
		SetError(apiErr).
		Post("/v1/pages")
	if err != nil {
		return fmt.Errorf("notion save turn: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return fmt.Errorf("notion save turn: %w", apiErr)
	}
	return nil
}

func (s *Store) queryFirst(ctx context.Context, req queryRequest) (page, error) {
	if s.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.readTimeout)
		defer cancel()
	}

	var out queryResponse
	apiErr := &APIError{}
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("databaseID", s.databaseID).
		SetBody(req).
		SetResult(&out).
		SetError(apiErr).
		Post("/v1/databases/{databaseID}/query")
	if err != nil {
		return page{}, err
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return page{}, apiErr
	}
	if len(out.Results) == 0 {
		return page{}, core.ErrNoContext
	}
	return out.Results[0], nil
}

func textValues(s string) []textObject {
	return []textObject{{Text: textContent{Content: truncate(s, maxTextLen)}}}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
