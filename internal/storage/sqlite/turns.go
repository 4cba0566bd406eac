package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ideapartner/ideapartner/internal/core"
)

// TurnsRepo keeps the conversation history in a local database file.
// It serves the same lookups as the Notion store.
type TurnsRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTurnsRepo(db *sql.DB, readTimeout time.Duration) *TurnsRepo {
	return &TurnsRepo{db: db, timeout: readTimeout}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *TurnsRepo) KeywordLookup(ctx context.Context, query, userID string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const q = `SELECT input, reply FROM turns
		WHERE user_id = ? AND input LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY created_at DESC LIMIT 1`

	input, reply, err := r.first(ctx, q, userID, likeEscaper.Replace(query))
	if err != nil {
		return "", fmt.Errorf("sqlite keyword lookup: %w", err)
	}
	return core.KeywordSnippet(input, reply)
}

func (r *TurnsRepo) RecentLookup(ctx context.Context, userID string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const q = `SELECT input, reply FROM turns WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`

	input, reply, err := r.first(ctx, q, userID)
	if err != nil {
		return "", fmt.Errorf("sqlite recent lookup: %w", err)
	}
	return core.RecentSnippet(input, reply)
}

func (r *TurnsRepo) SaveTurn(ctx context.Context, turn core.Turn) error {
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	category := turn.Category
	if category == "" {
		category = core.CategoryGeneral
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO turns (id, user_id, input, reply, category, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), turn.UserID, turn.Input, turn.Reply, string(category), ts.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// Count returns how many turns are stored for userID.
func (r *TurnsRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

func (r *TurnsRepo) first(ctx context.Context, query string, args ...any) (string, string, error) {
	var input, reply string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&input, &reply)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", core.ErrNoContext
	}
	return input, reply, err
}

func (r *TurnsRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
