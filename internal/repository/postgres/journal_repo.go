// internal/repository/postgres/journal_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admin-console/internal/domain/journal"
	"admin-console/internal/resource"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var journalSchema = []string{`
	CREATE TABLE IF NOT EXISTS mutation_journal (
		id         TEXT PRIMARY KEY,
		resource   TEXT NOT NULL,
		kind       TEXT NOT NULL,
		target_id  TEXT NOT NULL DEFAULT '',
		action     TEXT NOT NULL DEFAULT '',
		admin_id   TEXT NOT NULL DEFAULT '',
		outcome    TEXT NOT NULL,
		error      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mutation_journal_created_at ON mutation_journal (created_at DESC)`,
}

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
	journalWriteTimeout = 3 * time.Second
)

// MutationJournal keeps an audit trail of mutations sent from the console.
type MutationJournal struct {
	db      Querier
	actor   func() string
	logger  *zap.Logger
	nowFunc func() time.Time
}

var _ resource.MutationObserver = (*MutationJournal)(nil)

// NewMutationJournal builds a journal. actor, when set, names the signed-in admin.
func NewMutationJournal(db Querier, actor func() string, logger *zap.Logger) *MutationJournal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MutationJournal{db: db, actor: actor, logger: logger, nowFunc: time.Now}
}

// Record inserts an entry, assigning its id and timestamp when missing.
func (r *MutationJournal) Record(ctx context.Context, e *journal.Entry) error {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.nowFunc().UTC()
	}

	query := `
		INSERT INTO mutation_journal (id, resource, kind, target_id, action, admin_id, outcome, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		e.ID, e.Resource, e.Kind, e.TargetID, e.Action, e.AdminID, e.Outcome, e.Error, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record mutation: %w", err)
	}
	return nil
}

// ListRecent returns the latest entries, newest first.
func (r *MutationJournal) ListRecent(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	limit = min(limit, maxJournalLimit)

	query := `
		SELECT id, resource, kind, target_id, action, admin_id, outcome, error, created_at
		FROM mutation_journal
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list mutations: %w", err)
	}
	defer rows.Close()

	entries := make([]journal.Entry, 0, limit)
	for rows.Next() {
		var e journal.Entry
		if err := rows.Scan(
			&e.ID, &e.Resource, &e.Kind, &e.TargetID, &e.Action,
			&e.AdminID, &e.Outcome, &e.Error, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mutation: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mutations: %w", err)
	}
	return entries, nil
}

// MutationSettled records the outcome of a controller mutation. Journal
// failures are logged and never reach the operator.
func (r *MutationJournal) MutationSettled(ctx context.Context, res string, m resource.Mutation, mutErr error) {
	e := &journal.Entry{
		Resource: res,
		Kind:     string(m.Kind),
		TargetID: m.TargetID,
		Action:   m.Action,
		Outcome:  journal.OutcomeSucceeded,
	}
	if r.actor != nil {
		e.AdminID = r.actor()
	}
	if mutErr != nil {
		e.Outcome = journal.OutcomeFailed
		e.Error = mutErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalWriteTimeout)
	defer cancel()
	if err := r.Record(ctx, e); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("mutation journal write failed",
			zap.String("resource", res),
			zap.String("kind", e.Kind),
			zap.Error(err),
		)
	}
}
