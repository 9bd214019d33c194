package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/store"
)

var ErrDeadLetterNotFound = errors.New("dead letter not found")

const maxDeadLetterListLimit = 500

// DeadLetterService exposes the operator actions on dead letters.
type DeadLetterService struct {
	replayer *Worker
	db       store.TxBeginner
	repo     store.DeadLetterRepository
}

func NewDeadLetterService(replayer *Worker, db store.TxBeginner, repo store.DeadLetterRepository) *DeadLetterService {
	return &DeadLetterService{replayer: replayer, db: db, repo: repo}
}

// List returns entries newest first, optionally filtered by status.
func (s *DeadLetterService) List(ctx context.Context, limit int, status *model.DeadLetterStatus) ([]model.DeadLetter, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxDeadLetterListLimit {
		limit = maxDeadLetterListLimit
	}
	return s.repo.List(ctx, limit, status)
}

// Retry replays one entry now and returns its updated state. Resolved
// entries are returned unchanged.
func (s *DeadLetterService) Retry(ctx context.Context, id int64) (*model.DeadLetter, error) {
	dl, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dl == nil {
		return nil, fmt.Errorf("%w: %d", ErrDeadLetterNotFound, id)
	}
	if dl.Status == model.DeadLetterResolved {
		return dl, nil
	}
	if _, err := s.replayer.ReplayEntry(ctx, dl); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Resolve marks one entry resolved without replaying it.
func (s *DeadLetterService) Resolve(ctx context.Context, id int64) (*model.DeadLetter, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin resolve %d: %w", id, err)
	}
	defer dbTx.Rollback()

	if err := s.repo.MarkResolvedTx(ctx, dbTx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrDeadLetterNotFound, id)
		}
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit resolve %d: %w", id, err)
	}
	return s.repo.Get(ctx, id)
}

// Counts returns the number of entries per status.
func (s *DeadLetterService) Counts(ctx context.Context) (map[model.DeadLetterStatus]int64, error) {
	return s.repo.CountByStatus(ctx)
}
