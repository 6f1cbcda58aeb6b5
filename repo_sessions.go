package accounts

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sessions tracks active access tokens. Each user holds at most one row,
// enforced by Replace rather than a schema constraint.
type Sessions interface {
	Create(ctx context.Context, record *Session) (*Session, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Session) (*Session, error)
	// Replace drops any rows for the user and inserts one for the token.
	// The two statements are individually atomic but not wrapped in a
	// transaction, so the last writer wins under concurrency.
	Replace(ctx context.Context, userID uuid.UUID, token string) (*Session, error)
	// FindByToken ignores rows older than the retention window even if
	// the sweeper has not evicted them yet.
	FindByToken(ctx context.Context, token string) (*Session, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type sessions struct {
	db *bun.DB
}

var _ Sessions = (*sessions)(nil)

// NewSessionsRepository creates a new session repository.
func NewSessionsRepository(db *bun.DB) Sessions {
	return &sessions{db: db}
}

func (s *sessions) Create(ctx context.Context, record *Session) (*Session, error) {
	return s.CreateTx(ctx, s.db, record)
}

func (s *sessions) CreateTx(ctx context.Context, tx bun.IDB, record *Session) (*Session, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create session").
			WithTextCode(TextCodeStoreError)
	}
	return record, nil
}

func (s *sessions) Replace(ctx context.Context, userID uuid.UUID, token string) (*Session, error) {
	if _, err := s.DeleteByUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.Create(ctx, &Session{
		UserID: userID,
		Token:  token,
	})
}

func (s *sessions) FindByToken(ctx context.Context, token string) (*Session, error) {
	record := &Session{}
	cutoff := time.Now().Add(-SessionTTL)
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Where("?TableAlias.created_at > ?", cutoff).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load session").
			WithTextCode(TextCodeStoreError)
	}
	return record, nil
}

func (s *sessions) DeleteByToken(ctx context.Context, token string) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("token = ?", token).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to delete session").
			WithTextCode(TextCodeStoreError)
	}
	return rowsAffected(res), nil
}

func (s *sessions) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to delete sessions").
			WithTextCode(TextCodeStoreError)
	}
	return rowsAffected(res), nil
}

func (s *sessions) DeleteExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-SessionTTL)
	res, err := s.db.NewDelete().
		Model((*Session)(nil)).
		Where("created_at <= ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to evict sessions").
			WithTextCode(TextCodeStoreError)
	}
	return rowsAffected(res), nil
}

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
