package accounts

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the account directory repository
type Users interface {
	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)
	List(ctx context.Context, excludeRoles ...UserRole) ([]*User, error)
	ListByRole(ctx context.Context, role UserRole) ([]*User, error)
	Update(ctx context.Context, record *User) (*User, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	SetRefreshTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository creates a new directory repository.
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}
	return record, nil
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}
	return record, nil
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_name = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}
	return record, nil
}

func (a *users) List(ctx context.Context, excludeRoles ...UserRole) ([]*User, error) {
	var records []*User
	q := a.db.NewSelect().
		Model(&records).
		Order("created_at ASC")

	for _, role := range excludeRoles {
		q = q.Where("?TableAlias.role != ?", role)
	}

	if err := q.Scan(ctx); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*User{}, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}
	return records, nil
}

func (a *users) ListByRole(ctx context.Context, role UserRole) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.role = ?", role).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*User{}, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}
	return records, nil
}

// Update patches the row with the record's non zero columns and returns
// the stored row. Password and refresh token are only written when set.
func (a *users) Update(ctx context.Context, record *User) (*User, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	record.UpdatedAt = &now

	res, err := a.db.NewUpdate().
		Model(record).
		OmitZero().
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrUserNotFound
	}

	return a.GetByID(ctx, record.ID)
}

func (a *users) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return a.SetRefreshTokenTx(ctx, a.db, id, token)
}

func (a *users) SetRefreshTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("refresh_token = ?", token).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to store refresh token")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (a *users) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = DefaultRole
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
