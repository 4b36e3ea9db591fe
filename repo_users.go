package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Users interface {
	repository.Repository[*User]

	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	FindByPublicIDTx(ctx context.Context, tx bun.IDB, publicID string) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db  *bun.DB
	now func() time.Time
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

// FindByEmailTx matches emails case insensitively, they are stored lower cased
func (a *users) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.findOneTx(ctx, tx, "email", NormalizeEmail(email))
}

func (a *users) FindByPublicID(ctx context.Context, publicID string) (*User, error) {
	return a.FindByPublicIDTx(ctx, a.db, publicID)
}

func (a *users) FindByPublicIDTx(ctx context.Context, tx bun.IDB, publicID string) (*User, error) {
	id, err := uuid.Parse(strings.TrimSpace(publicID))
	if err != nil {
		return nil, userNotFound("public_id", publicID)
	}
	return a.findOneTx(ctx, tx, "public_id", id)
}

func (a *users) findOneTx(ctx context.Context, tx bun.IDB, column string, value any) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, userNotFound(column, value)
		}
		return nil, err
	}

	return record, nil
}

func userNotFound(column string, value any) error {
	return repository.NewRecordNotFound().WithMetadata(map[string]any{
		"table":  "users",
		"column": column,
		"value":  value,
	})
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.PublicID == uuid.Nil {
		user.PublicID = uuid.New()
	}
	if user.RegisteredOn.IsZero() {
		user.RegisteredOn = a.now().UTC()
	}
	user.Email = NormalizeEmail(user.Email)
	return a.CreateTx(ctx, tx, user)
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	loggedInAt := a.now().UTC()
	_, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("loggedin_at = ?", loggedInAt).
		Set("login_attempt_at = NULL").
		Set("login_attempts = 0").
		Where("id = ?", user.ID).
		Exec(ctx)

	if err == nil {
		user.LoggedInAt = &loggedInAt
		user.LoginAttemptAt = nil
		user.LoginAttempts = 0
	}
	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, user)
}

func (a *users) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	now := a.now().UTC()
	attempts := user.LoginAttempts + 1
	_, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = ?", attempts).
		Set("login_attempt_at = ?", now).
		Where("id = ?", user.ID).
		Exec(ctx)

	if err == nil {
		user.LoginAttempts = attempts
		user.LoginAttemptAt = &now
	}
	return err
}

// NormalizeEmail trims and lower cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsUniqueViolation reports a unique constraint failure from postgres or sqlite
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite drivers differ by build, both report the constraint in the message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
