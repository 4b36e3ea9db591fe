package auth

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// UserTracker is a store we can use to retrieve users
type UserTracker interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// UserProvider handles users
type UserProvider struct {
	store  UserTracker
	logger Logger
	clock  func() time.Time
}

var _ IdentityProvider = (*UserProvider)(nil)

// MaxLoginAttempts is the maximun number of attempts a user gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "15m"

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
		clock:  time.Now,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = normalizeLogger(l)
	return u
}

func (u *UserProvider) WithClock(clock func() time.Time) *UserProvider {
	if clock != nil {
		u.clock = clock
	}
	return u
}

// VerifyIdentity will find the user, compare to the password, and return identity.
// Unknown emails and wrong passwords fail with the same error.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.LoginAttemptAt != nil {
		within, err := isWithinThresholdAt(u.clock(), *user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if !within {
			user.LoginAttempts = 0
		}
	}

	//if we have too many attempts in the given window, cool off!
	if user.LoginAttempts >= MaxLoginAttempts {
		return nil, withMetadata(ErrTooManyLoginAttempts, nil, map[string]any{
			"cool_down": CoolDownPeriod,
		})
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if err2 := u.store.TrackAttemptedLogin(ctx, user); err2 != nil {
			return nil, errors.Wrap(err2, errors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrMismatchedHashAndPassword
	}

	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Error("failed to track successful login", "error", err)
	}

	return IdentityFromUser(user), nil
}

func (u *UserProvider) FindIdentityByPublicID(ctx context.Context, publicID string) (Identity, error) {
	user, err := u.store.FindByPublicID(ctx, publicID)
	if err != nil {
		if IsNotFound(err) {
			return nil, withMetadata(ErrIdentityNotFound, err, map[string]any{"public_id": publicID})
		}
		return nil, err
	}
	return IdentityFromUser(user), nil
}

func (u *UserProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, withMetadata(ErrIdentityNotFound, err, map[string]any{"email": email})
		}
		return nil, err
	}
	return IdentityFromUser(user), nil
}

// IdentityFromUser exposes a user as an Identity
func IdentityFromUser(user *User) Identity {
	return authIdentity{
		publicID: user.PublicID.String(),
		email:    user.Email,
		admin:    user.Admin,
	}
}

type authIdentity struct {
	publicID string
	email    string
	admin    bool
}

func (a authIdentity) PublicID() string {
	return a.publicID
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) IsAdmin() bool {
	return a.admin
}

var _ Identity = authIdentity{}

// IsNotFound reports record or identity not found errors
func IsNotFound(err error) bool {
	return isNoRows(err) || errors.IsNotFound(err)
}

func isNoRows(err error) bool {
	return repository.IsRecordNotFound(err) || stderrors.Is(err, sql.ErrNoRows)
}
