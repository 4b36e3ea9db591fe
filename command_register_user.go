package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Admin    bool   `json:"-"`
	// UseHashid derives the public id from the email instead of a random uuid
	UseHashid  bool                `json:"-"`
	OnResponse func(TokenResponse) `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo     RepositoryManager
	tokens   TokenService
	activity ActivitySink
	logger   Logger
}

func NewRegisterUserHandler(repo RepositoryManager, tokens TokenService, activity ActivitySink, logger Logger) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		tokens:   tokens,
		activity: normalizeActivitySink(activity),
		logger:   normalizeLogger(logger),
	}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	email := NormalizeEmail(event.Email)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().FindByEmailTx(ctx, tx, email); err == nil {
			return withMetadata(ErrEmailAlreadyRegistered, nil, map[string]any{"email": email})
		} else if !IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing user")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = email
		user.Admin = event.Admin
		if event.UseHashid {
			if id, err := hashid.NewUUID(email); err == nil {
				user.PublicID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			// a concurrent registration won the insert
			if IsUniqueViolation(err) {
				return withMetadata(ErrEmailAlreadyRegistered, nil, map[string]any{"email": email})
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	identity := IdentityFromUser(user)
	token, err := h.tokens.Generate(identity)
	if err != nil {
		return err
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventRegistered,
		PublicID:  identity.PublicID(),
		Email:     identity.Email(),
		Metadata:  map[string]any{"admin": identity.IsAdmin()},
	})

	if event.OnResponse != nil {
		event.OnResponse(newTokenResponse(token, h.tokens.Lifetime(), identity))
	}

	return nil
}
