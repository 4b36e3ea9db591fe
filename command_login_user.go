package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

type LoginUserMessage struct {
	Email      string              `json:"email"`
	Password   string              `json:"password"`
	OnResponse func(TokenResponse) `json:"-"`
}

func (e LoginUserMessage) Type() string { return "user.login" }

type LoginUserHandler struct {
	provider IdentityProvider
	tokens   TokenService
	activity ActivitySink
	logger   Logger
}

func NewLoginUserHandler(provider IdentityProvider, tokens TokenService, activity ActivitySink, logger Logger) *LoginUserHandler {
	return &LoginUserHandler{
		provider: provider,
		tokens:   tokens,
		activity: normalizeActivitySink(activity),
		logger:   normalizeLogger(logger),
	}
}

func (h *LoginUserHandler) Execute(ctx context.Context, event LoginUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during login")
	default:
	}

	email := NormalizeEmail(event.Email)

	identity, err := h.provider.VerifyIdentity(ctx, email, event.Password)
	if err != nil {
		recordActivity(ctx, h.activity, h.logger, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Email:     email,
			Metadata:  map[string]any{"error": err.Error()},
		})
		return err
	}

	token, err := h.tokens.Generate(identity)
	if err != nil {
		return err
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		PublicID:  identity.PublicID(),
		Email:     identity.Email(),
	})

	if event.OnResponse != nil {
		event.OnResponse(newTokenResponse(token, h.tokens.Lifetime(), identity))
	}

	return nil
}
