package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

type LogoutUserMessage struct {
	Claims *Claims `json:"-"`
}

func (e LogoutUserMessage) Type() string { return "user.logout" }

// LogoutUserHandler revokes the presented token. Running it twice for the
// same token is harmless.
type LogoutUserHandler struct {
	tokens   TokenService
	activity ActivitySink
	logger   Logger
}

func NewLogoutUserHandler(tokens TokenService, activity ActivitySink, logger Logger) *LogoutUserHandler {
	return &LogoutUserHandler{
		tokens:   tokens,
		activity: normalizeActivitySink(activity),
		logger:   normalizeLogger(logger),
	}
}

func (h *LogoutUserHandler) Execute(ctx context.Context, event LogoutUserMessage) error {
	if event.Claims == nil {
		return ErrNoCredentials
	}

	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during logout")
	default:
	}

	if err := h.tokens.Revoke(ctx, event.Claims); err != nil {
		return err
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventLogout,
		PublicID:  event.Claims.PublicID(),
		Metadata:  map[string]any{"jti": event.Claims.TokenID()},
	})

	return nil
}
