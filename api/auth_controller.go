package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/middleware/jwtware"
)

// CredentialsPayload is the register and login body, form or JSON
type CredentialsPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r CredentialsPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, required, validation.By(ValidateEmail)),
		validation.Field(&r.Password, required),
	)
}

// UserBody is the /auth/user response
type UserBody struct {
	Email          string `json:"email"`
	PublicID       string `json:"public_id"`
	Admin          bool   `json:"admin"`
	RegisteredOn   string `json:"registered_on"`
	TokenExpiresIn string `json:"token_expires_in"`
}

type AuthController struct {
	Logger   auth.Logger
	Repo     auth.RepositoryManager
	Tokens   auth.TokenService
	Register *auth.RegisterUserHandler
	Login    *auth.LoginUserHandler
	Logout   *auth.LogoutUserHandler
	// UseHashid derives public ids from emails
	UseHashid  bool
	ContextKey string
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(CredentialsPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return validationFailed(c, err)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(c, err)
	}

	var res auth.TokenResponse
	req := auth.RegisterUserMessage{
		Email:     payload.Email,
		Password:  payload.Password,
		UseHashid: a.UseHashid,
		OnResponse: func(r auth.TokenResponse) {
			res = r
		},
	}

	if err := a.Register.Execute(c.UserContext(), req); err != nil {
		return writeError(c, a.Logger, err)
	}

	return sendToken(c, fiber.StatusCreated, "successfully registered", res)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(CredentialsPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login user parse payload", "error", err)
		return validationFailed(c, err)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(c, err)
	}

	var res auth.TokenResponse
	req := auth.LoginUserMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(r auth.TokenResponse) {
			res = r
		},
	}

	if err := a.Login.Execute(c.UserContext(), req); err != nil {
		return writeError(c, a.Logger, err)
	}

	return sendToken(c, fiber.StatusOK, "successfully logged in", res)
}

// UserGet returns the user the token belongs to
func (a *AuthController) UserGet(c *fiber.Ctx) error {
	claims, ok := jwtware.ClaimsFrom(c, a.ContextKey)
	if !ok {
		return auth.WriteFailure(c, auth.FailureNoCredentials, false)
	}

	user, err := a.Repo.Users().FindByPublicID(c.UserContext(), claims.PublicID())
	if err != nil {
		// a valid token for a deleted user is as good as a forged one
		if auth.IsNotFound(err) {
			return auth.WriteFailure(c, auth.FailureInvalidToken, false)
		}
		return writeError(c, a.Logger, err)
	}

	return c.JSON(UserBody{
		Email:          user.Email,
		PublicID:       user.PublicID.String(),
		Admin:          user.Admin,
		RegisteredOn:   user.RegisteredOn.UTC().Format(time.RFC3339),
		TokenExpiresIn: remaining(claims.Expires().Sub(a.Tokens.Now())),
	})
}

// LogoutPost revokes the presented token
func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	claims, ok := jwtware.ClaimsFrom(c, a.ContextKey)
	if !ok {
		return auth.WriteFailure(c, auth.FailureNoCredentials, false)
	}

	if err := a.Logout.Execute(c.UserContext(), auth.LogoutUserMessage{Claims: claims}); err != nil {
		return writeError(c, a.Logger, err)
	}

	return success(c, fiber.StatusOK, "successfully logged out")
}
