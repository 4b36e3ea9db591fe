package api

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-widget-auth"
)

// MessageInputValidation is the message of every 400 validation response
const MessageInputValidation = "Input payload validation failed"

// StatusBody is the body of plain status responses
type StatusBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ValidationBody lists field errors keyed by json field name
type ValidationBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// TokenBody is the issuance response of register and login
type TokenBody struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func success(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(StatusBody{Status: "success", Message: message})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(StatusBody{Status: "fail", Message: message})
}

func sendToken(c *fiber.Ctx, status int, message string, res auth.TokenResponse) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderPragma, "no-cache")
	return c.Status(status).JSON(TokenBody{
		Status:      "success",
		Message:     message,
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	body := ValidationBody{
		Message: MessageInputValidation,
		Errors:  map[string]string{},
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		for name, ferr := range fields {
			if ferr != nil {
				body.Errors[name] = ferr.Error()
			}
		}
	} else {
		body.Errors["body"] = err.Error()
	}

	return c.Status(fiber.StatusBadRequest).JSON(body)
}

// writeError answers err, errors outside the known set become a 500
func writeError(c *fiber.Ctx, logger auth.Logger, err error) error {
	if kind, ok := auth.KindOf(err); ok {
		return auth.WriteFailure(c, kind, false)
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich != nil {
		switch rich.TextCode {
		case auth.TextCodeEmailRegistered:
			return fail(c, fiber.StatusConflict, fmt.Sprintf("%v is already registered", rich.Metadata["email"]))
		case auth.TextCodeInvalidCredentials:
			return fail(c, fiber.StatusUnauthorized, auth.ErrMismatchedHashAndPassword.Message)
		case auth.TextCodeTooManyLoginAttempts:
			return fail(c, fiber.StatusTooManyRequests, "Too many login attempts. Try again later.")
		case auth.TextCodeEmptyPassword:
			return validationFailed(c, validation.Errors{"password": fmt.Errorf("Missing required parameter in the post body")})
		}
	}

	logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, "Internal server error.")
}
