package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	// RealmUser protects routes any registered user may call
	RealmUser = "registered_users@mydomain.com"
	// RealmAdmin protects admin only routes
	RealmAdmin = "admin_users@mydomain.com"
)

const (
	ChallengeInvalidToken      = "invalid_token"
	ChallengeInsufficientScope = "insufficient_scope"
)

// Failure is the protocol response for a FailureKind
type Failure struct {
	Status      int
	ErrorCode   string
	Description string
}

var failureTable = map[FailureKind]Failure{
	FailureNoCredentials: {
		Status:      fiber.StatusUnauthorized,
		Description: "Unauthorized",
	},
	FailureInvalidToken: {
		Status:      fiber.StatusUnauthorized,
		ErrorCode:   ChallengeInvalidToken,
		Description: "Invalid token. Please log in again.",
	},
	FailureExpired: {
		Status:      fiber.StatusUnauthorized,
		ErrorCode:   ChallengeInvalidToken,
		Description: "Token expired. Please log in again.",
	},
	FailureBlacklisted: {
		Status:      fiber.StatusUnauthorized,
		ErrorCode:   ChallengeInvalidToken,
		Description: "Token blacklisted. Please log in again.",
	},
	FailureInsufficientPrivilege: {
		Status:      fiber.StatusForbidden,
		ErrorCode:   ChallengeInsufficientScope,
		Description: "You are not an administrator",
	},
}

// FailureFor returns the table entry for kind. Unknown kinds fall back to
// the invalid token response so nothing is ever let through.
func FailureFor(kind FailureKind) Failure {
	if f, ok := failureTable[kind]; ok {
		return f
	}
	return failureTable[FailureInvalidToken]
}

// Realm returns the protection realm for a route
func Realm(adminRequired bool) string {
	if adminRequired {
		return RealmAdmin
	}
	return RealmUser
}

// ChallengeHeader renders the WWW-Authenticate value for kind.
// Insufficient privilege always names the admin realm.
func ChallengeHeader(kind FailureKind, adminRequired bool) string {
	f := FailureFor(kind)
	realm := Realm(adminRequired)
	if kind == FailureInsufficientPrivilege {
		realm = RealmAdmin
	}

	value := fmt.Sprintf(`Bearer realm="%s"`, realm)
	if f.ErrorCode == "" {
		return value
	}
	return fmt.Sprintf(`%s, error="%s", error_description="%s"`, value, f.ErrorCode, f.Description)
}

// FailureBody is the JSON body of every failed response
type FailureBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteFailure writes status, challenge header and body for kind
func WriteFailure(c *fiber.Ctx, kind FailureKind, adminRequired bool) error {
	f := FailureFor(kind)
	c.Set(fiber.HeaderWWWAuthenticate, ChallengeHeader(kind, adminRequired))
	return c.Status(f.Status).JSON(FailureBody{
		Status:  "fail",
		Message: f.Description,
	})
}
