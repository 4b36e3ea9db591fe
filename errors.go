package auth

import (
	"github.com/goliatone/go-errors"
)

// FailureKind is the closed set of authentication outcomes a guarded
// request can end in besides success.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNoCredentials
	FailureInvalidToken
	FailureExpired
	FailureBlacklisted
	FailureInsufficientPrivilege
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNoCredentials:
		return "no_credentials"
	case FailureInvalidToken:
		return "invalid_token"
	case FailureExpired:
		return "expired"
	case FailureBlacklisted:
		return "blacklisted"
	case FailureInsufficientPrivilege:
		return "insufficient_privilege"
	default:
		return "unknown"
	}
}

const (
	TextCodeNoCredentials          = "NO_CREDENTIALS"
	TextCodeTokenInvalid           = "TOKEN_INVALID"
	TextCodeTokenExpired           = "TOKEN_EXPIRED"
	TextCodeTokenBlacklisted       = "TOKEN_BLACKLISTED"
	TextCodeInsufficientPrivilege  = "INSUFFICIENT_PRIVILEGE"
	TextCodeRevocationStoreFailure = "REVOCATION_STORE_FAILURE"
	TextCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	TextCodeEmailRegistered        = "EMAIL_ALREADY_REGISTERED"
	TextCodeTooManyLoginAttempts   = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeIdentityNotFound       = "IDENTITY_NOT_FOUND"
	TextCodeEmptyPassword          = "EMPTY_PASSWORD"
)

// ErrNoCredentials is returned when the request carries no usable bearer token
var ErrNoCredentials = errors.New("missing or malformed credentials", errors.CategoryAuth).
	WithTextCode(TextCodeNoCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures, unexpected algorithms and
// structurally corrupt tokens
var ErrTokenMalformed = errors.New("invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for correctly signed tokens past their expiry
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenBlacklisted is returned for tokens present in the revocation store
var ErrTokenBlacklisted = errors.New("token blacklisted", errors.CategoryAuth).
	WithTextCode(TextCodeTokenBlacklisted).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientPrivilege is returned when an admin route sees a regular token
var ErrInsufficientPrivilege = errors.New("admin privilege required", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientPrivilege).
	WithCode(errors.CodeForbidden)

// ErrRevocationStore wraps storage failures. It is never an auth outcome.
var ErrRevocationStore = errors.New("revocation store failure", errors.CategoryInternal).
	WithTextCode(TextCodeRevocationStoreFailure).
	WithCode(errors.CodeInternal)

// ErrMismatchedHashAndPassword is returned for unknown emails and wrong passwords alike
var ErrMismatchedHashAndPassword = errors.New("email or password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrEmailAlreadyRegistered is returned on duplicate registrations
var ErrEmailAlreadyRegistered = errors.New("email is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailRegistered).
	WithCode(errors.CodeConflict)

// ErrTooManyLoginAttempts is returned while an account is cooling down
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyLoginAttempts).
	WithCode(429)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

var failureByTextCode = map[string]FailureKind{
	TextCodeNoCredentials:         FailureNoCredentials,
	TextCodeTokenInvalid:          FailureInvalidToken,
	TextCodeTokenExpired:          FailureExpired,
	TextCodeTokenBlacklisted:      FailureBlacklisted,
	TextCodeInsufficientPrivilege: FailureInsufficientPrivilege,
}

// KindOf maps an error returned by the codec or the authenticator to its
// FailureKind. Errors outside the auth taxonomy, including revocation
// store failures, return FailureNone and false.
func KindOf(err error) (FailureKind, bool) {
	if err == nil {
		return FailureNone, false
	}

	var rich *errors.Error
	if !errors.As(err, &rich) || rich == nil {
		return FailureNone, false
	}

	kind, ok := failureByTextCode[rich.TextCode]
	return kind, ok
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	kind, _ := KindOf(err)
	return kind == FailureExpired
}

// IsMalformedError will check for invalid tokens
func IsMalformedError(err error) bool {
	kind, _ := KindOf(err)
	return kind == FailureInvalidToken
}

// HasTextCode reports whether err is a rich error carrying code
func HasTextCode(err error, code string) bool {
	var rich *errors.Error
	if errors.As(err, &rich) && rich != nil {
		return rich.TextCode == code
	}
	return false
}

func withMetadata(base *errors.Error, source error, meta map[string]any) *errors.Error {
	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if source != nil {
		clone.Source = source
	}
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}
	return clone
}
