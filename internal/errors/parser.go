package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ParseError classifies a raw repository error by inspecting gorm sentinels
// and Postgres/SQLite constraint messages. context names the resource
// ("user", "product", ...) and picks the not-found message.
func ParseError(err error, context string) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(KindNotFound, ResourceNotFound, notFoundMessage(context)).Wrap(err)
	}

	lower := strings.ToLower(err.Error())

	// Postgres 23505 / SQLite "UNIQUE constraint failed"
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "unique constraint") {
		return parseDuplicateKeyError(lower).Wrap(err)
	}

	// Postgres 23503
	if strings.Contains(lower, "foreign key constraint") {
		return New(KindNotFound, ResourceNotFound, "Referenced record does not exist").Wrap(err)
	}

	// Postgres 23502
	if strings.Contains(lower, "violates not-null constraint") || strings.Contains(lower, "not null constraint failed") {
		return New(KindValidation, ValidationRequired, "A required field is missing").Wrap(err)
	}

	return Internal(context, err)
}

func parseDuplicateKeyError(lower string) *Error {
	switch {
	case strings.Contains(lower, "username"):
		return New(KindValidation, AuthUsernameExists, "A user with that username already exists")
	case strings.Contains(lower, "email"):
		return New(KindValidation, AuthEmailAlreadyExists, "A user with that email already exists")
	default:
		return New(KindValidation, ResourceAlreadyExists, "Record already exists")
	}
}

func notFoundMessage(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "product"):
		return "Product not found"
	case strings.Contains(lower, "order"):
		return "Order not found"
	case strings.Contains(lower, "cart"):
		return "Cart not found"
	case strings.Contains(lower, "user"):
		return "User not found"
	default:
		return "Not found"
	}
}
