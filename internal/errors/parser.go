package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the parser understands.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateNotNullViolation    = "23502"
	sqlStateCheckViolation      = "23514"
)

// ErrorInfo is a machine-readable code plus a message safe to show to users.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps storage and infrastructure errors to an ErrorInfo. resource
// names what was being handled ("product", "category", ...) and shapes the message.
func ParseError(err error, resource string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return parsePgError(pgErr, resource)
	}

	// SQLite and wrapped driver errors only carry text.
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "unique constraint") || strings.Contains(lower, "duplicate key"):
		return duplicate(lower, resource)
	case strings.Contains(lower, "foreign key constraint"):
		return ErrorInfo{Code: ResourceConflict, Message: "The " + label(resource) + " is referenced by other data"}
	case strings.Contains(lower, "not null constraint"):
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout"):
		return ErrorInfo{Code: InternalExternalAPI, Message: "An upstream service is unavailable, please try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Failed to process " + label(resource) + ", please try again later"}
}

func parsePgError(pgErr *pgconn.PgError, resource string) ErrorInfo {
	switch pgErr.Code {
	case sqlStateUniqueViolation:
		return duplicate(strings.ToLower(pgErr.ConstraintName+" "+pgErr.Detail), resource)
	case sqlStateForeignKeyViolation:
		if strings.Contains(strings.ToLower(pgErr.Detail), "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "The " + label(resource) + " is still in use"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
	case sqlStateNotNullViolation:
		return ErrorInfo{Code: ValidationRequired, Message: pgErr.ColumnName + " is required"}
	case sqlStateCheckViolation:
		if strings.Contains(pgErr.ConstraintName, "rating") {
			return ErrorInfo{Code: ReviewInvalidRating, Message: "Rating must be between 1 and 5"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
	}
	return ErrorInfo{Code: InternalDatabaseError, Message: "A database error occurred"}
}

func duplicate(detail, resource string) ErrorInfo {
	switch {
	case strings.Contains(detail, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(detail, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This slug is already in use"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "The " + label(resource) + " already exists"}
}

func notFound(resource string) ErrorInfo {
	switch strings.ToLower(resource) {
	case "product":
		return ErrorInfo{Code: ProductNotFound, Message: "Product not found"}
	case "category":
		return ErrorInfo{Code: CategoryNotFound, Message: "Category not found"}
	case "order":
		return ErrorInfo{Code: OrderNotFound, Message: "Order not found"}
	case "address":
		return ErrorInfo{Code: AddressNotFound, Message: "Address not found"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "The requested " + label(resource) + " was not found"}
}

func label(resource string) string {
	if resource == "" {
		return "record"
	}
	return resource
}
