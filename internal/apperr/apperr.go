package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindPersistence     Kind = "persistence"
	KindInternal        Kind = "internal"
)

const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicate           = "DUPLICATE"
	CodeReferenceNotFound   = "REFERENCE_NOT_FOUND"
	CodeInvalidFormat       = "INVALID_FORMAT"
	CodeEmptyCart           = "EMPTY_CART"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeStockExceeded       = "STOCK_EXCEEDED"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeSubscriptionExpired = "SUBSCRIPTION_EXPIRED"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeForbidden           = "FORBIDDEN"
	CodeAccountBanned       = "ACCOUNT_BANNED"
	CodePaymentFailed       = "PAYMENT_FAILED"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

// Error is the single error type surfaced to transports. Cause keeps the
// underlying fault (with a stack for persistence and internal kinds).
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// StackTrace returns the captured stack of the cause, if any.
func (e *Error) StackTrace() string {
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	var st stackTracer
	if errors.As(e.Cause, &st) {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return ""
}

func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(KindValidation, CodeValidation, message)
}

func NotFound(entity string) *Error {
	return New(KindNotFound, CodeNotFound, entity+" not found")
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, CodeUnauthenticated, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, CodeForbidden, message)
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal server error", Cause: pkgerrors.WithStack(err)}
}

func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Code: CodePersistence, Message: "database error", Cause: pkgerrors.WithStack(err)}
}

func EmptyCart() *Error {
	return New(KindValidation, CodeEmptyCart, "cart is empty")
}

func InsufficientStock(productID uint, requested, available int) *Error {
	return New(KindConflict, CodeInsufficientStock, "insufficient stock").
		WithDetail("product_id", productID).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

func StockExceeded(productID uint, inCart, requested, available int) *Error {
	return New(KindValidation, CodeStockExceeded, "requested quantity exceeds available stock").
		WithDetail("product_id", productID).
		WithDetail("in_cart", inCart).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

func InvalidQuantity(quantity int) *Error {
	return New(KindValidation, CodeInvalidQuantity, "quantity must be greater than zero").
		WithDetail("quantity", quantity)
}

func InvalidTransition(from, to string) *Error {
	return New(KindConflict, CodeInvalidTransition, fmt.Sprintf("cannot move from %s to %s", from, to)).
		WithDetail("from", from).
		WithDetail("to", to)
}

func SubscriptionExpired(shopID uint) *Error {
	return New(KindForbidden, CodeSubscriptionExpired, "shop subscription has expired").
		WithDetail("shop_id", shopID)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

func IsCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// FromDB maps a store error onto the taxonomy. entity names the record
// for not-found messages. Errors that already carry a kind pass through.
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate(entity, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return referenceNotFound(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return duplicate(entity, err)
		case "23503":
			return referenceNotFound(err)
		case "22P02":
			return &Error{Kind: KindValidation, Code: CodeInvalidFormat, Message: "invalid data format", Cause: err}
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return duplicate(entity, err)
		case 1452:
			return referenceNotFound(err)
		}
	}

	return Persistence(err)
}

func duplicate(entity string, cause error) *Error {
	return &Error{Kind: KindConflict, Code: CodeDuplicate, Message: entity + " already exists", Cause: cause}
}

func referenceNotFound(cause error) *Error {
	return &Error{Kind: KindValidation, Code: CodeReferenceNotFound, Message: "referenced record not found", Cause: cause}
}
