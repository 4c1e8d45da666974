package core

import "fmt"

// ErrorKind is the closed taxonomy of failure classes: not-found,
// validation, business-rule, concurrency, and internal. Every public
// operation returns a *Error (or nil); nothing is thrown across a
// process boundary.
type ErrorKind int

const (
	ErrNotFound ErrorKind = iota
	ErrValidation
	ErrBusinessRule
	ErrConcurrency
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotFound:
		return "not_found"
	case ErrValidation:
		return "validation"
	case ErrBusinessRule:
		return "business_rule"
	case ErrConcurrency:
		return "concurrency"
	case ErrInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the single error type returned from every public operation in
// this module. Code is one of the named failure modes
// (DuplicateSKU, InsufficientStock, BOMCycle, ...); Kind buckets it for
// callers that only care about the HTTP-equivalent status class.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Field   string
	wrapped error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is supports errors.Is by comparing Code, so callers can write
// errors.Is(err, target) against a target built with
// NewError(..., CodeInsufficientStock, ...).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// NewError constructs a taxonomy error.
func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// NewFieldError constructs a validation error naming the offending field.
func NewFieldError(kind ErrorKind, code, message, field string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Field: field}
}

// Wrap attaches an underlying cause (e.g. a driver error) to a taxonomy
// error without letting that cause's message leak past the mapped code.
func Wrap(kind ErrorKind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, wrapped: cause}
}

// Sentinel codes referenced by name across components.
const (
	CodeUnknownItem         = "UnknownItem"
	CodeUnknownLocation     = "UnknownLocation"
	CodeUnknownReservation  = "UnknownReservation"
	CodeUnknownOrder        = "UnknownOrder"
	CodeUnknownMaterialType = "UnknownMaterialType"
	CodeUnknownColor        = "UnknownColor"

	CodeDuplicateSKU        = "DuplicateSKU"
	CodeInvalidUnit         = "InvalidUnit"
	CodeIncommensurable     = "IncommensurableUnits"
	CodeBOMCycle            = "BOMCycle"
	CodeInvalidTransition   = "InvalidTransition"
	CodeNegativeQuantity    = "NegativeQuantity"

	CodeInsufficientStock      = "InsufficientStock"
	CodeInsufficientReserve    = "InsufficientReservation"
	CodeMissingActiveBOM       = "MissingActiveBOM"
	CodeShipmentBlocked        = "ShipmentBlocked"
	CodeNegativeNotAllowed     = "NegativeNotAllowed"

	CodeConcurrencyConflict = "ConcurrencyConflict"

	CodeCatalogInconsistency = "CatalogInconsistency"
	CodeLedgerCorruption     = "LedgerCorruption"
)

// Convenience constructors for the most frequently returned sentinels.

func ErrItemNotFound(sku string) *Error {
	return NewFieldError(ErrNotFound, CodeUnknownItem, "item not found: "+sku, "sku")
}

func ErrDuplicateSKU(sku string) *Error {
	return NewFieldError(ErrValidation, CodeDuplicateSKU, "sku already in use: "+sku, "sku")
}

func ErrBOMCycle(path string) *Error {
	return NewError(ErrValidation, CodeBOMCycle, "bom cycle detected: "+path)
}

func ErrIncommensurable(from, to string) *Error {
	return NewError(ErrValidation, CodeIncommensurable, "cannot convert "+from+" to "+to)
}

func ErrConcurrencyConflict(msg string) *Error {
	return NewError(ErrConcurrency, CodeConcurrencyConflict, msg)
}
