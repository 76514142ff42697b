package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDuplicateOrder  = errors.New("an identical order is already being processed")
)

// ErrorKind classifies a commerce failure. The aggregate transaction's
// rollback decision is a pure function of the kind: everything except
// KindFatal is rolled back.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindUpstream
	KindPayment
	KindPersistence
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	case KindPayment:
		return "payment"
	case KindPersistence:
		return "persistence"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Payment sub-kind codes as reported by the gateway.
const (
	PaymentCodeCardExpired     = "card_expired"
	PaymentCodeCardRefused     = "card_refused"
	PaymentCodeCVNCheckFailed  = "cvn_check_failed"
	PaymentCodeGatewayIdentity = "gateway_identity"
)

// Error carries an ErrorKind and an optional machine-readable code
// alongside the underlying cause.
type Error struct {
	Kind ErrorKind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

func Upstream(err error) *Error { return &Error{Kind: KindUpstream, Err: err} }

func Payment(code string, err error) *Error {
	return &Error{Kind: KindPayment, Code: code, Err: err}
}

func Persistence(err error) *Error { return &Error{Kind: KindPersistence, Err: err} }

func Fatal(err error) *Error { return &Error{Kind: KindFatal, Err: err} }

// KindOf reports the classification of err, KindUnknown when it carries none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsFatal reports whether err must never be rolled back.
func IsFatal(err error) bool { return KindOf(err) == KindFatal }

// IncompleteRollbackError wraps the original transaction failure when one or
// more rollback steps also failed while unwinding. The persisted/upstream
// state could not be fully reverted and needs manual reconciliation.
// errors.Is/As still match the original cause through Unwrap.
type IncompleteRollbackError struct {
	Cause    error
	Failures []error
}

func (e *IncompleteRollbackError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("manual reconciliation required: %v (rollback failures: %s)", e.Cause, strings.Join(msgs, "; "))
}

func (e *IncompleteRollbackError) Unwrap() error { return e.Cause }

// RollbackIncomplete reports whether err signals a partially unwound transaction.
func RollbackIncomplete(err error) bool {
	var ire *IncompleteRollbackError
	return errors.As(err, &ire)
}
