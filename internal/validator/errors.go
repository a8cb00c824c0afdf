package validator

import (
	"errors"

	"txguard/internal/model"
)

// Error is a rejection. Two Errors match under errors.Is when their kinds are
// equal, so callers can compare against the sentinels below even when the
// message differs.
type Error struct {
	Kind    model.RejectionKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNegativeAmount     = &Error{Kind: model.RejectNegativeAmount, Message: "amount must not be negative"}
	ErrInsufficientFunds  = &Error{Kind: model.RejectInsufficientFunds, Message: "insufficient funds"}
	ErrUnauthorizedAccess = &Error{Kind: model.RejectUnauthorizedAccess, Message: "only administrators may perform this operation"}
	ErrUnauthorizedRole   = &Error{Kind: model.RejectUnauthorizedRole, Message: "record role is not allowed to transact"}
	ErrAccountInactive    = &Error{Kind: model.RejectAccountInactive, Message: "account is not active"}
	ErrNonNumericAmount   = &Error{Kind: model.RejectNonNumericAmount, Message: "amount must be a number"}
	ErrNotAMapping        = &Error{Kind: model.RejectNotAMapping, Message: "transaction record must be an object"}
	ErrAmountOutOfRange   = &Error{Kind: model.RejectAmountOutOfRange, Message: "amount is outside the supported range"}
	ErrInvalidBalance     = &Error{Kind: model.RejectInvalidBalance, Message: "balance must be non-negative and within the supported range"}

	errAmountRequired = &Error{Kind: model.RejectNonNumericAmount, Message: "amount is required"}
)

// ErrUnsupportedOperation is returned for request kinds the pipeline does not
// know. It is a malformed request, not a rejection.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// Rejection converts a rejection error into its wire form. It returns nil for
// a nil error.
func Rejection(err error) *model.Rejection {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &model.Rejection{Kind: e.Kind, Message: e.Message}
	}
	return &model.Rejection{Message: err.Error()}
}
