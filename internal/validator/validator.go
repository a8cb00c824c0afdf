// Package validator holds the pure decision logic of the transaction
// pipeline. Nothing here performs I/O or keeps state between calls; every
// rejection is returned as an *Error value.
package validator

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"txguard/internal/model"
)

func numeric(amount model.Amount) (decimal.Decimal, error) {
	if !amount.Present() {
		return decimal.Zero, errAmountRequired
	}
	if !amount.Numeric() {
		return decimal.Zero, ErrNonNumericAmount
	}
	if !amount.InRange() {
		return decimal.Zero, ErrAmountOutOfRange
	}
	return amount.Decimal(), nil
}

func checkBalance(balance decimal.Decimal) error {
	if balance.IsNegative() || !model.WithinBounds(balance) {
		return ErrInvalidBalance
	}
	return nil
}

// ValidateDeposit accepts any non-negative numeric amount.
func ValidateDeposit(amount model.Amount) error {
	v, err := numeric(amount)
	if err != nil {
		return err
	}
	if v.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// ValidateWithdraw returns balance - amount, or ErrInsufficientFunds when the
// amount exceeds the balance. The balance is checked after the amount.
func ValidateWithdraw(balance decimal.Decimal, amount model.Amount) (decimal.Decimal, error) {
	v, err := numeric(amount)
	if err != nil {
		return decimal.Zero, err
	}
	if err := checkBalance(balance); err != nil {
		return decimal.Zero, err
	}
	if v.GreaterThan(balance) {
		return decimal.Zero, ErrInsufficientFunds
	}
	return balance.Sub(v), nil
}

// ValidateTransfer checks account status first, then the amount type, then
// funds.
func ValidateTransfer(balance decimal.Decimal, amount model.Amount, status model.Status) (decimal.Decimal, error) {
	if status != model.StatusActive {
		return decimal.Zero, ErrAccountInactive
	}
	return ValidateWithdraw(balance, amount)
}

func ValidateAccess(role model.Role) error {
	if role != model.RoleAdmin {
		return ErrUnauthorizedAccess
	}
	return nil
}

// ValidateTransactionRecord judges one loosely structured record. The record
// must be a JSON object; "amount" and "user_role" are checked only when
// present, in that order.
func ValidateTransactionRecord(record json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil || fields == nil {
		return ErrNotAMapping
	}

	if raw, ok := fields["amount"]; ok {
		var amount model.Amount
		_ = json.Unmarshal(raw, &amount)
		if !amount.Numeric() {
			return ErrNonNumericAmount
		}
		if !amount.InRange() {
			return ErrAmountOutOfRange
		}
		if amount.Decimal().IsNegative() {
			return ErrNegativeAmount
		}
	}

	if raw, ok := fields["user_role"]; ok {
		var role model.Role
		_ = json.Unmarshal(raw, &role)
		if role != model.RoleAdmin {
			return ErrUnauthorizedRole
		}
	}

	return nil
}

// CreateDepositTransaction checks access, then account status, then the
// amount, and returns the balance after the deposit.
func CreateDepositTransaction(role model.Role, amount model.Amount, status model.Status, balance decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateAccess(role); err != nil {
		return decimal.Zero, err
	}
	if status != model.StatusActive {
		return decimal.Zero, ErrAccountInactive
	}
	return deposit(balance, amount)
}

func deposit(balance decimal.Decimal, amount model.Amount) (decimal.Decimal, error) {
	if err := ValidateDeposit(amount); err != nil {
		return decimal.Zero, err
	}
	if err := checkBalance(balance); err != nil {
		return decimal.Zero, err
	}
	return balance.Add(amount.Decimal()), nil
}

// Evaluate dispatches a request to the matching check and folds the result
// into an Outcome. The returned error is non-nil only for unknown kinds.
func Evaluate(req model.OperationRequest) (model.Outcome, error) {
	var (
		balance decimal.Decimal
		applies bool
		err     error
	)

	switch req.Kind {
	case model.OpDeposit:
		applies = true
		balance, err = deposit(req.Account.Balance, req.Amount)
	case model.OpWithdraw:
		applies = true
		balance, err = ValidateWithdraw(req.Account.Balance, req.Amount)
	case model.OpTransfer:
		applies = true
		// An absent status means active for transfers.
		status := req.Account.Status
		if status == "" {
			status = model.StatusActive
		}
		balance, err = ValidateTransfer(req.Account.Balance, req.Amount, status)
	case model.OpCreateDeposit:
		applies = true
		balance, err = CreateDepositTransaction(req.Actor.Role, req.Amount, req.Account.Status, req.Account.Balance)
	case model.OpAccessData, model.OpCloseAccount:
		err = ValidateAccess(req.Actor.Role)
	case model.OpValidateOnly:
		err = ValidateDeposit(req.Amount)
	default:
		return model.Outcome{}, fmt.Errorf("%w: %q", ErrUnsupportedOperation, req.Kind)
	}

	out := model.Outcome{Operation: req.Kind, Accepted: err == nil, Rejection: Rejection(err)}
	if out.Accepted && applies {
		out.Balance = &balance
	}
	return out, nil
}
