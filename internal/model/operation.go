package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleViewer  Role = "viewer"
	RoleUnknown Role = "unknown"
)

// ParseRole maps a raw role name to a known Role. Matching is exact, so a
// typo such as "Admin" never grants admin rights.
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser, RoleViewer:
		return r
	default:
		return RoleUnknown
	}
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*r = RoleUnknown
		return nil
	}
	*r = ParseRole(s)
	return nil
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusUnknown  Status = "unknown"
)

func ParseStatus(s string) Status {
	switch st := Status(s); st {
	case StatusActive, StatusInactive:
		return st
	default:
		return StatusUnknown
	}
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = StatusUnknown
		return nil
	}
	*s = ParseStatus(raw)
	return nil
}

type OperationKind string

const (
	OpDeposit       OperationKind = "deposit"
	OpWithdraw      OperationKind = "withdraw"
	OpTransfer      OperationKind = "transfer"
	OpAccessData    OperationKind = "access_data"
	OpValidateOnly  OperationKind = "validate_only"
	OpCreateDeposit OperationKind = "create_deposit"
	OpCloseAccount  OperationKind = "close_account"

	// OpAuditRecord only appears on outcome events emitted by batch audits.
	OpAuditRecord OperationKind = "audit_record"
)

type Actor struct {
	Role Role `json:"role"`
}

// AccountState is owned by the caller and is never stored. Balance must be
// non-negative and within WithinBounds.
type AccountState struct {
	Balance decimal.Decimal `json:"balance"`
	Status  Status          `json:"status"`
}

type OperationRequest struct {
	Kind    OperationKind `json:"kind"`
	Amount  Amount        `json:"amount"`
	Actor   Actor         `json:"actor"`
	Account AccountState  `json:"account"`
}

type RejectionKind string

const (
	RejectNegativeAmount     RejectionKind = "negative_amount"
	RejectInsufficientFunds  RejectionKind = "insufficient_funds"
	RejectUnauthorizedAccess RejectionKind = "unauthorized_access"
	RejectUnauthorizedRole   RejectionKind = "unauthorized_role"
	RejectAccountInactive    RejectionKind = "account_inactive"
	RejectNonNumericAmount   RejectionKind = "non_numeric_amount"
	RejectNotAMapping        RejectionKind = "not_a_mapping"
	RejectAmountOutOfRange   RejectionKind = "amount_out_of_range"
	RejectInvalidBalance     RejectionKind = "invalid_balance"
)

type Rejection struct {
	Kind    RejectionKind `json:"kind"`
	Message string        `json:"message"`
}

// Outcome is the result of a single operation. Balance is only set for
// accepted operations that change the balance.
type Outcome struct {
	Operation OperationKind    `json:"operation"`
	Accepted  bool             `json:"accepted"`
	Balance   *decimal.Decimal `json:"balance,omitempty"`
	Rejection *Rejection       `json:"rejection,omitempty"`
}
