package validator

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txguard/internal/model"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func amt(v any) model.Amount { return model.AmountOf(v) }

func TestValidateDeposit(t *testing.T) {
	tests := []struct {
		name   string
		amount model.Amount
		want   error
	}{
		{"zero", amt(0), nil},
		{"positive", amt(100), nil},
		{"fraction", amt(0.5), nil},
		{"negative", amt(-100), ErrNegativeAmount},
		{"tiny negative", amt(-0.01), ErrNegativeAmount},
		{"string", amt("100"), ErrNonNumericAmount},
		{"missing", model.Amount{}, ErrNonNumericAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeposit(tt.amount)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateWithdraw(t *testing.T) {
	got, err := ValidateWithdraw(dec(200), amt(50))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(150)), "got %s", got)

	got, err = ValidateWithdraw(dec(100), amt(100))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ValidateWithdraw(dec(50), amt(100))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = ValidateWithdraw(dec(50), amt("10"))
	assert.ErrorIs(t, err, ErrNonNumericAmount)
}

func TestValidateWithdraw_ExactDecimal(t *testing.T) {
	balance := decimal.RequireFromString("0.3")
	got, err := ValidateWithdraw(balance, amt(decimal.RequireFromString("0.1")))
	require.NoError(t, err)
	assert.Equal(t, "0.2", got.String())
}

func TestValidateTransfer_CheckOrder(t *testing.T) {
	_, err := ValidateTransfer(dec(200), amt(100), model.StatusInactive)
	assert.ErrorIs(t, err, ErrAccountInactive)

	// inactive wins over a bad type and over missing funds
	_, err = ValidateTransfer(dec(50), amt("100"), model.StatusInactive)
	assert.ErrorIs(t, err, ErrAccountInactive)

	_, err = ValidateTransfer(dec(200), amt("100"), model.StatusActive)
	assert.ErrorIs(t, err, ErrNonNumericAmount)

	_, err = ValidateTransfer(dec(50), amt(100), model.StatusActive)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = ValidateTransfer(dec(50), amt(10), model.StatusUnknown)
	assert.ErrorIs(t, err, ErrAccountInactive)

	got, err := ValidateTransfer(dec(200), amt(100), model.StatusActive)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(100)))
}

func TestValidateAccess(t *testing.T) {
	assert.NoError(t, ValidateAccess(model.RoleAdmin))
	assert.ErrorIs(t, ValidateAccess(model.RoleUser), ErrUnauthorizedAccess)
	assert.ErrorIs(t, ValidateAccess(model.ParseRole("Admin")), ErrUnauthorizedAccess)
	assert.ErrorIs(t, ValidateAccess(model.RoleUnknown), ErrUnauthorizedAccess)
}

func TestValidateTransactionRecord(t *testing.T) {
	tests := []struct {
		record string
		want   error
	}{
		{`{"amount": -500}`, ErrNegativeAmount},
		{`{"user_role": "viewer"}`, ErrUnauthorizedRole},
		{`{"amount": 50, "user_role": "admin"}`, nil},
		{`{}`, nil},
		{`{"note": "ignored"}`, nil},
		{`{"amount": -1, "user_role": "viewer"}`, ErrNegativeAmount},
		{`{"amount": "12"}`, ErrNonNumericAmount},
		{`{"amount": null}`, ErrNonNumericAmount},
		{`{"user_role": 7}`, ErrUnauthorizedRole},
		{`{"amount": 1e-20000000}`, ErrAmountOutOfRange},
		{`{"amount": -1e99999999999, "user_role": "viewer"}`, ErrAmountOutOfRange},
		{`{"amount": 1e64, "user_role": "admin"}`, nil},
		{`[1, 2]`, ErrNotAMapping},
		{`"text"`, ErrNotAMapping},
		{`null`, ErrNotAMapping},
		{`42`, ErrNotAMapping},
		{``, ErrNotAMapping},
	}
	for _, tt := range tests {
		t.Run(tt.record, func(t *testing.T) {
			err := ValidateTransactionRecord(json.RawMessage(tt.record))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateDepositTransaction(t *testing.T) {
	_, err := CreateDepositTransaction(model.RoleUser, amt(-100), model.StatusActive, dec(0))
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)

	_, err = CreateDepositTransaction(model.RoleAdmin, amt(-100), model.StatusInactive, dec(0))
	assert.ErrorIs(t, err, ErrAccountInactive)

	_, err = CreateDepositTransaction(model.RoleAdmin, amt(-100), model.StatusActive, dec(0))
	assert.ErrorIs(t, err, ErrNegativeAmount)

	got, err := CreateDepositTransaction(model.RoleAdmin, amt(100), model.StatusActive, dec(250))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(350)))
}

func TestEvaluate(t *testing.T) {
	out, err := Evaluate(model.OperationRequest{
		Kind:    model.OpCreateDeposit,
		Amount:  amt(100),
		Actor:   model.Actor{Role: model.RoleAdmin},
		Account: model.AccountState{Balance: dec(0), Status: model.StatusActive},
	})
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	require.NotNil(t, out.Balance)
	assert.True(t, out.Balance.Equal(dec(100)))
	assert.Nil(t, out.Rejection)

	out, err = Evaluate(model.OperationRequest{Kind: model.OpAccessData, Actor: model.Actor{Role: model.RoleUser}})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Nil(t, out.Balance)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, model.RejectUnauthorizedAccess, out.Rejection.Kind)

	out, err = Evaluate(model.OperationRequest{Kind: model.OpCloseAccount, Actor: model.Actor{Role: model.RoleAdmin}})
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.Nil(t, out.Balance)

	out, err = Evaluate(model.OperationRequest{Kind: model.OpValidateOnly, Amount: amt(-200)})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, model.RejectNegativeAmount, out.Rejection.Kind)

	out, err = Evaluate(model.OperationRequest{
		Kind:    model.OpDeposit,
		Amount:  amt(40),
		Account: model.AccountState{Balance: dec(60)},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Balance)
	assert.True(t, out.Balance.Equal(dec(100)))

	_, err = Evaluate(model.OperationRequest{Kind: "safe_divide"})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestEvaluate_Idempotent(t *testing.T) {
	req := model.OperationRequest{
		Kind:    model.OpTransfer,
		Amount:  amt(30),
		Account: model.AccountState{Balance: dec(100), Status: model.StatusActive},
	}
	first, err := Evaluate(req)
	require.NoError(t, err)
	second, err := Evaluate(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, req.Account.Balance.Equal(dec(100)), "caller balance must not change")
}

func TestEvaluate_NumberBounds(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		accepted bool
		kind     model.RejectionKind
	}{
		{"tiny exponent withdraw", `{"kind": "withdraw", "amount": 1e-20000000, "account": {"balance": 1}}`, false, model.RejectAmountOutOfRange},
		{"huge exponent deposit", `{"kind": "deposit", "amount": 1e2000000000, "account": {"balance": 0.5}}`, false, model.RejectAmountOutOfRange},
		{"exponent beyond int32", `{"kind": "withdraw", "amount": 1e99999999999, "account": {"balance": 1}}`, false, model.RejectAmountOutOfRange},
		{"negative huge exponent", `{"kind": "validate_only", "amount": -1e999}`, false, model.RejectAmountOutOfRange},
		{"too many digits", `{"kind": "deposit", "amount": 10000000000000000000000000000000000000000000000000000000000000000, "account": {"balance": 0}}`, false, model.RejectAmountOutOfRange},
		{"largest exponent", `{"kind": "deposit", "amount": 1e64, "account": {"balance": 0.5}}`, true, ""},
		{"smallest exponent", `{"kind": "validate_only", "amount": 1e-64}`, true, ""},
		{"balance tiny exponent", `{"kind": "withdraw", "amount": 1, "account": {"balance": 1e-20000000}}`, false, model.RejectInvalidBalance},
		{"negative balance deposit", `{"kind": "deposit", "amount": 1, "account": {"balance": -5}}`, false, model.RejectInvalidBalance},
		{"negative balance withdraw", `{"kind": "withdraw", "amount": 1, "account": {"balance": -5}}`, false, model.RejectInvalidBalance},
		{"amount checked before balance", `{"kind": "withdraw", "amount": "1", "account": {"balance": -5}}`, false, model.RejectNonNumericAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.OperationRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			out, err := Evaluate(req)
			require.NoError(t, err)
			assert.Equal(t, tt.accepted, out.Accepted)
			if tt.accepted {
				assert.Nil(t, out.Rejection)
				return
			}
			require.NotNil(t, out.Rejection)
			assert.Equal(t, tt.kind, out.Rejection.Kind)
		})
	}
}

func TestEvaluate_AbsentStatus(t *testing.T) {
	out, err := Evaluate(model.OperationRequest{
		Kind:    model.OpTransfer,
		Amount:  amt(10),
		Account: model.AccountState{Balance: dec(100)},
	})
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	require.NotNil(t, out.Balance)
	assert.True(t, out.Balance.Equal(dec(90)))

	out, err = Evaluate(model.OperationRequest{
		Kind:    model.OpCreateDeposit,
		Amount:  amt(10),
		Actor:   model.Actor{Role: model.RoleAdmin},
		Account: model.AccountState{Balance: dec(100)},
	})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, model.RejectAccountInactive, out.Rejection.Kind)
}
