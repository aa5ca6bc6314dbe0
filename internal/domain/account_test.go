package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testDay = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

func newTestAccount(t *testing.T, accountType AccountType, balance int64) *Account {
	t.Helper()
	acct, err := NewAccount(NewAccountParams{
		OwnerID:        "USR-" + uuid.NewString()[:8],
		Type:           accountType,
		InitialDeposit: mustMoney(t, balance),
		Now:            fixedClock(testDay),
	})
	require.NoError(t, err)
	return acct
}

func TestNewAccount(t *testing.T) {
	acct := newTestAccount(t, TypeChecking, 100_000)

	assert.True(t, acct.IsNew())
	assert.Empty(t, acct.ID().String())
	assert.Equal(t, StatusActive, acct.Status())
	assert.Equal(t, int64(100_000), acct.Balance().Int64())
	assert.True(t, acct.DailyWithdrawn().IsZero())
	assert.Equal(t, "110", acct.Number().Prefix())
	assert.True(t, sameDate(testDay, acct.LastActivityDate()))
	assert.Zero(t, acct.Version())
}

func TestNewAccountValidation(t *testing.T) {
	t.Run("missing owner", func(t *testing.T) {
		_, err := NewAccount(NewAccountParams{Type: TypeChecking})
		require.Error(t, err)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := NewAccount(NewAccountParams{OwnerID: "USR-1", Type: AccountType("LOAN")})
		require.ErrorIs(t, err, ErrInvalidAccountType)
	})

	t.Run("fixed deposit below opening minimum", func(t *testing.T) {
		_, err := NewAccount(NewAccountParams{
			OwnerID:        "USR-1",
			Type:           TypeFixedDeposit,
			InitialDeposit: mustMoney(t, 999_999),
		})
		require.ErrorIs(t, err, ErrInvalidInitialDeposit)

		var ide *InitialDepositError
		require.ErrorAs(t, err, &ide)
		assert.Equal(t, int64(999_999), ide.Deposit.Int64())
		assert.Equal(t, int64(1_000_000), ide.Minimum.Int64())
	})

	t.Run("fixed deposit at opening minimum", func(t *testing.T) {
		acct := newTestAccount(t, TypeFixedDeposit, 1_000_000)
		assert.Equal(t, "330", acct.Number().Prefix())
	})
}

func TestRestoreAccount(t *testing.T) {
	number, err := GenerateAccountNumber(TypeSavings, nil)
	require.NoError(t, err)

	deletedAt := testDay.Add(-time.Hour)
	acct, err := RestoreAccount(RestoreAccountParams{
		ID:             "ACC-a1b2c3d4",
		Number:         number.String(),
		OwnerID:        "USR-owner",
		Type:           string(TypeSavings),
		Balance:        mustMoney(t, 42),
		DailyWithdrawn: mustMoney(t, 7),
		LastActivity:   testDay.AddDate(0, 0, -3),
		Status:         string(StatusDormant),
		Version:        9,
		CreatedBy:      "system",
		DeletedAt:      &deletedAt,
		DeletedBy:      "admin",
		Deleted:        true,
	})
	require.NoError(t, err)

	assert.False(t, acct.IsNew())
	assert.Equal(t, AccountID("ACC-a1b2c3d4"), acct.ID())
	assert.Equal(t, number, acct.Number())
	assert.Equal(t, TypeSavings, acct.Type())
	assert.Equal(t, StatusDormant, acct.Status())
	assert.Equal(t, int64(42), acct.Balance().Int64())
	assert.Equal(t, int64(7), acct.DailyWithdrawn().Int64())
	assert.Equal(t, int64(9), acct.Version())
	assert.Equal(t, "system", acct.CreatedBy())
	assert.True(t, acct.IsDeleted())
	require.NotNil(t, acct.DeletedAt())
	assert.Equal(t, deletedAt, *acct.DeletedAt())
}

func TestRestoreAccountFormatChecks(t *testing.T) {
	number, err := GenerateAccountNumber(TypeChecking, nil)
	require.NoError(t, err)

	base := RestoreAccountParams{
		ID:      "ACC-a1b2c3d4",
		Number:  number.String(),
		OwnerID: "USR-owner",
		Type:    string(TypeChecking),
		Status:  string(StatusActive),
	}

	t.Run("bad id", func(t *testing.T) {
		p := base
		p.ID = "not-an-id"
		_, err := RestoreAccount(p)
		require.ErrorIs(t, err, ErrInvalidAccountIDFormat)
	})

	t.Run("bad number checksum", func(t *testing.T) {
		p := base
		p.Number = "110-1234-5678-00"
		_, err := RestoreAccount(p)
		require.ErrorIs(t, err, ErrInvalidAccountNumberFormat)
	})

	t.Run("bad type", func(t *testing.T) {
		p := base
		p.Type = "LOAN"
		_, err := RestoreAccount(p)
		require.ErrorIs(t, err, ErrInvalidAccountType)
	})

	t.Run("bad status", func(t *testing.T) {
		p := base
		p.Status = "SUSPENDED"
		_, err := RestoreAccount(p)
		require.Error(t, err)
	})

	t.Run("business rules not re-applied", func(t *testing.T) {
		// A fixed deposit below its opening minimum restores fine:
		// the data was valid when saved.
		fdNumber, err := GenerateAccountNumber(TypeFixedDeposit, nil)
		require.NoError(t, err)
		p := base
		p.Number = fdNumber.String()
		p.Type = string(TypeFixedDeposit)
		p.Balance = mustMoney(t, 10)
		_, err = RestoreAccount(p)
		require.NoError(t, err)
	})
}

func TestDeposit(t *testing.T) {
	t.Run("adds and stamps activity", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 1_000)
		require.NoError(t, acct.Deposit(mustMoney(t, 500)))
		assert.Equal(t, int64(1_500), acct.Balance().Int64())
	})

	t.Run("dormant account accepts deposits", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 1_000)
		require.NoError(t, acct.ToDormant())
		require.NoError(t, acct.Deposit(mustMoney(t, 500)))
		assert.Equal(t, int64(1_500), acct.Balance().Int64())
	})

	t.Run("frozen rejected with its own kind", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 1_000)
		require.NoError(t, acct.Freeze())
		err := acct.Deposit(mustMoney(t, 500))
		require.ErrorIs(t, err, ErrAccountFrozen)
		assert.Equal(t, int64(1_000), acct.Balance().Int64())
	})

	t.Run("closed rejected with its own kind", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 0)
		require.NoError(t, acct.Close())
		err := acct.Deposit(mustMoney(t, 500))
		require.ErrorIs(t, err, ErrAccountAlreadyClosed)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 1_000)
		err := acct.Deposit(ZeroMoney)
		require.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, int64(1_000), acct.Balance().Int64())
	})
}

func TestWithdraw(t *testing.T) {
	t.Run("subtracts and accumulates daily counter", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 100_000)
		require.NoError(t, acct.Withdraw(mustMoney(t, 30_000)))
		require.NoError(t, acct.Withdraw(mustMoney(t, 20_000)))
		assert.Equal(t, int64(50_000), acct.Balance().Int64())
		assert.Equal(t, int64(50_000), acct.DailyWithdrawn().Int64())
	})

	t.Run("insufficient balance leaves state untouched", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 100_000)
		err := acct.Withdraw(mustMoney(t, 150_000))
		require.ErrorIs(t, err, ErrInsufficientBalance)

		var ife *InsufficientFundsError
		require.ErrorAs(t, err, &ife)
		assert.Equal(t, int64(100_000), ife.Balance.Int64())
		assert.Equal(t, int64(150_000), ife.Requested.Int64())

		assert.Equal(t, int64(100_000), acct.Balance().Int64())
		assert.True(t, acct.DailyWithdrawn().IsZero())
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 1_000)
		require.ErrorIs(t, acct.Withdraw(ZeroMoney), ErrInvalidAmount)
	})

	t.Run("dormant rejected", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 1_000)
		require.NoError(t, acct.ToDormant())
		require.ErrorIs(t, acct.Withdraw(mustMoney(t, 100)), ErrAccountDormant)
	})

	t.Run("frozen rejected", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 1_000)
		require.NoError(t, acct.Freeze())
		require.ErrorIs(t, acct.Withdraw(mustMoney(t, 100)), ErrAccountFrozen)
	})

	t.Run("closed rejected", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 0)
		require.NoError(t, acct.Close())
		require.ErrorIs(t, acct.Withdraw(mustMoney(t, 100)), ErrAccountAlreadyClosed)
	})

	t.Run("fixed deposit rejected regardless of status", func(t *testing.T) {
		acct := newTestAccount(t, TypeFixedDeposit, 2_000_000)
		err := acct.Withdraw(mustMoney(t, 100))
		require.ErrorIs(t, err, ErrAccountNotActive)
		assert.Equal(t, int64(2_000_000), acct.Balance().Int64())
		assert.False(t, acct.CanWithdraw())
	})
}

func TestWithdrawDailyLimit(t *testing.T) {
	// Wind an active checking account up to one unit below the ceiling.
	setup := func(t *testing.T) *Account {
		number, err := GenerateAccountNumber(TypeChecking, nil)
		require.NoError(t, err)
		acct, err := RestoreAccount(RestoreAccountParams{
			ID:             "ACC-a1b2c3d4",
			Number:         number.String(),
			OwnerID:        "USR-owner",
			Type:           string(TypeChecking),
			Balance:        mustMoney(t, 60_000_000),
			DailyWithdrawn: mustMoney(t, 49_999_999),
			LastActivity:   testDay,
			Status:         string(StatusActive),
			Version:        1,
			Now:            fixedClock(testDay),
		})
		require.NoError(t, err)
		return acct
	}

	t.Run("one over the ceiling fails with amounts attached", func(t *testing.T) {
		acct := setup(t)
		err := acct.Withdraw(mustMoney(t, 2))
		require.ErrorIs(t, err, ErrDailyWithdrawalLimitExceeded)

		var dle *DailyLimitError
		require.ErrorAs(t, err, &dle)
		assert.Equal(t, int64(49_999_999), dle.Used.Int64())
		assert.Equal(t, int64(50_000_000), dle.Limit.Int64())
		assert.Equal(t, int64(2), dle.Requested.Int64())

		assert.Equal(t, int64(60_000_000), acct.Balance().Int64())
		assert.Equal(t, int64(49_999_999), acct.DailyWithdrawn().Int64())
	})

	t.Run("exactly at the ceiling succeeds", func(t *testing.T) {
		acct := setup(t)
		require.NoError(t, acct.Withdraw(mustMoney(t, 1)))
		assert.Equal(t, int64(50_000_000), acct.DailyWithdrawn().Int64())
	})
}

func TestWithdrawDailyRollover(t *testing.T) {
	yesterday := testDay.AddDate(0, 0, -1)

	number, err := GenerateAccountNumber(TypeChecking, nil)
	require.NoError(t, err)
	acct, err := RestoreAccount(RestoreAccountParams{
		ID:             "ACC-a1b2c3d4",
		Number:         number.String(),
		OwnerID:        "USR-owner",
		Type:           string(TypeChecking),
		Balance:        mustMoney(t, 60_000_000),
		DailyWithdrawn: mustMoney(t, 40_000_000),
		LastActivity:   yesterday,
		Status:         string(StatusActive),
		Version:        1,
		Now:            fixedClock(testDay),
	})
	require.NoError(t, err)

	// 40M already used yesterday would block a 20M withdrawal; the lazy
	// date rollover resets the counter before the limit check.
	require.NoError(t, acct.Withdraw(mustMoney(t, 20_000_000)))
	assert.Equal(t, int64(20_000_000), acct.DailyWithdrawn().Int64())
	assert.True(t, sameDate(testDay, acct.LastActivityDate()))
}

func TestClose(t *testing.T) {
	acct := newTestAccount(t, TypeChecking, 500)

	err := acct.Close()
	require.ErrorIs(t, err, ErrBalanceNotZero)
	var bnz *BalanceNotZeroError
	require.ErrorAs(t, err, &bnz)
	assert.Equal(t, int64(500), bnz.Balance.Int64())
	assert.Equal(t, StatusActive, acct.Status())

	require.NoError(t, acct.Withdraw(mustMoney(t, 500)))
	require.NoError(t, acct.Close())
	assert.Equal(t, StatusClosed, acct.Status())
	assert.True(t, acct.IsClosed())

	require.ErrorIs(t, acct.Close(), ErrAccountAlreadyClosed)
}

func TestStatusOperations(t *testing.T) {
	t.Run("freeze and reactivate", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 100)
		require.NoError(t, acct.Freeze())
		assert.Equal(t, StatusFrozen, acct.Status())
		assert.False(t, acct.CanDeposit())
		assert.False(t, acct.CanWithdraw())

		require.NoError(t, acct.Activate())
		assert.True(t, acct.IsActive())
	})

	t.Run("dormant and reactivate", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 100)
		require.NoError(t, acct.ToDormant())
		assert.True(t, acct.CanDeposit())
		assert.False(t, acct.CanWithdraw())

		require.NoError(t, acct.Activate())
		assert.True(t, acct.IsActive())
	})

	t.Run("activate when already active", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 100)
		require.ErrorIs(t, acct.Activate(), ErrAccountAlreadyActive)
	})

	t.Run("freeze a frozen account", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 100)
		require.NoError(t, acct.Freeze())
		err := acct.Freeze()
		require.ErrorIs(t, err, ErrInvalidStatusTransition)

		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, StatusFrozen, te.From)
		assert.Equal(t, StatusFrozen, te.To)
	})

	t.Run("closed is terminal", func(t *testing.T) {
		acct := newTestAccount(t, TypeChecking, 0)
		require.NoError(t, acct.Close())
		require.ErrorIs(t, acct.Freeze(), ErrInvalidStatusTransition)
		require.ErrorIs(t, acct.ToDormant(), ErrInvalidStatusTransition)
		require.ErrorIs(t, acct.Activate(), ErrInvalidStatusTransition)
	})
}

func TestAssignID(t *testing.T) {
	acct := newTestAccount(t, TypeChecking, 0)
	require.True(t, acct.IsNew())

	id := GenerateAccountID()
	require.NoError(t, acct.AssignID(id))
	assert.False(t, acct.IsNew())
	assert.Equal(t, id, acct.ID())

	require.Error(t, acct.AssignID(GenerateAccountID()))
}

func TestDomainErrorClassification(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{ErrInvalidAmount, "ACCOUNT_004", 400},
		{ErrAccountNotFound, "ACCOUNT_010", 404},
		{&InsufficientFundsError{}, "ACCOUNT_020", 400},
		{&NotActiveError{Detail: "x"}, "ACCOUNT_030", 422},
		{&TransitionError{From: StatusActive, To: StatusActive}, "ACCOUNT_034", 422},
		{&DailyLimitError{}, "ACCOUNT_040", 400},
		{ErrOptimisticLockConflict, "ACCOUNT_050", 409},
		{ErrPessimisticLockTimeout, "ACCOUNT_051", 409},
	}

	for _, tc := range tests {
		de, ok := IsDomainError(tc.err)
		require.True(t, ok, "%v", tc.err)
		assert.Equal(t, tc.code, de.Code)
		assert.Equal(t, tc.status, de.Status)
	}
}
