package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jun-bank/account-service/internal/domain"
)

// AccountFixture describes a seed account for integration tests.
type AccountFixture struct {
	OwnerID string
	Type    domain.AccountType
	Deposit int64
}

// NewAccount builds an unsaved aggregate from a fixture, failing the test
// on any domain rejection.
func NewAccount(t *testing.T, f AccountFixture) *domain.Account {
	t.Helper()

	ownerID := f.OwnerID
	if ownerID == "" {
		ownerID = "owner-test"
	}
	accountType := f.Type
	if accountType == "" {
		accountType = domain.TypeChecking
	}

	deposit, err := domain.MoneyFromInt64(f.Deposit)
	require.NoError(t, err)

	account, err := domain.NewAccount(domain.NewAccountParams{
		OwnerID:        ownerID,
		Type:           accountType,
		InitialDeposit: deposit,
	})
	require.NoError(t, err)
	return account
}

// Money converts an int64 into a Money value, failing the test on error.
func Money(t *testing.T, v int64) domain.Money {
	t.Helper()
	m, err := domain.MoneyFromInt64(v)
	require.NoError(t, err)
	return m
}
