package domain

import "github.com/shopspring/decimal"

// AccountType is the product kind of an account. Each type carries an
// immutable policy record: numbering prefix, minimum standing balance,
// daily withdrawal ceiling (zero means withdrawals are disallowed), annual
// interest rate, free-withdrawal eligibility and minimum opening deposit.
type AccountType string

const (
	TypeChecking     AccountType = "CHECKING"
	TypeSavings      AccountType = "SAVINGS"
	TypeFixedDeposit AccountType = "FIXED_DEPOSIT"
)

type typePolicy struct {
	numberPrefix          string
	minimumBalance        decimal.Decimal
	dailyWithdrawalLimit  decimal.Decimal
	interestRate          decimal.Decimal
	allowsFreeWithdrawal  bool
	minimumOpeningDeposit decimal.Decimal
}

var typePolicies = map[AccountType]typePolicy{
	TypeChecking: {
		numberPrefix:          "110",
		minimumBalance:        decimal.Zero,
		dailyWithdrawalLimit:  decimal.NewFromInt(50_000_000),
		interestRate:          decimal.RequireFromString("0.001"),
		allowsFreeWithdrawal:  true,
		minimumOpeningDeposit: decimal.Zero,
	},
	TypeSavings: {
		numberPrefix:          "220",
		minimumBalance:        decimal.Zero,
		dailyWithdrawalLimit:  decimal.NewFromInt(10_000_000),
		interestRate:          decimal.RequireFromString("0.02"),
		allowsFreeWithdrawal:  true,
		minimumOpeningDeposit: decimal.Zero,
	},
	TypeFixedDeposit: {
		numberPrefix:          "330",
		minimumBalance:        decimal.NewFromInt(1_000_000),
		dailyWithdrawalLimit:  decimal.Zero,
		interestRate:          decimal.RequireFromString("0.035"),
		allowsFreeWithdrawal:  false,
		minimumOpeningDeposit: decimal.NewFromInt(1_000_000),
	},
}

// ParseAccountType validates a stored type string.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if _, ok := typePolicies[t]; !ok {
		return "", ErrInvalidAccountType
	}
	return t, nil
}

func (t AccountType) IsValid() bool {
	_, ok := typePolicies[t]
	return ok
}

// NumberPrefix returns the 3-digit account number prefix for this type.
func (t AccountType) NumberPrefix() string { return typePolicies[t].numberPrefix }

// MinimumBalance returns the minimum standing balance for this type.
func (t AccountType) MinimumBalance() Money {
	return Money{amount: typePolicies[t].minimumBalance}
}

// DailyWithdrawalLimit returns the daily ceiling; zero means withdrawals
// are disallowed for this type.
func (t AccountType) DailyWithdrawalLimit() Money {
	return Money{amount: typePolicies[t].dailyWithdrawalLimit}
}

// InterestRate returns the annual interest rate, e.g. 0.02 for 2%.
func (t AccountType) InterestRate() decimal.Decimal { return typePolicies[t].interestRate }

// AllowsFreeWithdrawal reports whether this type permits withdrawals at
// will. Fixed deposits do not.
func (t AccountType) AllowsFreeWithdrawal() bool { return typePolicies[t].allowsFreeWithdrawal }

// MinimumOpeningDeposit returns the smallest initial deposit accepted when
// opening an account of this type.
func (t AccountType) MinimumOpeningDeposit() Money {
	return Money{amount: typePolicies[t].minimumOpeningDeposit}
}

// IsValidInitialDeposit reports whether deposit satisfies the opening
// minimum for this type.
func (t AccountType) IsValidInitialDeposit(deposit Money) bool {
	return deposit.GreaterThanOrEqual(t.MinimumOpeningDeposit())
}

// CanWithdraw reports whether withdrawing amount on top of what was
// already withdrawn today stays within this type's policy.
func (t AccountType) CanWithdraw(amount, dailyUsed Money) bool {
	if !t.AllowsFreeWithdrawal() {
		return false
	}
	return dailyUsed.Add(amount).LessThanOrEqual(t.DailyWithdrawalLimit())
}
