package domain

import "fmt"

// DomainError is the closed failure vocabulary of the account core. Each
// value carries a stable machine-readable code and an HTTP-style status
// class (400 validation, 404 not-found, 422 illegal state, 409 concurrency)
// so that presentation collaborators can translate failures without string
// matching. Branch with errors.Is against the sentinel values below.
type DomainError struct {
	Code    string
	Status  int
	Message string
}

func (e *DomainError) Error() string { return e.Message }

var (
	// Validation failures (400).
	ErrInvalidAccountIDFormat     = &DomainError{"ACCOUNT_001", 400, "invalid account id format"}
	ErrInvalidAccountNumberFormat = &DomainError{"ACCOUNT_002", 400, "invalid account number format"}
	ErrInvalidAccountType         = &DomainError{"ACCOUNT_003", 400, "invalid account type"}
	ErrInvalidAmount              = &DomainError{"ACCOUNT_004", 400, "invalid amount"}
	ErrInvalidInitialDeposit      = &DomainError{"ACCOUNT_005", 400, "initial deposit below required minimum"}

	// Lookup misses (404), raised by the persistence collaborator.
	ErrAccountNotFound         = &DomainError{"ACCOUNT_010", 404, "account not found"}
	ErrAccountNotFoundByNumber = &DomainError{"ACCOUNT_011", 404, "no account with that account number"}

	// Balance and limit failures (400).
	ErrInsufficientBalance          = &DomainError{"ACCOUNT_020", 400, "insufficient balance"}
	ErrBalanceNotZero               = &DomainError{"ACCOUNT_021", 400, "account with remaining balance cannot be closed"}
	ErrDailyWithdrawalLimitExceeded = &DomainError{"ACCOUNT_040", 400, "daily withdrawal limit exceeded"}

	// Illegal state (422).
	ErrAccountNotActive        = &DomainError{"ACCOUNT_030", 422, "account is not active"}
	ErrAccountAlreadyClosed    = &DomainError{"ACCOUNT_031", 422, "account is already closed"}
	ErrAccountFrozen           = &DomainError{"ACCOUNT_032", 422, "account is frozen"}
	ErrAccountDormant          = &DomainError{"ACCOUNT_033", 422, "account is dormant"}
	ErrInvalidStatusTransition = &DomainError{"ACCOUNT_034", 422, "status transition not allowed"}
	ErrAccountAlreadyActive    = &DomainError{"ACCOUNT_035", 422, "account is already active"}

	// Concurrency (409), raised by the persistence collaborator.
	ErrOptimisticLockConflict = &DomainError{"ACCOUNT_050", 409, "account was modified concurrently"}
	ErrPessimisticLockTimeout = &DomainError{"ACCOUNT_051", 409, "timed out waiting for account lock"}
)

// InvalidAmountError reports the rejected raw value.
type InvalidAmountError struct {
	Value string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Value)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// InsufficientFundsError carries both operands of the failed subtraction so
// callers can report how far short the balance fell.
type InsufficientFundsError struct {
	Balance   Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: balance=%s requested=%s", e.Balance, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientBalance }

// InitialDepositError reports an opening deposit below the type minimum.
type InitialDepositError struct {
	Deposit Money
	Minimum Money
}

func (e *InitialDepositError) Error() string {
	return fmt.Sprintf("initial deposit %s below minimum %s", e.Deposit, e.Minimum)
}

func (e *InitialDepositError) Unwrap() error { return ErrInvalidInitialDeposit }

// BalanceNotZeroError reports the balance blocking a close.
type BalanceNotZeroError struct {
	Balance Money
}

func (e *BalanceNotZeroError) Error() string {
	return fmt.Sprintf("cannot close account with balance %s", e.Balance)
}

func (e *BalanceNotZeroError) Unwrap() error { return ErrBalanceNotZero }

// DailyLimitError carries the amounts involved in a rejected withdrawal:
// what was already withdrawn today, the type ceiling, and the request.
type DailyLimitError struct {
	Used      Money
	Limit     Money
	Requested Money
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily withdrawal limit exceeded: used=%s limit=%s requested=%s",
		e.Used, e.Limit, e.Requested)
}

func (e *DailyLimitError) Unwrap() error { return ErrDailyWithdrawalLimitExceeded }

// TransitionError reports an illegal status transition.
type TransitionError struct {
	From AccountStatus
	To   AccountStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition account from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStatusTransition }

// NotActiveError reports an operation attempted in a status (or on an
// account type) that does not permit it.
type NotActiveError struct {
	Detail string
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("account is not active: %s", e.Detail)
}

func (e *NotActiveError) Unwrap() error { return ErrAccountNotActive }
