package domain

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Account is the aggregate root of the account core. It is the sole owner
// of the mutable balance and daily-usage counters; every mutation passes
// through one of its methods, and a rejected operation leaves all fields
// exactly as they were. Instances are not safe for concurrent use; a caller
// loads one aggregate per unit of work, mutates it synchronously and hands
// it back to the persistence collaborator.
type Account struct {
	id             AccountID // unset until first persisted
	number         AccountNumber
	ownerID        string
	accountType    AccountType
	balance        Money
	dailyWithdrawn Money
	lastActivity   time.Time
	status         AccountStatus

	// version is owned by the persistence collaborator for lost-update
	// detection; the aggregate only carries it.
	version int64

	createdAt time.Time
	updatedAt time.Time
	createdBy string
	updatedBy string
	deletedAt *time.Time
	deletedBy string
	deleted   bool

	now func() time.Time
}

// NewAccountParams carries the inputs for opening an account. Rand and Now
// default to crypto/rand and time.Now; tests substitute both.
type NewAccountParams struct {
	OwnerID        string
	Type           AccountType
	InitialDeposit Money
	Rand           io.Reader
	Now            func() time.Time
}

// NewAccount opens an account: validates the opening deposit against the
// type policy, generates a fresh account number and starts the account
// Active with a zeroed daily counter. The internal identifier stays unset
// until the persistence collaborator assigns one.
func NewAccount(p NewAccountParams) (*Account, error) {
	if p.OwnerID == "" {
		return nil, fmt.Errorf("NewAccount: owner id required")
	}
	if !p.Type.IsValid() {
		return nil, fmt.Errorf("NewAccount: %w", ErrInvalidAccountType)
	}
	if !p.Type.IsValidInitialDeposit(p.InitialDeposit) {
		return nil, &InitialDepositError{
			Deposit: p.InitialDeposit,
			Minimum: p.Type.MinimumOpeningDeposit(),
		}
	}

	number, err := GenerateAccountNumber(p.Type, p.Rand)
	if err != nil {
		return nil, fmt.Errorf("NewAccount: %w", err)
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}

	return &Account{
		number:         number,
		ownerID:        p.OwnerID,
		accountType:    p.Type,
		balance:        p.InitialDeposit,
		dailyWithdrawn: ZeroMoney,
		lastActivity:   now(),
		status:         StatusActive,
		now:            now,
	}, nil
}

// RestoreAccountParams carries persisted state verbatim. Identifier, number,
// type and status arrive as raw strings and get value-object format checks;
// business rules are not re-validated since the data was valid when saved.
type RestoreAccountParams struct {
	ID             string
	Number         string
	OwnerID        string
	Type           string
	Balance        Money
	DailyWithdrawn Money
	LastActivity   time.Time
	Status         string
	Version        int64

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
	DeletedAt *time.Time
	DeletedBy string
	Deleted   bool

	Now func() time.Time
}

// RestoreAccount rehydrates an aggregate from a trusted source.
func RestoreAccount(p RestoreAccountParams) (*Account, error) {
	id, err := NewAccountID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("RestoreAccount: %w", err)
	}
	number, err := NewAccountNumber(p.Number)
	if err != nil {
		return nil, fmt.Errorf("RestoreAccount: %w", err)
	}
	accountType, err := ParseAccountType(p.Type)
	if err != nil {
		return nil, fmt.Errorf("RestoreAccount: %w", err)
	}
	status, err := ParseAccountStatus(p.Status)
	if err != nil {
		return nil, fmt.Errorf("RestoreAccount: %w", err)
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}

	return &Account{
		id:             id,
		number:         number,
		ownerID:        p.OwnerID,
		accountType:    accountType,
		balance:        p.Balance,
		dailyWithdrawn: p.DailyWithdrawn,
		lastActivity:   p.LastActivity,
		status:         status,
		version:        p.Version,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
		createdBy:      p.CreatedBy,
		updatedBy:      p.UpdatedBy,
		deletedAt:      p.DeletedAt,
		deletedBy:      p.DeletedBy,
		deleted:        p.Deleted,
		now:            now,
	}, nil
}

func (a *Account) ID() AccountID         { return a.id }
func (a *Account) Number() AccountNumber { return a.number }
func (a *Account) OwnerID() string       { return a.ownerID }
func (a *Account) Type() AccountType     { return a.accountType }
func (a *Account) Balance() Money        { return a.balance }
func (a *Account) DailyWithdrawn() Money { return a.dailyWithdrawn }
func (a *Account) Status() AccountStatus { return a.status }
func (a *Account) Version() int64        { return a.version }

// LastActivityDate is the date of the last balance-affecting operation.
func (a *Account) LastActivityDate() time.Time { return a.lastActivity }

func (a *Account) CreatedAt() time.Time  { return a.createdAt }
func (a *Account) UpdatedAt() time.Time  { return a.updatedAt }
func (a *Account) CreatedBy() string     { return a.createdBy }
func (a *Account) UpdatedBy() string     { return a.updatedBy }
func (a *Account) DeletedAt() *time.Time { return a.deletedAt }
func (a *Account) DeletedBy() string     { return a.deletedBy }
func (a *Account) IsDeleted() bool       { return a.deleted }

// IsNew reports whether the account has not been persisted yet.
func (a *Account) IsNew() bool { return a.id == "" }

// AssignID is called by the persistence collaborator exactly once, when the
// account row is first inserted. Reassignment is an error.
func (a *Account) AssignID(id AccountID) error {
	if a.id != "" {
		return fmt.Errorf("AssignID: account %s already has an identifier", a.id)
	}
	a.id = id
	return nil
}

// SetVersion is reserved for the persistence collaborator, which owns the
// counter; the aggregate itself never increments it.
func (a *Account) SetVersion(version int64) { a.version = version }

func (a *Account) IsActive() bool { return a.status.IsActive() }
func (a *Account) IsClosed() bool { return a.status.IsClosed() }

func (a *Account) CanDeposit() bool { return a.status.CanDeposit() }

// CanWithdraw requires both a permitting status and a type that allows
// free withdrawal.
func (a *Account) CanWithdraw() bool {
	return a.status.CanWithdraw() && a.accountType.AllowsFreeWithdrawal()
}

func (a *Account) HasZeroBalance() bool { return a.balance.IsZero() }

// Deposit adds amount to the balance. Closed and frozen accounts are
// rejected with their own error kinds so callers can present them apart.
func (a *Account) Deposit(amount Money) error {
	if a.status.IsClosed() {
		return ErrAccountAlreadyClosed
	}
	if a.status.IsFrozen() {
		return ErrAccountFrozen
	}
	if !a.status.CanDeposit() {
		return &NotActiveError{Detail: string(a.status)}
	}
	if !amount.IsPositive() {
		return &InvalidAmountError{Value: amount.String()}
	}

	a.balance = a.balance.Add(amount)
	a.lastActivity = a.now()
	return nil
}

// Withdraw removes amount from the balance after the full validation
// ladder: status, type eligibility, amount, balance, then the daily
// ceiling. If the stored last-activity date is not today the daily counter
// is treated as zero for the limit check (lazy date rollover); nothing is
// written until every check passes.
func (a *Account) Withdraw(amount Money) error {
	if a.status.IsClosed() {
		return ErrAccountAlreadyClosed
	}
	if a.status.IsFrozen() {
		return ErrAccountFrozen
	}
	if a.status.IsDormant() {
		return ErrAccountDormant
	}
	if !a.accountType.AllowsFreeWithdrawal() {
		return &NotActiveError{Detail: fmt.Sprintf("%s does not allow free withdrawal", a.accountType)}
	}
	if !amount.IsPositive() {
		return &InvalidAmountError{Value: amount.String()}
	}
	if a.balance.LessThan(amount) {
		return &InsufficientFundsError{Balance: a.balance, Requested: amount}
	}

	used := a.dailyWithdrawn
	if !sameDate(a.lastActivity, a.now()) {
		used = ZeroMoney
	}
	limit := a.accountType.DailyWithdrawalLimit()
	if used.Add(amount).GreaterThan(limit) {
		return &DailyLimitError{Used: used, Limit: limit, Requested: amount}
	}

	newBalance, err := a.balance.Subtract(amount)
	if err != nil {
		return err
	}
	a.balance = newBalance
	a.dailyWithdrawn = used.Add(amount)
	a.lastActivity = a.now()
	return nil
}

// Close moves the account to its terminal state. Only a zero-balance,
// not-yet-closed account can be closed; the transition is irreversible.
func (a *Account) Close() error {
	if a.status.IsClosed() {
		return ErrAccountAlreadyClosed
	}
	if !a.HasZeroBalance() {
		return &BalanceNotZeroError{Balance: a.balance}
	}

	a.status = StatusClosed
	return nil
}

// Freeze suspends all transactions on the account.
func (a *Account) Freeze() error {
	if err := a.transitionTo(StatusFrozen); err != nil {
		return err
	}
	a.status = StatusFrozen
	return nil
}

// ToDormant marks the account dormant; deposits stay possible, withdrawals
// require reactivation.
func (a *Account) ToDormant() error {
	if err := a.transitionTo(StatusDormant); err != nil {
		return err
	}
	a.status = StatusDormant
	return nil
}

// Activate restores a dormant or frozen account. Activating an already
// active account is its own error kind.
func (a *Account) Activate() error {
	if a.status.IsActive() {
		return ErrAccountAlreadyActive
	}
	if err := a.transitionTo(StatusActive); err != nil {
		return err
	}
	a.status = StatusActive
	return nil
}

func (a *Account) transitionTo(target AccountStatus) error {
	if !a.status.CanTransitionTo(target) {
		return &TransitionError{From: a.status, To: target}
	}
	return nil
}

// sameDate compares calendar dates, ignoring time of day.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsDomainError reports whether err belongs to the account error taxonomy
// and returns the matched value for code/status inspection.
func IsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
