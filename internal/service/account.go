package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jun-bank/account-service/internal/domain"
	"github.com/jun-bank/account-service/internal/events"
	"github.com/jun-bank/account-service/internal/logging"
)

type accountRepo interface {
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	GetByNumber(ctx context.Context, number domain.AccountNumber) (*domain.Account, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	Create(ctx context.Context, account *domain.Account, actor string) error
	Save(ctx context.Context, account *domain.Account, actor string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, msg events.Message) error
}

// AccountService drives one aggregate per unit of work: load, mutate
// through the aggregate, save. A save lost to a concurrent unit of work
// surfaces as an optimistic lock conflict; the whole unit is then retried
// against freshly loaded state, bounded by maxAttempts. The core itself
// never retries.
type AccountService struct {
	accounts    accountRepo
	publisher   eventPublisher
	maxAttempts int
}

func NewAccountService(accounts accountRepo, publisher eventPublisher, maxAttempts int) *AccountService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &AccountService{accounts: accounts, publisher: publisher, maxAttempts: maxAttempts}
}

// OpenAccount creates and persists a new account for an owner reference
// supplied by the identity provider.
func (s *AccountService) OpenAccount(ctx context.Context, ownerID string, accountType domain.AccountType, initialDeposit domain.Money) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	account, err := domain.NewAccount(domain.NewAccountParams{
		OwnerID:        ownerID,
		Type:           accountType,
		InitialDeposit: initialDeposit,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	if err := s.accounts.Create(ctx, account, ownerID); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	log.Info("account opened",
		"account_id", account.ID(),
		"account_number", account.Number().Masked(),
		"account_type", account.Type(),
	)
	s.publish(ctx, account, events.TypeAccountOpened, initialDeposit.String())

	return account, nil
}

// GetAccount loads an account by its internal identifier.
func (s *AccountService) GetAccount(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

// GetAccountByNumber resolves the external account number, validating its
// format and checksum before touching storage.
func (s *AccountService) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	n, err := domain.NewAccountNumber(number)
	if err != nil {
		return nil, fmt.Errorf("GetAccountByNumber: %w", err)
	}
	account, err := s.accounts.GetByNumber(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("GetAccountByNumber: %w", err)
	}
	return account, nil
}

// GetOwnerAccounts lists the accounts of one owner.
func (s *AccountService) GetOwnerAccounts(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	accounts, err := s.accounts.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("GetOwnerAccounts: %w", err)
	}
	return accounts, nil
}

// Deposit credits amount to the account.
func (s *AccountService) Deposit(ctx context.Context, id domain.AccountID, amount domain.Money, actor string) (*domain.Account, error) {
	account, err := s.mutate(ctx, id, actor, func(a *domain.Account) error {
		return a.Deposit(amount)
	})
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	logging.FromContext(ctx).Info("deposit applied",
		"account_id", account.ID(),
		"amount", amount.String(),
		"balance", account.Balance().String(),
	)
	s.publish(ctx, account, events.TypeAccountDeposited, amount.String())
	return account, nil
}

// Withdraw debits amount from the account, subject to the aggregate's
// status, balance and daily-limit rules.
func (s *AccountService) Withdraw(ctx context.Context, id domain.AccountID, amount domain.Money, actor string) (*domain.Account, error) {
	account, err := s.mutate(ctx, id, actor, func(a *domain.Account) error {
		return a.Withdraw(amount)
	})
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	logging.FromContext(ctx).Info("withdrawal applied",
		"account_id", account.ID(),
		"amount", amount.String(),
		"balance", account.Balance().String(),
	)
	s.publish(ctx, account, events.TypeAccountWithdrawn, amount.String())
	return account, nil
}

// CloseAccount moves a zero-balance account to its terminal state.
func (s *AccountService) CloseAccount(ctx context.Context, id domain.AccountID, actor string) (*domain.Account, error) {
	account, err := s.mutate(ctx, id, actor, func(a *domain.Account) error {
		return a.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("CloseAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account closed", "account_id", account.ID())
	s.publish(ctx, account, events.TypeAccountClosed, "")
	return account, nil
}

// FreezeAccount suspends all transactions on the account.
func (s *AccountService) FreezeAccount(ctx context.Context, id domain.AccountID, actor string) (*domain.Account, error) {
	account, err := s.mutate(ctx, id, actor, func(a *domain.Account) error {
		return a.Freeze()
	})
	if err != nil {
		return nil, fmt.Errorf("FreezeAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account frozen", "account_id", account.ID())
	s.publish(ctx, account, events.TypeAccountFrozen, "")
	return account, nil
}

// MarkDormant marks an account dormant.
func (s *AccountService) MarkDormant(ctx context.Context, id domain.AccountID, actor string) (*domain.Account, error) {
	account, err := s.mutate(ctx, id, actor, func(a *domain.Account) error {
		return a.ToDormant()
	})
	if err != nil {
		return nil, fmt.Errorf("MarkDormant: %w", err)
	}

	logging.FromContext(ctx).Info("account marked dormant", "account_id", account.ID())
	s.publish(ctx, account, events.TypeAccountDormant, "")
	return account, nil
}

// ActivateAccount restores a dormant or frozen account.
func (s *AccountService) ActivateAccount(ctx context.Context, id domain.AccountID, actor string) (*domain.Account, error) {
	account, err := s.mutate(ctx, id, actor, func(a *domain.Account) error {
		return a.Activate()
	})
	if err != nil {
		return nil, fmt.Errorf("ActivateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account activated", "account_id", account.ID())
	s.publish(ctx, account, events.TypeAccountActivated, "")
	return account, nil
}

// mutate runs one load-mutate-save unit of work, reloading and re-running
// the mutation when the save loses an optimistic lock race. Domain rules
// are re-validated each attempt because they run against the fresh state.
func (s *AccountService) mutate(ctx context.Context, id domain.AccountID, actor string, op func(*domain.Account) error) (*domain.Account, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		account, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := op(account); err != nil {
			return nil, err
		}

		err = s.accounts.Save(ctx, account, actor)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, domain.ErrOptimisticLockConflict) {
			return nil, err
		}

		lastErr = err
		logging.FromContext(ctx).Warn("save conflict, retrying unit of work",
			"account_id", id,
			"attempt", attempt,
		)
	}
	return nil, lastErr
}

// publish pushes an account event; publication is best effort and never
// fails the unit of work that produced it.
func (s *AccountService) publish(ctx context.Context, account *domain.Account, eventType, amount string) {
	if s.publisher == nil {
		return
	}
	msg := events.Message{
		Type:          eventType,
		AccountID:     account.ID().String(),
		AccountNumber: account.Number().Masked(),
		Amount:        amount,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		logging.FromContext(ctx).Error("event publish failed",
			"account_id", account.ID(),
			"event_type", eventType,
			"error", err,
		)
	}
}
