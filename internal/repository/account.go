// Package repository is the persistence collaborator of the account core.
// It owns identifier assignment on first save and the version counter used
// for lost-update detection; the aggregate only carries both.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jun-bank/account-service/internal/domain"
)

const accountColumns = `account_id, account_number, owner_id, account_type,
	balance, daily_withdrawn, last_activity_date, status, version,
	created_at, updated_at, created_by, updated_by, deleted_at, deleted_by, is_deleted`

// lockNotAvailable is the Postgres error code raised by FOR UPDATE NOWAIT
// when another transaction holds the row lock.
const lockNotAvailable = "55P03"

type scanner interface {
	Scan(dest ...any) error
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = $1 AND NOT is_deleted`, id.String(),
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID %s: %w", id, domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number domain.AccountNumber) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1 AND NOT is_deleted`, number.String(),
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByNumber %s: %w", number.Masked(), domain.ErrAccountNotFoundByNumber)
		}
		return nil, fmt.Errorf("GetByNumber: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 AND NOT is_deleted ORDER BY created_at`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByOwner: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByOwner: scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByOwner: rows: %w", err)
	}
	return accounts, nil
}

// Create inserts a new aggregate, assigning its internal identifier and
// starting the version counter at 1.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account, actor string) error {
	if !account.IsNew() {
		return fmt.Errorf("Create: account %s already persisted", account.ID())
	}

	id := domain.GenerateAccountID()
	if err := account.AssignID(id); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (
			account_id, account_number, owner_id, account_type,
			balance, daily_withdrawn, last_activity_date, status, version,
			created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $9)`,
		id.String(), account.Number().String(), account.OwnerID(), string(account.Type()),
		account.Balance().String(), account.DailyWithdrawn().String(),
		account.LastActivityDate(), string(account.Status()),
		actor,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	account.SetVersion(1)
	return nil
}

// Save writes the mutable aggregate state back, guarded by the version the
// aggregate was loaded with. Zero rows updated means another unit of work
// got there first.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account, actor string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		SET balance = $1, daily_withdrawn = $2, last_activity_date = $3,
			status = $4, updated_at = now(), updated_by = $5, version = version + 1
		WHERE account_id = $6 AND version = $7 AND NOT is_deleted`,
		account.Balance().String(), account.DailyWithdrawn().String(), account.LastActivityDate(),
		string(account.Status()), actor,
		account.ID().String(), account.Version(),
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Save: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Save %s: %w", account.ID(), domain.ErrOptimisticLockConflict)
	}

	account.SetVersion(account.Version() + 1)
	return nil
}

// GetForUpdate loads an aggregate under an exclusive row lock. The lock is
// taken NOWAIT; a held lock surfaces as ErrPessimisticLockTimeout rather
// than blocking the unit of work.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id domain.AccountID) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = $1 AND NOT is_deleted FOR UPDATE NOWAIT`,
		id.String(),
	)
	a, err := scanAccount(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == lockNotAvailable {
			return nil, fmt.Errorf("GetForUpdate %s: %w", id, domain.ErrPessimisticLockTimeout)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate %s: %w", id, domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

// SoftDelete marks a closed account as deleted. Rows stay in place; reads
// exclude them.
func (r *AccountRepository) SoftDelete(ctx context.Context, account *domain.Account, actor string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		SET is_deleted = true, deleted_at = now(), deleted_by = $1, version = version + 1
		WHERE account_id = $2 AND version = $3 AND NOT is_deleted`,
		actor, account.ID().String(), account.Version(),
	)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SoftDelete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SoftDelete %s: %w", account.ID(), domain.ErrOptimisticLockConflict)
	}

	account.SetVersion(account.Version() + 1)
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var (
		id, number, ownerID, accountType, status string
		balance, dailyWithdrawn                  string
		lastActivity, createdAt, updatedAt       time.Time
		version                                  int64
		createdBy, updatedBy, deletedBy          sql.NullString
		deletedAt                                sql.NullTime
		isDeleted                                bool
	)

	err := s.Scan(
		&id, &number, &ownerID, &accountType,
		&balance, &dailyWithdrawn, &lastActivity, &status, &version,
		&createdAt, &updatedAt, &createdBy, &updatedBy, &deletedAt, &deletedBy, &isDeleted,
	)
	if err != nil {
		return nil, err
	}

	balanceMoney, err := domain.MoneyFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("scan balance: %w", err)
	}
	dailyMoney, err := domain.MoneyFromString(dailyWithdrawn)
	if err != nil {
		return nil, fmt.Errorf("scan daily_withdrawn: %w", err)
	}

	params := domain.RestoreAccountParams{
		ID:             id,
		Number:         number,
		OwnerID:        ownerID,
		Type:           accountType,
		Balance:        balanceMoney,
		DailyWithdrawn: dailyMoney,
		LastActivity:   lastActivity,
		Status:         status,
		Version:        version,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
		CreatedBy:      createdBy.String,
		UpdatedBy:      updatedBy.String,
		DeletedBy:      deletedBy.String,
		Deleted:        isDeleted,
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		params.DeletedAt = &t
	}

	return domain.RestoreAccount(params)
}
