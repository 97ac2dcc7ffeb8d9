package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/tidebank/corebank/internal/domain"
)

const accountColumns = `holder_name, account_number, pin, account_type, balance, is_admin, created_at`

const pqUniqueViolation = "23505"

// AccountRepository is the durable account store. It is the system's
// source of truth for balances; the in-memory cache only mirrors what
// this store has acknowledged.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Get(ctx context.Context, number string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (
			holder_name, account_number, pin, account_type, balance, is_admin, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.HolderName, account.AccountNumber, account.PIN,
		account.AccountType, account.Balance, account.IsAdmin, account.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("Create: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, number string, balance decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = $1 WHERE account_number = $2`,
		balance, number,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}
	return checkAffected(res, "UpdateBalance")
}

func (r *AccountRepository) UpdateType(ctx context.Context, number string, accountType domain.AccountType) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET account_type = $1 WHERE account_number = $2`,
		accountType, number,
	)
	if err != nil {
		return fmt.Errorf("UpdateType: %w", err)
	}
	return checkAffected(res, "UpdateType")
}

func (r *AccountRepository) UpdateAdmin(ctx context.Context, number string, isAdmin bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_admin = $1 WHERE account_number = $2`,
		isAdmin, number,
	)
	if err != nil {
		return fmt.Errorf("UpdateAdmin: %w", err)
	}
	return checkAffected(res, "UpdateAdmin")
}

func checkAffected(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.HolderName, &a.AccountNumber, &a.PIN, &a.AccountType,
		&a.Balance, &a.IsAdmin, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
