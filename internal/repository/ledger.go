package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tidebank/corebank/internal/domain"
)

const ledgerColumns = `id, recorded_at, kind, amount, account_number, description`

// LedgerRepository is the durable append-only ledger. Entries are never
// updated or deleted; the BIGSERIAL id defines insertion order.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ledger_entries (recorded_at, kind, amount, account_number, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		entry.RecordedAt, entry.Kind, entry.Amount, entry.AccountNumber, entry.Description,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetByAccount(ctx context.Context, number string) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE account_number = $1 ORDER BY id`, number,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByAccount: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByAccount: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByAccount: rows: %w", err)
	}
	return entries, nil
}

func scanLedgerEntry(s scanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := s.Scan(
		&e.ID, &e.RecordedAt, &e.Kind, &e.Amount,
		&e.AccountNumber, &e.Description,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
