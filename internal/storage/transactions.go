package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chronofin/chronofin/internal/common"
	"github.com/chronofin/chronofin/internal/model"
	"github.com/chronofin/chronofin/internal/service"
)

const transactionColumns = `id, hash, date, name, amount, currency, type,
	account_id, category_id, tags, notes, transfer_id, attachment_count,
	is_pending, requires_manual_confirmation, is_deleted, created_at`

// SaveTransactions saves multiple transactions to the database. Rows whose
// dedupe hash already exists are silently skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, date, name, amount, currency, type,
			account_id, category_id, tags, notes, transfer_id,
			attachment_count, is_pending, requires_manual_confirmation,
			is_deleted, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = time.Now()
		}

		tagsJSON := ""
		if len(txn.Tags) > 0 {
			tagsBytes, marshalErr := json.Marshal(txn.Tags)
			if marshalErr == nil {
				tagsJSON = string(tagsBytes)
			}
		}

		var manualConfirmation any
		if txn.RequiresManualConfirmation != nil {
			manualConfirmation = boolToInt(*txn.RequiresManualConfirmation)
		}

		if _, err = stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.Date,
			txn.Name,
			txn.Amount.String(),
			txn.Currency,
			string(txn.Type),
			nullable(txn.AccountID),
			nullable(txn.CategoryID),
			nullable(tagsJSON),
			nullable(txn.Notes),
			nullable(txn.TransferID),
			txn.AttachmentCount,
			boolToInt(txn.Pending),
			manualConfirmation,
			boolToInt(txn.Deleted),
			txn.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.notifyChange()
	return nil
}

// GetTransactions returns transactions matching the structural filter,
// newest first. This is the single filtering entry point: aggregation
// consumers transform but never re-filter its result set.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args := buildFilterClauses(filter)

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY date DESC, created_at DESC`,
		transactionColumns, strings.Join(where, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// buildFilterClauses merges every structural predicate into one WHERE list.
func buildFilterClauses(filter service.TransactionFilter) ([]string, []any) {
	where := []string{"1=1"}
	var args []any

	if !filter.IncludeDeleted {
		where = append(where, "is_deleted = 0")
	}
	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.Pending != nil {
		where = append(where, "is_pending = ?")
		args = append(args, boolToInt(*filter.Pending))
	}
	if filter.HasAttachments != nil {
		if *filter.HasAttachments {
			where = append(where, "attachment_count > 0")
		} else {
			where = append(where, "attachment_count = 0")
		}
	}
	if len(filter.AccountIDs) > 0 {
		where = append(where, inClause("account_id", len(filter.AccountIDs)))
		for _, id := range filter.AccountIDs {
			args = append(args, id)
		}
	}
	if len(filter.CategoryIDs) > 0 {
		where = append(where, inClause("category_id", len(filter.CategoryIDs)))
		for _, id := range filter.CategoryIDs {
			args = append(args, id)
		}
	}
	if len(filter.Types) > 0 {
		where = append(where, inClause("type", len(filter.Types)))
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}
	if len(filter.Tags) > 0 {
		// Tags are stored as a JSON array; match each requested tag as a
		// quoted substring.
		for _, tag := range filter.Tags {
			where = append(where, "tags LIKE ?")
			args = append(args, `%"`+tag+`"%`)
		}
	}
	if filter.Search != "" {
		switch filter.SearchMode {
		case service.MatchExact:
			where = append(where, "name = ?")
			args = append(args, filter.Search)
		case service.MatchPrefix:
			where = append(where, "name LIKE ?")
			args = append(args, filter.Search+"%")
		default:
			where = append(where, "name LIKE ?")
			args = append(args, "%"+filter.Search+"%")
		}
	}

	return where, args
}

// GetTransactionByID returns a single transaction, including soft-deleted
// ones.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM transactions WHERE id = ?`, transactionColumns), id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetPendingTransactions returns every pending, non-deleted transaction,
// oldest due first. This is the scheduler's snapshot query.
func (s *SQLiteStorage) GetPendingTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM transactions WHERE is_pending = 1 AND is_deleted = 0 ORDER BY date ASC`,
		transactionColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// ConfirmTransaction flips a pending transaction to confirmed, optionally
// bumping its date to now. Confirming an already-confirmed or deleted
// transaction is a no-op, which makes repeated confirm attempts harmless.
func (s *SQLiteStorage) ConfirmTransaction(ctx context.Context, id string, opts service.ConfirmOptions) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	var result sql.Result
	var err error
	if opts.UpdateTransactionDate {
		result, err = s.db.ExecContext(ctx,
			`UPDATE transactions SET is_pending = 0, date = ?
			 WHERE id = ? AND is_pending = 1 AND is_deleted = 0`,
			time.Now(), id)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE transactions SET is_pending = 0
			 WHERE id = ? AND is_pending = 1 AND is_deleted = 0`,
			id)
	}
	if err != nil {
		return fmt.Errorf("failed to confirm transaction %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		s.notifyChange()
	}
	return nil
}

// DeleteTransaction soft-deletes a transaction, removing it from scheduling
// and aggregation without destroying the record.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}

	s.notifyChange()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var amount string
	var txnType string
	var accountID, categoryID, tagsJSON, notes, transferID sql.NullString
	var manualConfirmation sql.NullInt64
	var pending, deleted int

	err := row.Scan(
		&txn.ID,
		&txn.Hash,
		&txn.Date,
		&txn.Name,
		&amount,
		&txn.Currency,
		&txnType,
		&accountID,
		&categoryID,
		&tagsJSON,
		&notes,
		&transferID,
		&txn.AttachmentCount,
		&pending,
		&manualConfirmation,
		&deleted,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q for transaction %s: %w", amount, txn.ID, err)
	}
	txn.Type = model.TransactionType(txnType)
	txn.AccountID = accountID.String
	txn.CategoryID = categoryID.String
	txn.Notes = notes.String
	txn.TransferID = transferID.String
	txn.Pending = pending != 0
	txn.Deleted = deleted != 0
	if manualConfirmation.Valid {
		v := manualConfirmation.Int64 != 0
		txn.RequiresManualConfirmation = &v
	}
	if tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &txn.Tags); err != nil {
			return nil, fmt.Errorf("invalid tags for transaction %s: %w", txn.ID, err)
		}
	}

	return &txn, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

func inClause(column string, n int) string {
	return column + " IN (" + strings.TrimSuffix(strings.Repeat("?,", n), ",") + ")"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
