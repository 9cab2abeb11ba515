// Package model defines the core domain types shared across the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes how a transaction's amount is interpreted.
type TransactionType string

// Transaction types.
const (
	TypeExpense  TransactionType = "expense"
	TypeIncome   TransactionType = "income"
	TypeTransfer TransactionType = "transfer"
)

// ParseTransactionType converts a string to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TypeExpense, TypeIncome, TypeTransfer:
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Transaction represents a single financial transaction.
//
// Income and expense amounts are stored as positive magnitudes; the Type
// field carries the direction. Transfer legs carry signed amounts: the
// debit (outgoing) leg is negative, the credit leg positive, and both
// legs share a TransferID.
type Transaction struct {
	Date       time.Time
	CreatedAt  time.Time
	ID         string
	Name       string // Raw transaction description
	AccountID  string
	CategoryID string
	Currency   string
	TransferID string // Non-empty marks one leg of a transfer pair
	Hash       string
	Notes      string
	Tags       []string
	Type       TransactionType
	Amount     decimal.Decimal

	// RequiresManualConfirmation overrides the global confirmation policy
	// for this transaction; nil means "inherit global policy".
	RequiresManualConfirmation *bool

	AttachmentCount int
	Pending         bool
	Deleted         bool
}

// IsTransfer reports whether the transaction is one leg of a transfer pair.
func (t *Transaction) IsTransfer() bool {
	return t.TransferID != ""
}

// EffectiveRequiresConfirmation resolves the per-transaction override
// against the global "require confirmation" preference.
func (t *Transaction) EffectiveRequiresConfirmation(global bool) bool {
	if t.RequiresManualConfirmation != nil {
		return *t.RequiresManualConfirmation
	}
	return global
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.Date.Format(time.RFC3339),
		t.Amount.String(),
		t.Currency,
		t.Name,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
