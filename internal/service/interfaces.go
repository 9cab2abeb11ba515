// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/chronofin/chronofin/internal/model"
)

// SearchMatchMode controls how free-text search matches transaction names.
type SearchMatchMode string

// Search match modes.
const (
	MatchContains SearchMatchMode = "contains"
	MatchExact    SearchMatchMode = "exact"
	MatchPrefix   SearchMatchMode = "prefix"
)

// TransactionFilter defines structural filtering for transaction queries.
// The storage layer is the only component that filters; consumers of its
// result set perform layout and grouping transforms but never re-filter.
type TransactionFilter struct {
	StartDate      *time.Time
	EndDate        *time.Time
	Pending        *bool
	HasAttachments *bool
	Search         string
	SearchMode     SearchMatchMode
	AccountIDs     []string
	CategoryIDs    []string
	Tags           []string
	Types          []model.TransactionType
	Limit          int
	Offset         int
	IncludeDeleted bool
}

// ConfirmOptions controls the pending -> confirmed transition.
type ConfirmOptions struct {
	// UpdateTransactionDate bumps the transaction's date to "now" on
	// confirmation.
	UpdateTransactionDate bool
}

// Preferences holds the user preferences the engine composes.
type Preferences struct {
	TransferLayout           model.TransferLayout
	GroupBy                  model.GroupBy
	RequireConfirmation      bool
	UpdateDateOnConfirm      bool
	IncludeTransfersInTotals bool
}

// Preference keys as stored.
const (
	PrefRequireConfirmation      = "require_confirmation"
	PrefUpdateDateOnConfirm      = "update_date_on_confirm"
	PrefTransferLayout           = "transfer_layout"
	PrefGroupBy                  = "group_by"
	PrefIncludeTransfersInTotals = "include_transfers_in_totals"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetPendingTransactions(ctx context.Context) ([]model.Transaction, error)
	// ConfirmTransaction is an idempotent pending -> confirmed transition;
	// confirming an already-confirmed transaction is a no-op.
	ConfirmTransaction(ctx context.Context, id string, opts ConfirmOptions) error
	DeleteTransaction(ctx context.Context, id string) error

	// Recurring rule operations
	SaveRecurringRule(ctx context.Context, rule *model.RecurringRule) error
	GetRecurringRule(ctx context.Context, id string) (*model.RecurringRule, error)
	GetRecurringRules(ctx context.Context) ([]model.RecurringRule, error)

	// Preference operations
	GetPreferences(ctx context.Context) (Preferences, error)
	SetPreference(ctx context.Context, key, value string) error

	// SubscribeChanges registers a callback invoked after any write, so
	// consumers re-derive views without polling. The returned function
	// removes the subscription.
	SubscribeChanges(fn func()) func()

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}
