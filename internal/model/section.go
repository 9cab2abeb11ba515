package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GroupBy selects the time bucket granularity for transaction sections.
type GroupBy string

// Grouping granularities.
const (
	GroupByHour    GroupBy = "hour"
	GroupByDay     GroupBy = "day"
	GroupByWeek    GroupBy = "week"
	GroupByMonth   GroupBy = "month"
	GroupByYear    GroupBy = "year"
	GroupByAllTime GroupBy = "allTime"
)

// ParseGroupBy converts a string to a GroupBy.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case GroupByHour, GroupByDay, GroupByWeek, GroupByMonth, GroupByYear, GroupByAllTime:
		return GroupBy(s), nil
	default:
		return "", fmt.Errorf("unknown grouping: %q", s)
	}
}

// TransferLayout controls how transfer pairs are displayed.
type TransferLayout string

// Transfer display layouts.
const (
	// TransferCombine collapses a transfer pair into its outgoing leg.
	TransferCombine TransferLayout = "combine"
	// TransferSeparate shows both legs of a transfer pair.
	TransferSeparate TransferLayout = "separate"
)

// ParseTransferLayout converts a string to a TransferLayout.
func ParseTransferLayout(s string) (TransferLayout, error) {
	switch TransferLayout(s) {
	case TransferCombine, TransferSeparate:
		return TransferLayout(s), nil
	default:
		return "", fmt.Errorf("unknown transfer layout: %q", s)
	}
}

// TransactionSection is one time bucket of transactions with per-currency
// totals, ready for display. Sections are ephemeral and recomputed on every
// aggregation pass.
type TransactionSection struct {
	Totals map[string]decimal.Decimal
	Title  string
	Data   []Transaction
}
