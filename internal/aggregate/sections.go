// Package aggregate turns a raw transaction stream plus display preferences
// into time-bucketed, totaled sections. Every function here is pure: "now"
// is always passed in, derived from the minute ticker, so repeated calls
// within the same minute produce identical output.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chronofin/chronofin/internal/model"
)

// EffectivelyPending reports whether a transaction should be treated as
// upcoming: still pending, or dated after the current minute bucket.
func EffectivelyPending(txn model.Transaction, minute int64) bool {
	return txn.Pending || txn.Date.After(time.Unix(minute*60, 0))
}

// SplitUpcoming partitions rows into effectively-pending and settled rows,
// preserving input order.
func SplitUpcoming(rows []model.Transaction, minute int64) (upcoming, settled []model.Transaction) {
	for _, txn := range rows {
		if EffectivelyPending(txn, minute) {
			upcoming = append(upcoming, txn)
		} else {
			settled = append(settled, txn)
		}
	}
	return upcoming, settled
}

// sortRows orders rows by descending date, then descending creation time as
// tie-break, without mutating the input.
func sortRows(rows []model.Transaction) []model.Transaction {
	sorted := make([]model.Transaction, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// BuildSections groups rows into sections keyed by groupBy, ordered by
// descending bucket date, each carrying per-currency signed totals. Empty
// input yields a single empty section so callers can always render a
// consistent empty state.
func BuildSections(rows []model.Transaction, groupBy model.GroupBy, now time.Time) []model.TransactionSection {
	return BuildSectionsWithTotals(rows, groupBy, now, TotalsOptions{})
}

// TotalsOptions adjusts how totals are computed.
type TotalsOptions struct {
	// IncludeTransfers adds transfer legs to totals instead of netting
	// them to zero.
	IncludeTransfers bool
}

// BuildSectionsWithTotals is BuildSections with explicit totals options.
func BuildSectionsWithTotals(rows []model.Transaction, groupBy model.GroupBy, now time.Time, opts TotalsOptions) []model.TransactionSection {
	if len(rows) == 0 {
		return []model.TransactionSection{{
			Title:  "",
			Data:   []model.Transaction{},
			Totals: map[string]decimal.Decimal{},
		}}
	}

	sorted := sortRows(rows)

	var sections []model.TransactionSection
	index := make(map[string]int)
	for _, txn := range sorted {
		key := bucketKey(txn.Date, groupBy)
		i, ok := index[key]
		if !ok {
			i = len(sections)
			index[key] = i
			sections = append(sections, model.TransactionSection{
				Title:  bucketTitle(txn.Date, groupBy, now),
				Totals: map[string]decimal.Decimal{},
			})
		}
		sections[i].Data = append(sections[i].Data, txn)

		contribution := Contribution(txn.Type, txn.Amount)
		if opts.IncludeTransfers && txn.Type == model.TypeTransfer {
			contribution = txn.Amount
		}
		sections[i].Totals[txn.Currency] = sections[i].Totals[txn.Currency].Add(contribution)
	}

	// Rows were pre-sorted descending, so buckets appeared in descending
	// date order already.
	return sections
}

// Contribution returns a transaction's signed contribution to totals:
// income adds, expense subtracts, transfers net to zero.
func Contribution(txnType model.TransactionType, amount decimal.Decimal) decimal.Decimal {
	switch txnType {
	case model.TypeIncome:
		return amount
	case model.TypeExpense:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

// bucketKey derives the grouping key for a transaction date.
func bucketKey(date time.Time, groupBy model.GroupBy) string {
	switch groupBy {
	case model.GroupByHour:
		return date.Format("2006-01-02T15")
	case model.GroupByDay:
		return date.Format("2006-01-02")
	case model.GroupByWeek:
		return startOfISOWeek(date).Format("2006-01-02")
	case model.GroupByMonth:
		return date.Format("2006-01")
	case model.GroupByYear:
		return date.Format("2006")
	case model.GroupByAllTime:
		return "all"
	default:
		return date.Format("2006-01-02")
	}
}

// bucketTitle derives the display title for a transaction's bucket.
func bucketTitle(date time.Time, groupBy model.GroupBy, now time.Time) string {
	switch groupBy {
	case model.GroupByHour:
		return date.Format("Jan 2, 2006 15:00")
	case model.GroupByDay:
		if sameDay(date, now) {
			return "Today"
		}
		return date.Format("Jan 2, 2006")
	case model.GroupByWeek:
		return "Week of " + startOfISOWeek(date).Format("Jan 2, 2006")
	case model.GroupByMonth:
		return date.Format("January 2006")
	case model.GroupByYear:
		return date.Format("2006")
	case model.GroupByAllTime:
		return "All Time"
	default:
		return date.Format("Jan 2, 2006")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// startOfISOWeek returns midnight on the Monday of the date's ISO week.
func startOfISOWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}
