package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronofin/chronofin/internal/model"
)

var testNow = time.Date(2024, 3, 28, 12, 0, 0, 0, time.UTC)

func txn(id string, date time.Time, txnType model.TransactionType, amount float64) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     date,
		Type:     txnType,
		Amount:   decimal.NewFromFloat(amount),
		Currency: "USD",
	}
}

func TestBuildSections_EmptyInput(t *testing.T) {
	sections := BuildSections(nil, model.GroupByDay, testNow)

	require.Len(t, sections, 1)
	assert.Equal(t, "", sections[0].Title)
	assert.Empty(t, sections[0].Data)
	assert.Empty(t, sections[0].Totals)
}

func TestBuildSections_MonthGrouping(t *testing.T) {
	rows := []model.Transaction{
		txn("a", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), model.TypeExpense, 40),
		txn("b", time.Date(2024, 3, 28, 9, 0, 0, 0, time.UTC), model.TypeIncome, 100),
	}

	sections := BuildSections(rows, model.GroupByMonth, testNow)

	require.Len(t, sections, 1)
	assert.Equal(t, "March 2024", sections[0].Title)
	require.Len(t, sections[0].Data, 2)
	assert.True(t, decimal.NewFromInt(60).Equal(sections[0].Totals["USD"]),
		"want +100 income -40 expense = 60, got %s", sections[0].Totals["USD"])
}

func TestBuildSections_OrderingAndTieBreak(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := []model.Transaction{
		{ID: "older", Date: day, CreatedAt: day.Add(time.Hour), Amount: decimal.NewFromInt(1), Currency: "USD", Type: model.TypeExpense},
		{ID: "newer", Date: day, CreatedAt: day.Add(2 * time.Hour), Amount: decimal.NewFromInt(1), Currency: "USD", Type: model.TypeExpense},
		{ID: "earlier-day", Date: day.AddDate(0, 0, -3), CreatedAt: day, Amount: decimal.NewFromInt(1), Currency: "USD", Type: model.TypeExpense},
		{ID: "later-day", Date: day.AddDate(0, 0, 7), CreatedAt: day, Amount: decimal.NewFromInt(1), Currency: "USD", Type: model.TypeExpense},
	}

	sections := BuildSections(rows, model.GroupByDay, testNow)

	require.Len(t, sections, 3)
	// Sections descend by bucket date.
	assert.Equal(t, "later-day", sections[0].Data[0].ID)
	// Same-date rows tie-break on descending CreatedAt.
	require.Len(t, sections[1].Data, 2)
	assert.Equal(t, "newer", sections[1].Data[0].ID)
	assert.Equal(t, "older", sections[1].Data[1].ID)
	assert.Equal(t, "earlier-day", sections[2].Data[0].ID)
}

func TestBuildSections_TodayTitle(t *testing.T) {
	rows := []model.Transaction{
		txn("a", testNow.Add(-time.Hour), model.TypeExpense, 10),
		txn("b", testNow.AddDate(0, 0, -1), model.TypeExpense, 10),
	}

	sections := BuildSections(rows, model.GroupByDay, testNow)

	require.Len(t, sections, 2)
	assert.Equal(t, "Today", sections[0].Title)
	assert.Equal(t, "Mar 27, 2024", sections[1].Title)
}

func TestBuildSections_WeekStartsMonday(t *testing.T) {
	// 2024-03-28 is a Thursday; its ISO week starts Monday 2024-03-25.
	sunday := time.Date(2024, 3, 24, 10, 0, 0, 0, time.UTC)
	thursday := time.Date(2024, 3, 28, 10, 0, 0, 0, time.UTC)
	rows := []model.Transaction{
		txn("sun", sunday, model.TypeExpense, 5),
		txn("thu", thursday, model.TypeExpense, 5),
	}

	sections := BuildSections(rows, model.GroupByWeek, testNow)

	require.Len(t, sections, 2)
	assert.Equal(t, "Week of Mar 25, 2024", sections[0].Title)
	assert.Equal(t, "Week of Mar 18, 2024", sections[1].Title)
}

func TestBuildSections_AllTimeSingleBucket(t *testing.T) {
	rows := []model.Transaction{
		txn("a", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), model.TypeIncome, 10),
		txn("b", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), model.TypeIncome, 10),
	}

	sections := BuildSections(rows, model.GroupByAllTime, testNow)

	require.Len(t, sections, 1)
	assert.Equal(t, "All Time", sections[0].Title)
	assert.Len(t, sections[0].Data, 2)
}

func TestBuildSections_TransfersNetToZero(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := []model.Transaction{
		{ID: "out", Date: day, TransferID: "t1", Type: model.TypeTransfer, Amount: decimal.NewFromInt(-50), Currency: "USD"},
		{ID: "in", Date: day, TransferID: "t1", Type: model.TypeTransfer, Amount: decimal.NewFromInt(50), Currency: "USD"},
	}

	sections := BuildSections(rows, model.GroupByDay, testNow)
	require.Len(t, sections, 1)
	assert.True(t, sections[0].Totals["USD"].IsZero())

	withTransfers := BuildSectionsWithTotals(rows, model.GroupByDay, testNow, TotalsOptions{IncludeTransfers: true})
	require.Len(t, withTransfers, 1)
	assert.True(t, withTransfers[0].Totals["USD"].IsZero(),
		"both legs included still net to zero within one section")
}

func TestContribution(t *testing.T) {
	tests := []struct {
		name    string
		txnType model.TransactionType
		amount  float64
		want    float64
	}{
		{name: "income adds", txnType: model.TypeIncome, amount: 100, want: 100},
		{name: "expense subtracts", txnType: model.TypeExpense, amount: 40, want: -40},
		{name: "transfer nets to zero", txnType: model.TypeTransfer, amount: 50, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Contribution(tt.txnType, decimal.NewFromFloat(tt.amount))
			assert.True(t, decimal.NewFromFloat(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestApplyTransferLayout(t *testing.T) {
	pair := []model.Transaction{
		{ID: "out", TransferID: "t1", Type: model.TypeTransfer, Amount: decimal.NewFromInt(-50)},
		{ID: "in", TransferID: "t1", Type: model.TypeTransfer, Amount: decimal.NewFromInt(50)},
		{ID: "coffee", Type: model.TypeExpense, Amount: decimal.NewFromInt(4)},
	}

	t.Run("combine keeps only the outgoing leg", func(t *testing.T) {
		got := ApplyTransferLayout(pair, model.TransferCombine)
		require.Len(t, got, 2)
		assert.Equal(t, "out", got[0].ID)
		assert.Equal(t, "coffee", got[1].ID)
	})

	t.Run("separate passes both legs through", func(t *testing.T) {
		got := ApplyTransferLayout(pair, model.TransferSeparate)
		assert.Len(t, got, 3)
	})
}

func TestEffectivelyPending(t *testing.T) {
	minute := testNow.Unix() / 60

	tests := []struct {
		txn  model.Transaction
		name string
		want bool
	}{
		{
			name: "pending flag wins regardless of date",
			txn:  model.Transaction{Pending: true, Date: testNow.AddDate(0, 0, -10)},
			want: true,
		},
		{
			name: "future date is upcoming even when confirmed",
			txn:  model.Transaction{Pending: false, Date: testNow.AddDate(0, 0, 3)},
			want: true,
		},
		{
			name: "confirmed past transaction is settled",
			txn:  model.Transaction{Pending: false, Date: testNow.AddDate(0, 0, -1)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivelyPending(tt.txn, minute))
		})
	}
}

func TestSplitUpcoming(t *testing.T) {
	minute := testNow.Unix() / 60
	rows := []model.Transaction{
		{ID: "p", Pending: true, Date: testNow.AddDate(0, 0, -1)},
		{ID: "s", Pending: false, Date: testNow.AddDate(0, 0, -1)},
		{ID: "f", Pending: false, Date: testNow.AddDate(0, 0, 1)},
	}

	upcoming, settled := SplitUpcoming(rows, minute)

	require.Len(t, upcoming, 2)
	assert.Equal(t, "p", upcoming[0].ID)
	assert.Equal(t, "f", upcoming[1].ID)
	require.Len(t, settled, 1)
	assert.Equal(t, "s", settled[0].ID)
}
