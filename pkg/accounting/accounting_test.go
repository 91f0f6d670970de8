package accounting_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/accounting"
	"github.com/aretw0/tally/pkg/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func note(id string, created time.Time, tags ...string) core.Note {
	return core.Note{ID: id, Title: id, CreationTime: created, LastEditTime: created, Tags: tags}
}

var day = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func TestCalculateStatistics_ExactBalance(t *testing.T) {
	notes := []core.Note{
		note("1", day, "记账_收入_100.10"),
		note("2", day, "记账_支出_30.05"),
	}

	stats := accounting.CalculateStatistics(notes)
	assert.True(t, dec("100.10").Equal(stats.TotalIncome), stats.TotalIncome.String())
	assert.True(t, dec("30.05").Equal(stats.TotalExpense), stats.TotalExpense.String())
	assert.True(t, dec("70.05").Equal(stats.Balance), stats.Balance.String())
	assert.True(t, stats.Balance.Equal(stats.TotalIncome.Sub(stats.TotalExpense)))
	assert.Equal(t, 2, stats.NoteCount)
}

func TestCalculateStatistics_NoteCountPerNote(t *testing.T) {
	notes := []core.Note{
		note("1", day, "记账_支出_10", "记账_转账_5", "生活"),
		note("2", day, "随笔"),
	}

	stats := accounting.CalculateStatistics(notes)
	assert.Equal(t, 1, stats.NoteCount)
	assert.True(t, dec("15").Equal(stats.TotalExpense))
	assert.True(t, decimal.Zero.Equal(stats.TotalIncome))
	assert.True(t, dec("-15").Equal(stats.Balance))
}

func TestCalculateStatistics_UnknownTypesCountAsExpense(t *testing.T) {
	notes := []core.Note{
		note("1", day, "记账_红包_8.8"),
		note("2", day, "记账_收入_20"),
		note("3", day, "记账_收入_0.2"),
	}

	stats := accounting.CalculateStatistics(notes)
	assert.True(t, dec("8.8").Equal(stats.TotalExpense))
	assert.True(t, dec("20.2").Equal(stats.TotalIncome))
	require.Len(t, stats.TypeStatistics, 2)
	assert.True(t, dec("8.8").Equal(stats.TypeStatistics["红包"]))
	assert.True(t, dec("20.2").Equal(stats.TypeStatistics["收入"]))
}

func TestCalculateStatistics_Empty(t *testing.T) {
	stats := accounting.CalculateStatistics(nil)
	assert.Equal(t, 0, stats.NoteCount)
	assert.True(t, stats.Balance.IsZero())
	assert.Empty(t, stats.TypeStatistics)
}

func TestGroupByType(t *testing.T) {
	notes := []core.Note{
		note("a", day, "记账_支出_10", "记账_支出_15"),
		note("b", day, "记账_收入_100"),
		note("c", day, "记账_支出_1", "记账_转账_3"),
	}

	groups := accounting.GroupByType(notes)
	require.Len(t, groups, 3)

	assert.Equal(t, "收入", groups[0].Type)
	assert.Equal(t, "支出", groups[1].Type)
	assert.Equal(t, "转账", groups[2].Type)

	assert.True(t, dec("26").Equal(groups[1].Amount))
	require.Len(t, groups[1].Notes, 2, "note a books 支出 twice but is listed once")
	assert.Equal(t, "a", groups[1].Notes[0].ID)
	assert.Equal(t, "c", groups[1].Notes[1].ID)

	for i := 1; i < len(groups); i++ {
		assert.False(t, groups[i].Amount.GreaterThan(groups[i-1].Amount))
	}
}

func TestFilterByDateRange_Inclusive(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 999_000_000, time.UTC)
	notes := []core.Note{
		note("start", start, "记账_支出_1"),
		note("end", end, "记账_支出_1"),
		note("before", start.Add(-time.Millisecond), "记账_支出_1"),
		note("after", end.Add(time.Millisecond), "记账_支出_1"),
		note("plain", day, "随笔"),
	}

	got := accounting.FilterByDateRange(notes, start, end)
	require.Len(t, got, 2)
	assert.Equal(t, "start", got[0].ID)
	assert.Equal(t, "end", got[1].ID)
}

func TestFilterByTypeAndAccountingNotes(t *testing.T) {
	notes := []core.Note{
		note("1", day, "记账_支出_1"),
		note("2", day, "随笔"),
		note("3", day, "记账_收入_5", "记账_支出_2"),
	}

	expense := accounting.FilterByType(notes, "支出")
	require.Len(t, expense, 2)
	assert.Equal(t, "1", expense[0].ID)
	assert.Equal(t, "3", expense[1].ID)

	assert.Empty(t, accounting.FilterByType(notes, "借款"))

	acc := accounting.AccountingNotes(notes)
	require.Len(t, acc, 2)
	assert.Equal(t, "1", acc[0].ID)
	assert.Equal(t, "3", acc[1].ID)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "¥50", accounting.FormatAmount(dec("50.00")))
	assert.Equal(t, "¥50.5", accounting.FormatAmount(dec("50.50")))
	assert.Equal(t, "¥-15", accounting.FormatAmount(dec("-15.0")))
	assert.Equal(t, "¥0", accounting.FormatAmount(decimal.Zero))
}

func TestSummary(t *testing.T) {
	notes := []core.Note{
		note("1", day, "记账_收入_100"),
		note("2", day, "记账_支出_40.50"),
	}

	want := "记账笔记：2条\n总收入：¥100\n总支出：¥40.5\n余额：¥59.5"
	assert.Equal(t, want, accounting.Summary(notes))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "33.3%", accounting.PercentageString(dec("1"), dec("3")))
	assert.Equal(t, "66.7%", accounting.PercentageString(dec("2"), dec("3")))
	assert.Equal(t, "100.0%", accounting.PercentageString(dec("5"), dec("5")))
	assert.Equal(t, "0.0%", accounting.PercentageString(dec("5"), decimal.Zero))
	assert.True(t, dec("33.33").Equal(accounting.Percentage(dec("1"), dec("3"))))
}
