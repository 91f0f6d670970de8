// Package accounting turns a collection of notes into financial statistics
// using the accounting tags attached to them.
//
// Nothing here returns an error: tags that are not accounting tags are
// skipped, so accounting stays opt-in per tag.
package accounting

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/tags"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "¥"

// Statistics is the financial digest of a set of notes.
type Statistics struct {
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal
	Balance        decimal.Decimal
	TypeStatistics map[string]decimal.Decimal
	// NoteCount is the number of notes carrying at least one accounting tag.
	NoteCount int
}

// TypeGroup is the total amount booked under one accounting type.
type TypeGroup struct {
	Type   string
	Amount decimal.Decimal
	Notes  []core.Note
}

// CalculateStatistics sums every accounting tag of notes. Only the income
// type adds to TotalIncome; any other type, known or not, is an expense.
func CalculateStatistics(notes []core.Note) Statistics {
	stats := Statistics{
		TotalIncome:    decimal.Zero,
		TotalExpense:   decimal.Zero,
		TypeStatistics: make(map[string]decimal.Decimal),
	}

	for _, n := range notes {
		found := tags.ExtractAll(n.Tags)
		if len(found) == 0 {
			continue
		}
		stats.NoteCount++

		for _, t := range found {
			if t.IsIncome() {
				stats.TotalIncome = stats.TotalIncome.Add(t.Amount)
			} else {
				stats.TotalExpense = stats.TotalExpense.Add(t.Amount)
			}
			sum, ok := stats.TypeStatistics[t.Type]
			if !ok {
				sum = decimal.Zero
			}
			stats.TypeStatistics[t.Type] = sum.Add(t.Amount)
		}
	}

	stats.Balance = stats.TotalIncome.Sub(stats.TotalExpense)
	return stats
}

// GroupByType buckets every (note, accounting tag) pair by type. A note that
// books the same type twice is listed once in that group. Groups are sorted by
// amount, largest first; ties keep the order in which types were first seen.
func GroupByType(notes []core.Note) []TypeGroup {
	var groups []*TypeGroup
	index := make(map[string]*TypeGroup)
	seen := make(map[string]map[string]bool)

	for _, n := range notes {
		for _, t := range tags.ExtractAll(n.Tags) {
			g, ok := index[t.Type]
			if !ok {
				g = &TypeGroup{Type: t.Type, Amount: decimal.Zero}
				index[t.Type] = g
				seen[t.Type] = make(map[string]bool)
				groups = append(groups, g)
			}
			g.Amount = g.Amount.Add(t.Amount)
			if !seen[t.Type][n.ID] {
				seen[t.Type][n.ID] = true
				g.Notes = append(g.Notes, n)
			}
		}
	}

	out := make([]TypeGroup, len(groups))
	for i, g := range groups {
		out[i] = *g
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// FilterByDateRange keeps the accounting notes created within [start, end].
func FilterByDateRange(notes []core.Note, start, end time.Time) []core.Note {
	r := core.DateRange{Start: start, End: end}
	return filter(notes, func(n core.Note) bool {
		return r.Contains(n.CreationTime) && tags.HasAccounting(n.Tags)
	})
}

// FilterByType keeps the notes with at least one accounting tag of type typ.
func FilterByType(notes []core.Note, typ string) []core.Note {
	return filter(notes, func(n core.Note) bool {
		for _, t := range tags.ExtractAll(n.Tags) {
			if t.Type == typ {
				return true
			}
		}
		return false
	})
}

// AccountingNotes keeps the notes with at least one accounting tag, in order.
func AccountingNotes(notes []core.Note) []core.Note {
	return filter(notes, func(n core.Note) bool {
		return tags.HasAccounting(n.Tags)
	})
}

func filter(notes []core.Note, keep func(core.Note) bool) []core.Note {
	out := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// FormatAmount renders amount with the currency symbol and no trailing zeros.
func FormatAmount(amount decimal.Decimal) string {
	return CurrencySymbol + tags.PlainString(amount)
}

// Summary is a short four-line digest of the statistics of notes.
func Summary(notes []core.Note) string {
	s := CalculateStatistics(notes)
	var b strings.Builder
	b.WriteString("记账笔记：" + strconv.Itoa(s.NoteCount) + "条\n")
	b.WriteString("总收入：" + FormatAmount(s.TotalIncome) + "\n")
	b.WriteString("总支出：" + FormatAmount(s.TotalExpense) + "\n")
	b.WriteString("余额：" + FormatAmount(s.Balance))
	return b.String()
}

var hundred = decimal.NewFromInt(100)

// Percentage returns part as a percentage of total. The ratio is rounded half
// up to four places before scaling, so the result has at most two decimals.
// A zero total yields zero.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.DivRound(total, 4).Mul(hundred)
}

// PercentageString formats Percentage with one decimal place, e.g. "33.3%".
func PercentageString(part, total decimal.Decimal) string {
	return Percentage(part, total).StringFixed(1) + "%"
}
