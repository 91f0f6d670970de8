// Package tags implements the accounting tag grammar: plain tag strings of the
// form "记账_<type>_<amount>" that carry a financial fact.
//
// Tags double as free-form categories, so Parse is a filter predicate rather
// than a strict parser: anything that does not match is simply not an
// accounting tag.
package tags

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Prefix opens every accounting tag.
	Prefix = "记账"
	// Separator delimits the three parts of an accounting tag.
	Separator = "_"

	TypeExpense   = "支出"
	TypeIncome    = "收入"
	TypeTransfer  = "转账"
	TypeLoan      = "借款"
	TypeRepayment = "还款"
)

var pattern = regexp.MustCompile(`^` + Prefix + `_([^_]+)_([0-9]+(?:\.[0-9]+)?)$`)

// AccountingTag is the parsed form of an accounting tag.
type AccountingTag struct {
	Type     string
	Amount   decimal.Decimal
	Original string
}

// IsIncome reports whether the tag counts towards income. Every other type,
// including unknown custom ones, counts as expense.
func (t AccountingTag) IsIncome() bool {
	return t.Type == TypeIncome
}

// Parse matches the whole (trimmed) tag against the grammar.
func Parse(tag string) (AccountingTag, bool) {
	trimmed := strings.TrimSpace(tag)
	m := pattern.FindStringSubmatch(trimmed)
	if m == nil {
		return AccountingTag{}, false
	}
	amount, err := decimal.NewFromString(m[2])
	if err != nil {
		return AccountingTag{}, false
	}
	return AccountingTag{Type: m[1], Amount: amount, Original: tag}, true
}

// ExtractAll parses every tag, dropping the ones that are not accounting tags.
func ExtractAll(tags []string) []AccountingTag {
	var out []AccountingTag
	for _, t := range tags {
		if at, ok := Parse(t); ok {
			out = append(out, at)
		}
	}
	return out
}

// IsAccounting reports whether tag parses as an accounting tag.
func IsAccounting(tag string) bool {
	_, ok := Parse(tag)
	return ok
}

// HasAccounting reports whether any of tags is an accounting tag.
func HasAccounting(tags []string) bool {
	for _, t := range tags {
		if IsAccounting(t) {
			return true
		}
	}
	return false
}

// Create formats an accounting tag. Trailing zeros of amount are dropped,
// so 50.00 becomes "50" and 50.50 becomes "50.5".
func Create(typ string, amount decimal.Decimal) string {
	return Prefix + Separator + typ + Separator + PlainString(amount)
}

// PlainString renders d without exponent and without trailing fractional zeros.
func PlainString(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// CommonTypes returns the suggested accounting types in display order.
func CommonTypes() []string {
	return []string{TypeExpense, TypeIncome, TypeTransfer, TypeLoan, TypeRepayment}
}
