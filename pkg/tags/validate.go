package tags

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Validation messages, shown verbatim to the user.
const (
	MsgEmpty          = "标签不能为空"
	MsgMissingPrefix  = "记账标签必须以'记账_'开头"
	MsgWrongFormat    = "记账标签格式错误，应为：记账_类型_金额"
	MsgEmptyType      = "记账类型不能为空"
	MsgEmptyAmount    = "金额不能为空"
	MsgInvalidAmount  = "金额格式错误"
	MsgNegativeAmount = "金额不能为负数"
)

// Validation is the outcome of Validate. Error is empty when OK is true.
type Validation struct {
	OK    bool
	Error string
}

func invalid(msg string) Validation {
	return Validation{Error: msg}
}

// Validate runs the form-level checks on a tag being entered and reports the
// first rule that fails. It is looser than Parse: "记账_x_1e2" passes here
// but is not an accounting tag.
func Validate(tag string) Validation {
	if strings.TrimSpace(tag) == "" {
		return invalid(MsgEmpty)
	}
	if !strings.HasPrefix(tag, Prefix+Separator) {
		return invalid(MsgMissingPrefix)
	}

	parts := strings.Split(tag, Separator)
	if len(parts) != 3 {
		return invalid(MsgWrongFormat)
	}
	if strings.TrimSpace(parts[1]) == "" {
		return invalid(MsgEmptyType)
	}

	raw := parts[2]
	if strings.TrimSpace(raw) == "" {
		return invalid(MsgEmptyAmount)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return invalid(MsgInvalidAmount)
	}
	if amount.IsNegative() {
		return invalid(MsgNegativeAmount)
	}
	return Validation{OK: true}
}
