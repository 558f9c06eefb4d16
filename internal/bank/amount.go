// internal/bank/amount.go
//
// 金額以 decimal.Decimal 表示，避免浮點誤差；
// 最多兩位小數（最小貨幣單位為分）。

package bank

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountRe 只接受一般十進位寫法，不含科學記號。
var amountRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ParseAmount 解析使用者輸入的金額字串。
// 空字串、非數字（含科學記號）、負數或超過兩位小數皆回傳 ErrBadAmount。
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if !amountRe.MatchString(s) {
		return decimal.Zero, ErrBadAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrBadAmount
	}
	return d, nil
}

// MustAmount 為測試與佈建資料使用的便捷函式，格式錯誤時 panic。
func MustAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic("bank: bad amount " + s)
	}
	return d
}

// FormatAmount 以 "$5000.00" 格式輸出金額。
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func mustNonNegative(amt decimal.Decimal) {
	if amt.IsNegative() {
		panic("bank: negative amount " + amt.String())
	}
}
