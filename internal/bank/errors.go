// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 餘額不足與現金不足兩類失敗以帶種類 (Kind) 的 *Error 回傳，
// 上層可用 errors.Is 判斷種類，或用 errors.As 取得請求金額與可用金額。
// 其餘輸入類錯誤維持單純的哨兵錯誤 (sentinel error)。

package bank

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind 標示交易失敗的種類。
type Kind int

const (
	// KindInsufficientFunds 代表帳戶餘額不足以扣款。
	KindInsufficientFunds Kind = iota + 1

	// KindInsufficientCash 代表機台現金存量不足以出鈔。
	KindInsufficientCash
)

func (k Kind) String() string {
	switch k {
	case KindInsufficientFunds:
		return "insufficient account funds"
	case KindInsufficientCash:
		return "insufficient machine cash"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error 為交易失敗的結果錯誤。
// Requested 與 Available 於失敗當下記錄，哨兵值兩者皆為零。
type Error struct {
	Kind      Kind
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *Error) Error() string {
	if e.Requested.IsZero() && e.Available.IsZero() {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: requested %s, available %s",
		e.Kind, e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

// Is 僅比對種類，讓帶金額的錯誤也能與哨兵值以 errors.Is 比較。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	// ErrInsufficientFunds 代表扣款金額大於帳戶目前餘額。
	// 不會造成任何狀態變更，呼叫端可改用較小金額重試。
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}

	// ErrInsufficientCash 代表提領金額大於機台現金存量；
	// 於動到帳戶之前即檢查。
	ErrInsufficientCash = &Error{Kind: KindInsufficientCash}

	// ErrBadAmount 代表金額格式錯誤或為負數。
	ErrBadAmount = errors.New("amount must be a non-negative number with at most two decimals")

	// ErrInvalidAccountID 代表帳戶代號為空字串。
	ErrInvalidAccountID = errors.New("account id must not be empty")

	// ErrDuplicateAccount 代表註冊時帳戶代號已存在。
	ErrDuplicateAccount = errors.New("account already registered")
)

func insufficientFunds(requested, available decimal.Decimal) error {
	return &Error{Kind: KindInsufficientFunds, Requested: requested, Available: available}
}

func insufficientCash(requested, available decimal.Decimal) error {
	return &Error{Kind: KindInsufficientCash, Requested: requested, Available: available}
}
