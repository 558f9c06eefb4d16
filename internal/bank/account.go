// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account：單一餘額與一組憑證，提供存入、扣款、轉帳與驗證。
// 不含任何輸入輸出或儲存細節。

package bank

import (
	"crypto/subtle"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Verifier 比對已儲存的憑證與使用者輸入的憑證。
// 可替換為雜湊比對（見 internal/credential），Account 的結構不受影響。
type Verifier interface {
	Verify(stored, candidate string) bool
}

// exactMatch 為預設驗證方式：常數時間的完全相等比對。
type exactMatch struct{}

func (exactMatch) Verify(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// accountSeq 為每個 Account 配發唯一序號，作為同代號帳戶的加鎖順序。
var accountSeq atomic.Uint64

// Account represents an ATM-accessible bank account.
// - mu：保護 balance；跨帳戶操作（轉帳）依（代號, 序號）順序加鎖。
// - id、seq、credential、verifier 建立後不再變動。
type Account struct {
	mu         sync.Mutex
	id         string
	seq        uint64
	credential string
	verifier   Verifier
	balance    decimal.Decimal
}

// AccountOption 調整 NewAccount 的可選設定。
type AccountOption func(*Account)

// WithVerifier 指定憑證驗證方式；nil 時維持預設的完全相等比對。
func WithVerifier(v Verifier) AccountOption {
	return func(a *Account) {
		if v != nil {
			a.verifier = v
		}
	}
}

// NewAccount 以帳戶代號、憑證與開戶餘額建立帳戶。
// 代號不得為空、開戶餘額不得為負。
func NewAccount(id, credential string, balance decimal.Decimal, opts ...AccountOption) (*Account, error) {
	if id == "" {
		return nil, ErrInvalidAccountID
	}
	if balance.IsNegative() {
		return nil, ErrBadAmount
	}
	a := &Account{id: id, seq: accountSeq.Add(1), credential: credential, verifier: exactMatch{}, balance: balance}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ID 回傳帳戶代號。
func (a *Account) ID() string { return a.id }

// Authenticate 回傳 candidate 是否與儲存的憑證相符；無副作用。
func (a *Account) Authenticate(candidate string) bool {
	return a.verifier.Verify(a.credential, candidate)
}

// Balance 回傳目前餘額。
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Credit 存入金額，永遠成功。
// 金額不得為負（呼叫端的前置條件），違反時 panic。
func (a *Account) Credit(amt decimal.Decimal) {
	mustNonNegative(amt)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amt)
}

// Debit 扣款；金額大於餘額時回傳 ErrInsufficientFunds 且餘額不變。
func (a *Account) Debit(amt decimal.Decimal) error {
	mustNonNegative(amt)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.debitLocked(amt)
}

// debitLocked 需在持有 a.mu 時呼叫。
func (a *Account) debitLocked(amt decimal.Decimal) error {
	if amt.GreaterThan(a.balance) {
		return insufficientFunds(amt, a.balance)
	}
	a.balance = a.balance.Sub(amt)
	return nil
}

// Transfer 自本帳戶扣款後存入 dst，兩步驟在同一臨界區內完成：
// 1) 依帳戶代號（相同時依序號）順序鎖定雙方 → 2) 扣款（失敗則 dst 不變）→ 3) 入帳。
// 轉給自己時等同扣款再存回：餘額足夠則成功且不變，否則 ErrInsufficientFunds。
func (a *Account) Transfer(dst *Account, amt decimal.Decimal) error {
	mustNonNegative(amt)
	if dst == a {
		a.mu.Lock()
		defer a.mu.Unlock()
		if amt.GreaterThan(a.balance) {
			return insufficientFunds(amt, a.balance)
		}
		return nil
	}

	first, second := a, dst
	if second.lockBefore(first) {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if err := a.debitLocked(amt); err != nil {
		return err
	}
	dst.balance = dst.balance.Add(amt)
	return nil
}

// lockBefore 回傳 a 是否應先於 b 加鎖；未登錄的同代號帳戶以序號區分。
func (a *Account) lockBefore(b *Account) bool {
	if a.id != b.id {
		return a.id < b.id
	}
	return a.seq < b.seq
}
