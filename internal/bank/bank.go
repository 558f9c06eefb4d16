// internal/bank/bank.go

// Package bank 定義核心商業邏輯：帳戶登錄、驗證、以及受機台現金存量限制的提款。
// Machine 為聚合根 (Aggregate Root)，以單一互斥鎖保護帳戶索引與現金存量；
// 每個 Account 另有自己的鎖保護餘額。加鎖順序固定為「機台 → 帳戶」。
package bank

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Machine 為 ATM 本體：
// - mu：保護 accts 與 reserve。
// - accts：帳戶索引表（ID → *Account），帳戶由機台獨佔擁有。
// - reserve：機台內現金存量，只會因提款而減少。
type Machine struct {
	mu      sync.Mutex
	accts   map[string]*Account
	reserve decimal.Decimal
}

// NewMachine 以初始現金存量建立機台；存量不得為負。
func NewMachine(reserve decimal.Decimal) (*Machine, error) {
	if reserve.IsNegative() {
		return nil, ErrBadAmount
	}
	return &Machine{accts: make(map[string]*Account), reserve: reserve}, nil
}

// Register 將帳戶加入索引表。
// 代號重複時回傳 ErrDuplicateAccount，既有帳戶不會被覆寫。
func (m *Machine) Register(a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accts[a.id]; ok {
		return ErrDuplicateAccount
	}
	m.accts[a.id] = a
	return nil
}

// FindAccount 依代號查詢帳戶；不存在時回傳 false，不視為錯誤。
func (m *Machine) FindAccount(id string) (*Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accts[id]
	return a, ok
}

// Authenticate 以代號與憑證取得帳戶。
// 代號不存在與憑證錯誤回傳相同結果，呼叫端無法分辨帳戶是否存在。
func (m *Machine) Authenticate(id, credential string) (*Account, bool) {
	a, ok := m.FindAccount(id)
	if !ok || !a.Authenticate(credential) {
		return nil, false
	}
	return a, true
}

// LookupForCredit 僅以代號查詢入帳目標（存款至他人帳戶、轉帳對象）。
// 入帳不需要證明身分，因此不檢查憑證。
func (m *Machine) LookupForCredit(id string) (*Account, bool) {
	return m.FindAccount(id)
}

// WithdrawCash 提領現金，兩段式檢查：
// 1) 先檢查機台現金存量（不足則 ErrInsufficientCash，帳戶不變）
// 2) 再自帳戶扣款（不足則 ErrInsufficientFunds，存量不變）
// 3) 最後扣減存量。
// 整個流程持有機台鎖與帳戶鎖，其他操作看不到只完成一半的狀態。
func (m *Machine) WithdrawCash(a *Account, amt decimal.Decimal) error {
	mustNonNegative(amt)
	m.mu.Lock()
	defer m.mu.Unlock()

	if amt.GreaterThan(m.reserve) {
		return insufficientCash(amt, m.reserve)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.debitLocked(amt); err != nil {
		return err
	}
	m.reserve = m.reserve.Sub(amt)
	return nil
}

// CashReserve 回傳目前現金存量。
func (m *Machine) CashReserve() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserve
}

// AccountSummary 為單一帳戶的唯讀快照（不含憑證）。
type AccountSummary struct {
	ID      string
	Balance decimal.Decimal
}

// Summary 為機台狀態的唯讀快照。
type Summary struct {
	Reserve  decimal.Decimal
	Accounts []AccountSummary
}

// Summary 匯出現金存量與所有帳戶餘額，依代號排序。
// 回傳值拷貝，不暴露內部指標。
func (m *Machine) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Summary{Reserve: m.reserve, Accounts: make([]AccountSummary, 0, len(m.accts))}
	for id, a := range m.accts {
		s.Accounts = append(s.Accounts, AccountSummary{ID: id, Balance: a.Balance()})
	}
	sort.Slice(s.Accounts, func(i, j int) bool { return s.Accounts[i].ID < s.Accounts[j].ID })
	return s
}
