// internal/bank/bank_test.go
//
// 本檔為 Machine 模組的單元與整合測試。
// 覆蓋帳戶登錄、驗證（不洩漏帳戶是否存在）、入帳查詢、兩段式提款與並行安全。
// 所有測試皆為 in-memory 執行。

package bank

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// newMachine 建立與原始示範資料相同的機台：
// 現金 100000；帳戶 1234 (5000)、5678 (3000)。
func newMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := NewMachine(MustAmount("100000"))
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range []*Account{
		newAcct(t, "1234", "contrasena1", "5000"),
		newAcct(t, "5678", "contrasena2", "3000"),
	} {
		if err := m.Register(a); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func mustFind(t *testing.T, m *Machine, id string) *Account {
	t.Helper()
	a, ok := m.FindAccount(id)
	if !ok {
		t.Fatalf("FindAccount(%s) not found", id)
	}
	return a
}

// machineWith 建立指定現金存量的機台並登錄帳戶。
func machineWith(t *testing.T, reserve string, accts ...*Account) *Machine {
	t.Helper()
	m, err := NewMachine(MustAmount(reserve))
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range accts {
		if err := m.Register(a); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func TestNewMachineNegativeReserve(t *testing.T) {
	if _, err := NewMachine(decimal.NewFromInt(-1)); !errors.Is(err, ErrBadAmount) {
		t.Fatalf("want ErrBadAmount, got %v", err)
	}
}

func TestRegisterDuplicateRejected(t *testing.T) {
	m := newMachine(t)
	orig := mustFind(t, m, "1234")

	dup := newAcct(t, "1234", "other", "1")
	if err := m.Register(dup); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", err)
	}
	if got := mustFind(t, m, "1234"); got != orig {
		t.Fatal("duplicate registration replaced the existing account")
	}
}

func TestFindAccount(t *testing.T) {
	m := newMachine(t)
	if a, ok := m.FindAccount("9999"); ok || a != nil {
		t.Fatalf("unknown id: got %v %v", a, ok)
	}
	if a := mustFind(t, m, "5678"); a.ID() != "5678" {
		t.Fatalf("id=%s", a.ID())
	}
}

// TestAuthenticateNonLeak 對應：未知代號與錯誤憑證回傳相同結果。
func TestAuthenticateNonLeak(t *testing.T) {
	m := newMachine(t)

	a, ok := m.Authenticate("1234", "contrasena1")
	if !ok || a.ID() != "1234" {
		t.Fatalf("valid login failed: %v %v", a, ok)
	}

	unknownAcct, unknownOK := m.Authenticate("9999", "x")
	wrongAcct, wrongOK := m.Authenticate("1234", "wrongpass")
	if unknownOK || wrongOK || unknownAcct != nil || wrongAcct != nil {
		t.Fatalf("failed logins should be absent: (%v,%v) (%v,%v)", unknownAcct, unknownOK, wrongAcct, wrongOK)
	}

	// 以空憑證登入他人帳戶必須失敗
	if _, ok := m.Authenticate("5678", ""); ok {
		t.Fatal("empty credential accepted")
	}
}

func TestLookupForCreditIgnoresCredential(t *testing.T) {
	m := newMachine(t)
	dst, ok := m.LookupForCredit("5678")
	if !ok {
		t.Fatal("LookupForCredit(5678) not found")
	}
	dst.Credit(MustAmount("250"))
	wantBalance(t, dst, "3250")

	if _, ok := m.LookupForCredit("0000"); ok {
		t.Fatal("unknown destination found")
	}
}

// TestWithdrawCashExceedsReserve 對應：現金不足時帳戶與存量皆不變，
// 不論帳戶餘額是否足夠。
func TestWithdrawCashExceedsReserve(t *testing.T) {
	m := newMachine(t)
	a := mustFind(t, m, "1234")

	err := m.WithdrawCash(a, MustAmount("150000"))
	if !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("want ErrInsufficientCash, got %v", err)
	}
	wantBalance(t, a, "5000")
	if r := m.CashReserve(); !r.Equal(MustAmount("100000")) {
		t.Fatalf("reserve=%s want=100000", r)
	}

	// 帳戶餘額足夠但機台現金不足，仍為 ErrInsufficientCash
	rich := newAcct(t, "9000", "pw", "500000")
	if err := m.Register(rich); err != nil {
		t.Fatal(err)
	}
	if err := m.WithdrawCash(rich, MustAmount("100000.01")); !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("want ErrInsufficientCash, got %v", err)
	}
	wantBalance(t, rich, "500000")
}

func TestWithdrawCash(t *testing.T) {
	m := newMachine(t)
	a := mustFind(t, m, "1234")

	if err := m.WithdrawCash(a, MustAmount("3000")); err != nil {
		t.Fatal(err)
	}
	wantBalance(t, a, "2000")
	if r := m.CashReserve(); !r.Equal(MustAmount("97000")) {
		t.Fatalf("reserve=%s want=97000", r)
	}

	// 帳戶不足時存量不變
	if err := m.WithdrawCash(a, MustAmount("2000.01")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	wantBalance(t, a, "2000")
	if r := m.CashReserve(); !r.Equal(MustAmount("97000")) {
		t.Fatalf("reserve=%s want=97000", r)
	}
}

func TestWithdrawCashDrainsReserveExactly(t *testing.T) {
	a := newAcct(t, "1", "pw", "1000")
	m := machineWith(t, "100", a)

	if err := m.WithdrawCash(a, MustAmount("100")); err != nil {
		t.Fatal(err)
	}
	if !m.CashReserve().IsZero() {
		t.Fatalf("reserve=%s want=0", m.CashReserve())
	}
	if err := m.WithdrawCash(a, MustAmount("0.01")); !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("want ErrInsufficientCash, got %v", err)
	}
	wantBalance(t, a, "900")
}

// TestConcurrentWithdrawalsRaceSafety 並行提款後：存量非負，
// 且帳戶減少量等於存量減少量。
func TestConcurrentWithdrawalsRaceSafety(t *testing.T) {
	a := newAcct(t, "A", "pw", "100")
	b := newAcct(t, "B", "pw", "100")
	m := machineWith(t, "150", a, b)

	const workers = 100
	ten := decimal.NewFromInt(10)
	var wg sync.WaitGroup
	wg.Add(2 * workers)
	for i := 0; i < workers; i++ {
		for _, acct := range []*Account{a, b} {
			go func(acct *Account) {
				defer wg.Done()
				err := m.WithdrawCash(acct, ten)
				if err != nil && !errors.Is(err, ErrInsufficientCash) && !errors.Is(err, ErrInsufficientFunds) {
					t.Errorf("withdraw err: %v", err)
				}
			}(acct)
		}
	}
	wg.Wait()

	reserve := m.CashReserve()
	if reserve.IsNegative() {
		t.Fatalf("negative reserve %s", reserve)
	}
	paid := MustAmount("150").Sub(reserve)
	debited := MustAmount("200").Sub(a.Balance().Add(b.Balance()))
	if !paid.Equal(debited) {
		t.Fatalf("cash paid=%s accounts debited=%s", paid, debited)
	}
	if !reserve.IsZero() {
		t.Fatalf("reserve=%s want=0", reserve)
	}
}

func TestSummary(t *testing.T) {
	m := newMachine(t)
	a := mustFind(t, m, "1234")
	b := mustFind(t, m, "5678")
	if err := a.Transfer(b, MustAmount("2000")); err != nil {
		t.Fatal(err)
	}

	s := m.Summary()
	if !s.Reserve.Equal(MustAmount("100000")) {
		t.Fatalf("reserve=%s", s.Reserve)
	}
	if len(s.Accounts) != 2 || s.Accounts[0].ID != "1234" || s.Accounts[1].ID != "5678" {
		t.Fatalf("accounts unexpected: %+v", s.Accounts)
	}
	if !s.Accounts[0].Balance.Equal(MustAmount("3000")) || !s.Accounts[1].Balance.Equal(MustAmount("5000")) {
		t.Fatalf("balances unexpected: %+v", s.Accounts)
	}
}
