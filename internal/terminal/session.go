// internal/terminal/session.go
//
// Package terminal
// ─────────────────────────────────────────────
// 提供 ATM 的終端機介面，作為 bank 模組的呈現層 (Presentation Layer)。
// 每個操作僅負責：
//  1. 讀取選項與參數（帳號、金額）
//  2. 呼叫 bank 層執行商業邏輯
//  3. 將結果或錯誤轉為使用者訊息
//
// 工作階段狀態：未驗證 → 已驗證 →（操作迴圈）→ 結束。
// 狀態只存在於 Session，bank 層本身不保存工作階段。
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"atm/internal/bank"
)

// ErrAuthentication 代表登入次數用盡仍未通過驗證。
var ErrAuthentication = errors.New("authentication failed")

// errDestinationNotFound 代表入帳目標帳號不存在。
var errDestinationNotFound = errors.New("destination account not found")

// Config 設定工作階段。
type Config struct {
	MaxLoginAttempts int           // 至少 1
	LoginInterval    time.Duration // 兩次登入嘗試的最短間隔，0 表示不限速
	Plain            bool          // 強制輸出不含色彩
}

// Session 為單一使用者的 ATM 工作階段。
// - machine：注入商業邏輯層（機台與帳戶）。
// - in/out：輸入與輸出來源，測試時可替換為記憶體緩衝。
type Session struct {
	ID string

	machine *bank.Machine
	in      *bufio.Scanner
	out     io.Writer
	log     *slog.Logger
	cfg     Config
	style   styles
	account *bank.Account
}

// New 建立工作階段；log 為 nil 時不輸出日誌。
func New(m *bank.Machine, in io.Reader, out io.Writer, log *slog.Logger, cfg Config) *Session {
	if cfg.MaxLoginAttempts < 1 {
		cfg.MaxLoginAttempts = 1
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.NewString()
	return &Session{
		ID:      id,
		machine: m,
		in:      bufio.NewScanner(in),
		out:     out,
		log:     log.With("session_id", id),
		cfg:     cfg,
		style:   newStyles(out, cfg.Plain),
	}
}

// Run 執行完整工作階段：登入後重複顯示選單直到使用者離開、輸入結束或 ctx 取消。
// 登入失敗回傳 ErrAuthentication；使用者正常離開回傳 nil。
func (s *Session) Run(ctx context.Context) error {
	if err := s.login(ctx); err != nil {
		return err
	}
	defer func() {
		s.log.Info("session ended", "account_id", s.account.ID(), "cash_reserve", s.machine.CashReserve().String())
	}()

	routes := s.routes()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.printMenu(routes)
		choice, ok := s.readLine()
		if !ok {
			s.farewell()
			return nil
		}
		r, found := lookupRoute(routes, choice)
		if !found {
			s.fail(errors.New("invalid option"), "Invalid option.")
			continue
		}
		if done := r.run(); done {
			return nil
		}
	}
}

// login 讀取帳號與憑證，最多嘗試 MaxLoginAttempts 次。
// 以 token bucket 限制嘗試頻率；等待期間可被 ctx 取消。
func (s *Session) login(ctx context.Context) error {
	limit := rate.Inf
	if s.cfg.LoginInterval > 0 {
		limit = rate.Every(s.cfg.LoginInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	for attempt := 1; attempt <= s.cfg.MaxLoginAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		id, ok := s.prompt("Enter account number: ")
		if !ok {
			break
		}
		cred, ok := s.prompt("Enter credential: ")
		if !ok {
			break
		}
		if a, ok := s.machine.Authenticate(id, cred); ok {
			s.account = a
			s.log = s.log.With("account_id", a.ID())
			s.log.Info("login succeeded", "attempt", attempt)
			s.success("Authentication successful.")
			return nil
		}
		s.log.Warn("login failed", "account_id", id, "attempt", attempt)
		if attempt < s.cfg.MaxLoginAttempts {
			s.fail(ErrAuthentication, "Authentication failed. Please try again.")
		}
	}
	s.fail(ErrAuthentication, "Authentication failed.")
	return ErrAuthentication
}

// balance 顯示目前餘額。
func (s *Session) balance() bool {
	s.printf("Current balance: %s\n", bank.FormatAmount(s.account.Balance()))
	return false
}

// depositOwn 存款至自己的帳戶。
func (s *Session) depositOwn() bool {
	amt, ok, err := s.promptAmount("Enter amount to deposit: ")
	if !ok {
		return s.endOfInput()
	}
	if err != nil {
		s.fail(err, describe(err))
		return false
	}
	s.account.Credit(amt)
	s.log.Debug("deposit", "amount", amt.String())
	s.success("Deposit successful. Current balance: %s", bank.FormatAmount(s.account.Balance()))
	return false
}

// depositOther 存款至他人帳戶：只需帳號，不需要對方憑證。
// 成功訊息不顯示對方餘額。
func (s *Session) depositOther() bool {
	dstID, ok := s.prompt("Enter destination account number: ")
	if !ok {
		return s.endOfInput()
	}
	amt, ok, err := s.promptAmount("Enter amount to deposit: ")
	if !ok {
		return s.endOfInput()
	}
	if err != nil {
		s.fail(err, describe(err))
		return false
	}
	dst, found := s.machine.LookupForCredit(dstID)
	if !found {
		s.fail(errDestinationNotFound, describe(errDestinationNotFound))
		return false
	}
	dst.Credit(amt)
	s.log.Debug("deposit to other account", "destination", dstID, "amount", amt.String())
	s.success("Deposit of %s to account %s successful.", bank.FormatAmount(amt), dstID)
	return false
}

// transfer 自本帳戶轉帳至他人帳戶。
func (s *Session) transfer() bool {
	dstID, ok := s.prompt("Enter destination account number: ")
	if !ok {
		return s.endOfInput()
	}
	amt, ok, err := s.promptAmount("Enter amount to transfer: ")
	if !ok {
		return s.endOfInput()
	}
	if err != nil {
		s.fail(err, describe(err))
		return false
	}
	dst, found := s.machine.LookupForCredit(dstID)
	if !found {
		s.fail(errDestinationNotFound, describe(errDestinationNotFound))
		return false
	}
	if err := s.account.Transfer(dst, amt); err != nil {
		s.fail(err, describe(err))
		return false
	}
	s.log.Debug("transfer", "destination", dstID, "amount", amt.String())
	s.success("Transfer to account %s successful. Current balance: %s", dstID, bank.FormatAmount(s.account.Balance()))
	return false
}

// withdraw 提領現金，受機台現金存量限制。
func (s *Session) withdraw() bool {
	amt, ok, err := s.promptAmount("Enter amount to withdraw: ")
	if !ok {
		return s.endOfInput()
	}
	if err != nil {
		s.fail(err, describe(err))
		return false
	}
	if err := s.machine.WithdrawCash(s.account, amt); err != nil {
		s.fail(err, describe(err))
		return false
	}
	s.log.Debug("cash withdrawal", "amount", amt.String())
	s.success("Withdrawal successful. Current balance: %s", bank.FormatAmount(s.account.Balance()))
	return false
}

// exit 結束工作階段。
func (s *Session) exit() bool {
	s.farewell()
	return true
}

// endOfInput 於操作途中輸入結束時呼叫，等同離開。
func (s *Session) endOfInput() bool {
	s.printf("\n")
	return s.exit()
}

func (s *Session) farewell() {
	s.printf("%s\n", s.style.title.Render("Thank you for using the ATM."))
}

// readLine 讀取一行並去除前後空白；輸入結束時回傳 false。
func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) prompt(label string) (string, bool) {
	s.printf("%s", s.style.muted.Render(label))
	return s.readLine()
}

// promptAmount 讀取並解析金額；ok 為 false 代表輸入結束。
func (s *Session) promptAmount(label string) (amt decimal.Decimal, ok bool, err error) {
	line, ok := s.prompt(label)
	if !ok {
		return amt, false, nil
	}
	amt, err = bank.ParseAmount(line)
	return amt, true, err
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}
