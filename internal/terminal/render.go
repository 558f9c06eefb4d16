// internal/terminal/render.go
//
// 本檔負責統一終端機輸出格式。
// 成功訊息以 ✓ 開頭，錯誤訊息以 ✗ 開頭；
// 非互動式輸出（管線、測試緩衝）自動不含色彩。
package terminal

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"atm/internal/bank"
)

// 使用者訊息，與錯誤種類一一對應。
const (
	msgInsufficientFunds = "Insufficient funds in the account."
	msgInsufficientCash  = "Insufficient cash in the machine."
	msgNotFound          = "Destination account not found."
	msgBadAmount         = "Invalid amount."
	msgFailed            = "Operation failed."
)

type styles struct {
	ok    lipgloss.Style
	fail  lipgloss.Style
	title lipgloss.Style
	muted lipgloss.Style
}

func newStyles(out io.Writer, plain bool) styles {
	r := lipgloss.NewRenderer(out)
	if plain {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("76")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("204")),
		title: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

// describe 將錯誤轉為使用者訊息。
// 錯誤種類的判斷集中於此，各操作不需個別處理。
func describe(err error) string {
	switch {
	case errors.Is(err, bank.ErrInsufficientCash):
		return msgInsufficientCash
	case errors.Is(err, bank.ErrInsufficientFunds):
		return msgInsufficientFunds
	case errors.Is(err, bank.ErrBadAmount):
		return msgBadAmount
	case errors.Is(err, errDestinationNotFound):
		return msgNotFound
	default:
		return msgFailed
	}
}

// success 輸出成功訊息。
func (s *Session) success(format string, a ...any) {
	s.printf("%s %s\n", s.style.ok.Render("✓"), fmt.Sprintf(format, a...))
}

// fail 輸出錯誤訊息並記錄於 debug 日誌；工作階段繼續。
func (s *Session) fail(err error, msg string) {
	s.log.Debug("operation failed", "error", err)
	s.printf("%s %s\n", s.style.fail.Render("✗"), msg)
}
