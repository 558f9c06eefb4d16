// Package logger 建立 ATM 使用的結構化日誌 (log/slog)。
//
// 以 JSON（預設）或文字格式輸出，並遮蔽憑證類欄位，
// 避免帳戶密碼出現在日誌中。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Redacted 為遮蔽後的欄位值。
const Redacted = "[REDACTED]"

// sensitiveKeys 為需遮蔽的欄位名稱（不分大小寫）。
var sensitiveKeys = map[string]struct{}{
	"credential": {},
	"password":   {},
	"pin":        {},
	"secret":     {},
}

// Config 設定日誌輸出。
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // json, text
	Output io.Writer // 預設 os.Stderr
}

// New 依設定建立 *slog.Logger。
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: redact,
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		h = slog.NewJSONHandler(out, opts)
	}
	return slog.New(h)
}

// ParseLevel 解析日誌等級；無法辨識時為 info。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard 回傳不輸出任何內容的 logger，供測試使用。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	return a
}
