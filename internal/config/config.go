// Package config 載入 ATM 的執行設定。
//
// 來源優先順序（後者覆寫前者）：預設值 → YAML 設定檔 → ATM_ 環境變數。
// 若有 .env 檔，會先載入成環境變數（不覆寫既有的環境變數）。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"atm/internal/credential"
)

// EnvPrefix 為環境變數前綴。
const EnvPrefix = "ATM_"

// Config 為完整執行設定。
type Config struct {
	Log         LogConfig         `koanf:"log"`
	Manifest    string            `koanf:"manifest"` // 佈建清單路徑；空字串使用內嵌示範清單
	Credentials CredentialsConfig `koanf:"credentials"`
	Session     SessionConfig     `koanf:"session"`
}

// LogConfig 設定結構化日誌。
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

// CredentialsConfig 設定憑證驗證方式。
type CredentialsConfig struct {
	Scheme string `koanf:"scheme"` // plain, argon2
}

// SessionConfig 設定終端機工作階段。
type SessionConfig struct {
	MaxLoginAttempts int           `koanf:"max_login_attempts"`
	LoginInterval    time.Duration `koanf:"login_interval"` // 0 表示不限速
}

// Default 回傳預設設定。
func Default() Config {
	return Config{
		Log:         LogConfig{Level: "info", Format: "json"},
		Credentials: CredentialsConfig{Scheme: "plain"},
		Session:     SessionConfig{MaxLoginAttempts: 3, LoginInterval: time.Second},
	}
}

// Validate 檢查設定值。
func (c Config) Validate() error {
	if c.Session.MaxLoginAttempts < 1 {
		return fmt.Errorf("session.max_login_attempts must be >= 1, got %d", c.Session.MaxLoginAttempts)
	}
	if c.Session.LoginInterval < 0 {
		return fmt.Errorf("session.login_interval must be >= 0, got %s", c.Session.LoginInterval)
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	if _, err := credential.ForScheme(c.Credentials.Scheme); err != nil {
		return fmt.Errorf("credentials.scheme: %w", err)
	}
	return nil
}

// Loader 自多個來源載入設定。
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	dotEnv    string
}

// Option 調整 Loader。
type Option func(*Loader)

// WithConfigFile 指定 YAML 設定檔路徑。
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// WithDotEnv 指定 .env 檔路徑；檔案不存在時略過。
func WithDotEnv(path string) Option {
	return func(l *Loader) { l.dotEnv = path }
}

// WithEnvPrefix 指定環境變數前綴。
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// NewLoader 建立設定載入器。
func NewLoader(opts ...Option) *Loader {
	l := &Loader{k: koanf.New("."), envPrefix: EnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load 依序載入 .env、設定檔與環境變數，覆寫於預設值之上並驗證。
func (l *Loader) Load() (Config, error) {
	if l.dotEnv != "" {
		if err := godotenv.Load(l.dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", l.dotEnv, err)
		}
	}
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey 將 ATM_SESSION_MAX_LOGIN_ATTEMPTS 轉為 session.max_login_attempts。
// 只有第一個底線代表層級，其餘保留為鍵名的一部分。
func (l *Loader) envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
	return strings.Replace(s, "_", ".", 1)
}
