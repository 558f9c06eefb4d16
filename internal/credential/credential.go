// Package credential 提供帳戶憑證的驗證方式。
//
// Plain 以常數時間比對明文；Argon2 比對 Argon2id 編碼雜湊：
//
//	$argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>
//
// 兩者皆滿足 bank.Verifier，可於佈建時依設定切換。
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Scheme names accepted by ForScheme.
const (
	SchemePlain  = "plain"
	SchemeArgon2 = "argon2"
)

// ErrUnknownScheme 代表設定中的驗證方式不存在。
var ErrUnknownScheme = errors.New("unknown credential scheme")

// Verifier 與 bank.Verifier 方法集相同。
type Verifier interface {
	Verify(stored, candidate string) bool
}

// ForScheme 依名稱回傳驗證方式。
func ForScheme(name string) (Verifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SchemePlain:
		return Plain{}, nil
	case SchemeArgon2:
		return Argon2{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// Plain 比對明文憑證。
type Plain struct{}

func (Plain) Verify(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Params 為 Argon2id 參數。
type Params struct {
	Memory      uint32 // KB
	Time        uint32
	Parallelism uint8
	SaltLen     int
	KeyLen      uint32
}

// DefaultParams 為 16 MB、2 次迭代、平行度 2。
var DefaultParams = Params{
	Memory:      16384,
	Time:        2,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

// Hash 以隨機鹽值計算 Argon2id 雜湊並回傳編碼字串。
func Hash(secret string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Argon2 比對 Argon2id 編碼雜湊；參數取自編碼字串本身。
// 格式錯誤一律視為不相符。
type Argon2 struct{}

func (Argon2) Verify(stored, candidate string) bool {
	p, salt, want, ok := decode(stored)
	if !ok {
		return false
	}
	got := argon2.IDKey([]byte(candidate), salt, p.Time, p.Memory, p.Parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

func decode(encoded string) (p Params, salt, key []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, false
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, false
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}
	return p, salt, key, true
}
