// internal/provision/manifest.go
//
// 讀取 YAML 佈建清單並建立 bank.Machine。
// 未指定清單路徑時使用內嵌的示範清單（現金 100000，帳戶 1234 與 5678）。
package provision

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"atm/internal/bank"
)

//go:embed demo.yaml
var demoManifest []byte

// ErrUnsupportedVersion 代表清單版本不受支援。
var ErrUnsupportedVersion = errors.New("unsupported manifest version")

// Load 讀取指定路徑的清單；path 為空時回傳內嵌示範清單。
func Load(path string) (Manifest, error) {
	if path == "" {
		return Demo()
	}
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Demo 回傳內嵌的示範清單。
func Demo() (Manifest, error) {
	return Decode(bytes.NewReader(demoManifest))
}

// Decode 解析 YAML 清單；未知欄位視為錯誤。
func Decode(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode: %w", err)
	}
	if m.Meta.Version != CurrentVersion {
		return Manifest{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, m.Meta.Version)
	}
	return m, nil
}

// Build 依清單建立機台並登錄所有帳戶；verifier 套用於每個帳戶，可為 nil。
// 任一金額或帳戶錯誤即回傳，錯誤訊息標示出問題的帳戶。
func Build(m Manifest, verifier bank.Verifier) (*bank.Machine, error) {
	reserve, err := bank.ParseAmount(m.Machine.CashReserve)
	if err != nil {
		return nil, fmt.Errorf("machine cash_reserve %q: %w", m.Machine.CashReserve, err)
	}
	machine, err := bank.NewMachine(reserve)
	if err != nil {
		return nil, err
	}
	for i, acct := range m.Accounts {
		bal, err := bank.ParseAmount(acct.Balance)
		if err != nil {
			return nil, fmt.Errorf("accounts[%d] (%s) balance %q: %w", i, acct.ID, acct.Balance, err)
		}
		a, err := bank.NewAccount(acct.ID, acct.Credential, bal, bank.WithVerifier(verifier))
		if err != nil {
			return nil, fmt.Errorf("accounts[%d]: %w", i, err)
		}
		if err := machine.Register(a); err != nil {
			return nil, fmt.Errorf("accounts[%d] (%s): %w", i, acct.ID, err)
		}
	}
	return machine, nil
}
