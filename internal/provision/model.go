// internal/provision/model.go
//
// 定義「佈建清單 (provisioning manifest)」的結構模型。
// 清單描述機台啟動時的現金存量與帳戶，只在啟動時讀取一次；
// 執行期間的變動不會寫回（無跨次執行的持久化）。
//
// 金額欄位以字串保存（例如 "5000" 或 "12.50"），
// 由 bank.ParseAmount 解析，避免 YAML 將數字轉成浮點數。
package provision

// CurrentVersion 為目前支援的清單格式版本。
const CurrentVersion = 1

// Meta 為清單的中繼資料。
type Meta struct {
	Version int    `yaml:"version"`        // 格式版本號，目前必須為 1
	Note    string `yaml:"note,omitempty"` // 備註欄，可選
}

// MachineSpec 描述機台本身。
type MachineSpec struct {
	CashReserve string `yaml:"cash_reserve"` // 初始現金存量
}

// AccountSpec 描述單一帳戶。
// Credential 依 credentials.scheme 設定可為明文或 Argon2id 編碼雜湊。
type AccountSpec struct {
	ID         string `yaml:"id"`
	Credential string `yaml:"credential"`
	Balance    string `yaml:"balance"`
}

// Manifest 為完整佈建清單。
type Manifest struct {
	Meta     Meta          `yaml:"meta"`
	Machine  MachineSpec   `yaml:"machine"`
	Accounts []AccountSpec `yaml:"accounts"`
}
