// cmd/atm/main.go

// atm 在終端機上模擬單一 ATM 工作階段：
// 依佈建清單建立機台與帳戶、驗證使用者後提供查詢、存款、轉帳與提款。
// 機台狀態只存在於記憶體中，程式結束即捨棄。
package main

import (
	"fmt"
	"os"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
