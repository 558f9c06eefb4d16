// internal/terminal/menu.go
//
// 本檔負責選單與操作的對應。
// 與 session.go 分離：session.go 定義「如何執行操作」，
// menu.go 定義「哪個選項導向哪個操作」。
package terminal

// route 為一個選單項目。
type route struct {
	key   string
	label string
	run   func() bool // 回傳 true 表示結束工作階段
}

// routes 依選單順序列出所有操作。
func (s *Session) routes() []route {
	return []route{
		{key: "1", label: "View balance", run: s.balance},
		{key: "2", label: "Deposit to own account", run: s.depositOwn},
		{key: "3", label: "Deposit to another account", run: s.depositOther},
		{key: "4", label: "Transfer to another account", run: s.transfer},
		{key: "5", label: "Withdraw cash", run: s.withdraw},
		{key: "6", label: "Exit", run: s.exit},
	}
}

func lookupRoute(routes []route, key string) (route, bool) {
	for _, r := range routes {
		if r.key == key {
			return r, true
		}
	}
	return route{}, false
}

func (s *Session) printMenu(routes []route) {
	s.printf("\n%s\n", s.style.title.Render("Select an option:"))
	for _, r := range routes {
		s.printf("%s. %s\n", r.key, r.label)
	}
}
