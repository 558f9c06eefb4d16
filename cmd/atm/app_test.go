package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atm/internal/credential"
	"atm/internal/terminal"
)

// run 執行 CLI 並回傳標準輸出。
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(strings.NewReader(stdin), &out, io.Discard)
	err := app.Run(append([]string{"atm", "--env-file", filepath.Join(t.TempDir(), ".env"), "--no-color"}, args...))
	return out.String(), err
}

func TestInspectDemo(t *testing.T) {
	out, err := run(t, "", "inspect")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Cash reserve: $100000.00", "1234", "$5000.00", "5678", "$3000.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectManifestFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	body := "meta:\n  version: 1\nmachine:\n  cash_reserve: \"42\"\naccounts: []\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "", "--manifest", path, "inspect")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cash reserve: $42.00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSessionDefaultAction(t *testing.T) {
	out, err := run(t, "1234\ncontrasena1\n5\n3000\n1\n6\n")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Withdrawal successful. Current balance: $2000.00", "Current balance: $2000.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSessionRejected(t *testing.T) {
	t.Setenv("ATM_SESSION_MAX_LOGIN_ATTEMPTS", "1")
	_, err := run(t, "1234\nnope\n", "session")
	if !errors.Is(err, terminal.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication, got %v", err)
	}
}

func TestHashCredential(t *testing.T) {
	out, err := run(t, "", "hash-credential", "contrasena1")
	if err != nil {
		t.Fatal(err)
	}
	h := strings.TrimSpace(out)
	if !(credential.Argon2{}).Verify(h, "contrasena1") {
		t.Fatalf("hash does not verify: %q", h)
	}

	// 未提供參數時自標準輸入讀取
	out, err = run(t, "from-stdin\n", "hash-credential")
	if err != nil {
		t.Fatal(err)
	}
	if !(credential.Argon2{}).Verify(strings.TrimSpace(out), "from-stdin") {
		t.Fatalf("stdin hash does not verify: %q", out)
	}

	if _, err := run(t, "", "hash-credential"); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	if _, err := run(t, "", "--log-level", "verbose", "inspect"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
