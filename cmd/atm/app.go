package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v2"

	"atm/internal/bank"
	"atm/internal/config"
	"atm/internal/credential"
	"atm/internal/logger"
	"atm/internal/provision"
	"atm/internal/terminal"
)

// Build information, set via ldflags.
var Version = "dev"

// newApp 組裝 CLI；輸入輸出可替換以便測試。
func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "atm",
		Usage:     "run an in-memory ATM session",
		Version:   Version,
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags:     globalFlags(),
		Action:    runSession,
		Commands: []*cli.Command{
			{
				Name:   "session",
				Usage:  "authenticate and run the ATM menu (default)",
				Action: runSession,
			},
			{
				Name:   "inspect",
				Usage:  "print the provisioned cash reserve and account balances",
				Action: runInspect,
			},
			{
				Name:      "hash-credential",
				Usage:     "print an argon2id hash for use with credentials.scheme=argon2",
				ArgsUsage: "[secret]",
				Action:    runHashCredential,
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"ATM_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "dotenv file loaded before ATM_ variables are read",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:    "manifest",
			Aliases: []string{"m"},
			Usage:   "provisioning manifest (default: built-in demo)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "json, text",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable coloured output",
		},
	}
}

// loadConfig 載入設定並套用命令列旗標（旗標優先）。
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.NewLoader(
		config.WithConfigFile(c.String("config")),
		config.WithDotEnv(c.String("env-file")),
	).Load()
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("manifest") {
		cfg.Manifest = c.String("manifest")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	return cfg, cfg.Validate()
}

// provisionMachine 依清單與驗證方式建立機台。
func provisionMachine(cfg config.Config) (*bank.Machine, error) {
	m, err := provision.Load(cfg.Manifest)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	v, err := credential.ForScheme(cfg.Credentials.Scheme)
	if err != nil {
		return nil, err
	}
	machine, err := provision.Build(m, v)
	if err != nil {
		return nil, fmt.Errorf("provision machine: %w", err)
	}
	return machine, nil
}

func newLogger(c *cli.Context, cfg config.Config) *slog.Logger {
	return logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: c.App.ErrWriter})
}

func runSession(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)
	machine, err := provisionMachine(cfg)
	if err != nil {
		return err
	}
	log.Info("machine provisioned",
		"manifest", cfg.Manifest,
		"credential_scheme", cfg.Credentials.Scheme,
		"cash_reserve", machine.CashReserve().String())

	// 收到 SIGINT/SIGTERM 時結束工作階段
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := terminal.New(machine, c.App.Reader, c.App.Writer, log, terminal.Config{
		MaxLoginAttempts: cfg.Session.MaxLoginAttempts,
		LoginInterval:    cfg.Session.LoginInterval,
		Plain:            c.Bool("no-color"),
	})
	if err := s.Run(ctx); err != nil {
		if errors.Is(err, terminal.ErrAuthentication) {
			log.Warn("session rejected", "session_id", s.ID)
		}
		return err
	}
	return nil
}

func runInspect(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	machine, err := provisionMachine(cfg)
	if err != nil {
		return err
	}

	sum := machine.Summary()
	rows := make([][]string, 0, len(sum.Accounts))
	for _, a := range sum.Accounts {
		rows = append(rows, []string{a.ID, bank.FormatAmount(a.Balance)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ACCOUNT", "BALANCE").
		Rows(rows...)

	fmt.Fprintf(c.App.Writer, "Cash reserve: %s\n", bank.FormatAmount(sum.Reserve))
	fmt.Fprintln(c.App.Writer, t.Render())
	return nil
}

func runHashCredential(c *cli.Context) error {
	secret := c.Args().First()
	if secret == "" {
		sc := bufio.NewScanner(c.App.Reader)
		if sc.Scan() {
			secret = strings.TrimSpace(sc.Text())
		}
	}
	if secret == "" {
		return errors.New("hash-credential: secret is required")
	}
	h, err := credential.Hash(secret, credential.DefaultParams)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, h)
	return nil
}
