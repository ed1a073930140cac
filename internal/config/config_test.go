package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SENDGRID_API_KEY", "key")

	_, err := LoadConfig("")
	if !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}
}

func TestLoadConfigRequiresMailKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/presale")
	t.Setenv("SENDGRID_API_KEY", "")

	_, err := LoadConfig("")
	if !errors.Is(err, ErrMissingMailKey) {
		t.Fatalf("expected ErrMissingMailKey, got %v", err)
	}
}

func TestLoadConfigDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/presale")
	t.Setenv("SENDGRID_API_KEY", "key")
	t.Setenv("MAIL_FROM", "presale@soarchain.com")
	t.Setenv("NOTIFY_EMAIL", "")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("port: got %q", cfg.Port)
	}
	if !cfg.RequireTransactionID {
		t.Fatalf("transaction id should be required by default")
	}
	if cfg.NotifyEmail != "presale@soarchain.com" {
		t.Fatalf("notify email should fall back to MAIL_FROM, got %q", cfg.NotifyEmail)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigReadsJSONFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SENDGRID_API_KEY", "key")
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"database_url":"postgres://file/presale","port":"8080","require_transaction_id":false}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://file/presale" || cfg.Port != "8080" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RequireTransactionID {
		t.Fatalf("file should have disabled transaction id requirement")
	}
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("DESTINATION_ADDRESS", "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe")
	t.Setenv("DESTINATION_TAG", "42")
	t.Setenv("LEDGER_TIMEOUT", "5s")
	t.Setenv("WALLET_STORE", "/tmp/wallet.json")

	cfg, err := LoadClientConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DestinationTag == nil || *cfg.DestinationTag != 42 {
		t.Fatalf("destination tag: %v", cfg.DestinationTag)
	}
	if cfg.LedgerTimeout != 5*time.Second {
		t.Fatalf("ledger timeout: %v", cfg.LedgerTimeout)
	}
	if cfg.LedgerURL != "wss://s1.ripple.com" {
		t.Fatalf("ledger url default: %q", cfg.LedgerURL)
	}
}

func TestLoadClientConfigWithoutDestination(t *testing.T) {
	t.Setenv("DESTINATION_ADDRESS", "")
	t.Setenv("LEDGER_NODE_SIGN", "")

	cfg, err := LoadClientConfig("")
	if err != nil {
		t.Fatalf("commands that send nothing must load without a destination: %v", err)
	}
	if err := cfg.RequireDestination(); !errors.Is(err, ErrMissingDestination) {
		t.Fatalf("expected ErrMissingDestination, got %v", err)
	}
	if cfg.NodeSign {
		t.Fatalf("node signing must be opt-in")
	}

	t.Setenv("DESTINATION_ADDRESS", "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe")
	t.Setenv("LEDGER_NODE_SIGN", "true")
	cfg, err = LoadClientConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.RequireDestination(); err != nil {
		t.Fatalf("destination is set: %v", err)
	}
	if !cfg.NodeSign {
		t.Fatalf("LEDGER_NODE_SIGN=true not applied")
	}
}
