package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the backend configuration. Values come from an optional JSON file,
// then a .env file, then the process environment (last one wins).
type Config struct {
	Port        string `json:"port" env:"PORT"`
	DatabaseURL string `json:"database_url" env:"DATABASE_URL"`

	DBMaxOpenConns int `json:"db_max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int `json:"db_max_idle_conns" env:"DB_MAX_IDLE_CONNS"`

	SendGridAPIKey  string `json:"-" env:"SENDGRID_API_KEY"`
	SendGridBaseURL string `json:"sendgrid_base_url" env:"SENDGRID_BASE_URL"`
	MailFrom        string `json:"mail_from" env:"MAIL_FROM"`
	MailFromName    string `json:"mail_from_name" env:"MAIL_FROM_NAME"`
	NotifyEmail     string `json:"notify_email" env:"NOTIFY_EMAIL"`

	RequireTransactionID bool     `json:"require_transaction_id" env:"REQUIRE_TRANSACTION_ID"`
	CORSOrigins          []string `json:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// ClientConfig drives presalectl, the contributor-side client.
type ClientConfig struct {
	LedgerURL          string        `json:"ledger_url" env:"LEDGER_URL"`
	LedgerTimeout      time.Duration `json:"-" env:"LEDGER_TIMEOUT"`
	DestinationAddress string        `json:"destination_address" env:"DESTINATION_ADDRESS"`
	DestinationTagRaw  string        `json:"destination_tag" env:"DESTINATION_TAG"`
	DestinationTag     *uint32       `json:"-"`
	BackendURL         string        `json:"backend_url" env:"BACKEND_URL"`
	WalletStore        string        `json:"wallet_store" env:"WALLET_STORE"`
	WalletSeed         string        `json:"-" env:"WALLET_SEED"`
	// NodeSign sends WALLET_SEED to the ledger node's sign command. Only for
	// standalone or test nodes you run yourself.
	NodeSign bool    `json:"ledger_node_sign" env:"LEDGER_NODE_SIGN"`
	GoalXRP  float64 `json:"goal_xrp" env:"GOAL_XRP"`

	RecordBeforeConfirmation bool `json:"record_before_confirmation" env:"RECORD_BEFORE_CONFIRMATION"`
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrMissingMailKey     = errors.New("SENDGRID_API_KEY is not set")
	ErrMissingDestination = errors.New("DESTINATION_ADDRESS is not set")
)

func LoadConfig(filePath string) (*Config, error) {
	config := Config{
		Port:                 "3000",
		DBMaxOpenConns:       25,
		DBMaxIdleConns:       25,
		MailFromName:         "Soarchain Presale",
		RequireTransactionID: true,
	}
	if err := load(filePath, &config); err != nil {
		return nil, err
	}

	if config.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if config.SendGridAPIKey == "" {
		return nil, ErrMissingMailKey
	}
	if config.NotifyEmail == "" {
		config.NotifyEmail = config.MailFrom
	}
	return &config, nil
}

func LoadClientConfig(filePath string) (*ClientConfig, error) {
	config := ClientConfig{
		LedgerURL:     "wss://s1.ripple.com",
		LedgerTimeout: 30 * time.Second,
		BackendURL:    "http://localhost:3000",
	}
	if err := load(filePath, &config); err != nil {
		return nil, err
	}

	if config.DestinationTagRaw != "" {
		tag, err := strconv.ParseUint(config.DestinationTagRaw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid DESTINATION_TAG %q: %w", config.DestinationTagRaw, err)
		}
		v := uint32(tag)
		config.DestinationTag = &v
	}
	if config.WalletStore == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		config.WalletStore = filepath.Join(home, ".soarchain", "wallet.json")
	}
	return &config, nil
}

// RequireDestination is checked only by commands that send payments.
func (c *ClientConfig) RequireDestination() error {
	if c.DestinationAddress == "" {
		return ErrMissingDestination
	}
	return nil
}

func load(filePath string, into any) error {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, into); err != nil {
				return fmt.Errorf("parse %s: %w", filePath, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return err
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := env.Parse(into); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
