package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// External ledger (JSON-RPC endpoint of an Ethereum-style node)
	EthRPCURL           string
	EthConfirmTimeout   time.Duration
	EthConfirmPollEvery time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	// AdminUserID identifies the account that funds loans and receives
	// repayments and forced collections.
	AdminUserID uint64

	// LoanTermUnit is the length of one loan period. The source platform ran
	// "months" as minutes in development; keep it configurable.
	LoanTermUnit  time.Duration
	SweepInterval time.Duration
	SweepCollect  bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "smartloans"),
		MySQLUser: getenv("MYSQL_USER", "smartloans"),
		MySQLPass: getenv("MYSQL_PASS", "smartloans"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		EthRPCURL:           getenv("ETH_RPC_URL", "http://ganache:8545"),
		EthConfirmTimeout:   time.Duration(getenvInt("ETH_CONFIRM_TIMEOUT_SECONDS", 60)) * time.Second,
		EthConfirmPollEvery: time.Duration(getenvInt("ETH_CONFIRM_POLL_MS", 500)) * time.Millisecond,

		JWTSecret: getenv("JWT_SECRET", ""),
		TokenTTL:  time.Duration(getenvInt("TOKEN_TTL_MINUTES", 20)) * time.Minute,

		AdminUserID: uint64(getenvInt("ADMIN_USER_ID", 1)),

		LoanTermUnit:  time.Duration(getenvInt("LOAN_TERM_UNIT_SECONDS", 2592000)) * time.Second,
		SweepInterval: time.Duration(getenvInt("SWEEP_INTERVAL_SECONDS", 86400)) * time.Second,
		SweepCollect:  getenv("SWEEP_COLLECT", "false") == "true",
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.EthRPCURL == "" {
		return errors.New("missing ETH_RPC_URL")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.AdminUserID == 0 {
		return errors.New("ADMIN_USER_ID must be set")
	}
	if c.LoanTermUnit <= 0 || c.SweepInterval <= 0 {
		return errors.New("LOAN_TERM_UNIT_SECONDS and SWEEP_INTERVAL_SECONDS must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
