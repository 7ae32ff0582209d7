package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Session  SessionConfig  `env:",prefix=SESSION_"`
	Deposit  DepositConfig  `env:",prefix=DEPOSIT_"`
	Mining   MiningConfig   `env:",prefix=MINING_"`
	Live     LiveConfig     `env:",prefix=LIVE_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string        `env:"PORT,default=8080"`
	Host         string        `env:"HOST,default=0.0.0.0"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=mining_service"`
	Password string `env:"PASSWORD,default=mining_service_password"`
	DBName   string `env:"DB,default=mining_service_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`

	MigrationsDir string `env:"MIGRATIONS_DIR,default=migrations"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret             string        `env:"SECRET,required"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY,default=168h"`
}

type SessionConfig struct {
	// LoginDelay models the fixed latency of the simulated sign-in call
	LoginDelay time.Duration `env:"LOGIN_DELAY,default=1500ms"`

	// ClearDepositOnLogout makes logout also erase the deposit record.
	// The product keeps deposits across logouts, so this defaults off.
	ClearDepositOnLogout bool `env:"CLEAR_DEPOSIT_ON_LOGOUT,default=false"`
}

type DepositConfig struct {
	// LicenseKey is the fixed mining-license secret the license gate
	// compares against
	LicenseKey string `env:"LICENSE_KEY,default=XbfYwwQ57Y"`

	// WalletAddress is the receiving address shown on the deposit page
	WalletAddress string `env:"WALLET_ADDRESS,default=bc1qcm6wmwk47q35axp75gvkwsnhrsfvwks3yf6sqd"`

	// ExchangePartnerURL is the external buy-bitcoin provider link
	ExchangePartnerURL string `env:"EXCHANGE_PARTNER_URL,default=https://paybis.com/?refId=23046"`

	// ConfirmDelay models the on-chain confirmation latency
	ConfirmDelay time.Duration `env:"CONFIRM_DELAY,default=3s"`
}

type MiningConfig struct {
	// TickInterval is the cadence of totalMined accrual while a dashboard
	// is being watched
	TickInterval time.Duration `env:"TICK_INTERVAL,default=5s"`

	// IdleTimeout stops a profile's ticker when no snapshot has been read
	// for this long
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT,default=2m"`
}

type LiveConfig struct {
	// TickInterval is the cadence of the decorative live feed
	TickInterval time.Duration `env:"TICK_INTERVAL,default=3s"`

	StartBalanceUsd   float64 `env:"START_BALANCE_USD,default=18"`
	CeilingBalanceUsd float64 `env:"CEILING_BALANCE_USD,default=458"`
	StartBalanceBtc   float64 `env:"START_BALANCE_BTC,default=0.00025"`
	CeilingBalanceBtc float64 `env:"CEILING_BALANCE_BTC,default=0.0027"`
	BaseHashrateThs   float64 `env:"BASE_HASHRATE_THS,default=135"`
}

type SecurityConfig struct {
	BCryptCost        int           `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if config.Deposit.LicenseKey == "" {
		return nil, fmt.Errorf("DEPOSIT_LICENSE_KEY must not be empty")
	}

	if config.Live.CeilingBalanceUsd < config.Live.StartBalanceUsd {
		return nil, fmt.Errorf("LIVE_CEILING_BALANCE_USD must be at least the start balance")
	}

	return &config, nil
}
