package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Database     Database     `envPrefix:"DB_"`
	Auth         Auth         `envPrefix:"AUTH_"`
	RateLimit    RateLimit    `envPrefix:"RATE_LIMIT_"`
	Subscription Subscription `envPrefix:"SUBSCRIPTION_"`
	BrainTree    Braintree    `envPrefix:"BRAINTREE_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"8080"`
	CORSOrigins     []string      `env:"HTTP_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func (h HTTPServer) Address() string {
	return h.Host + ":" + h.Port
}

// Database selects the gorm dialector by Driver: postgres, mysql or sqlite.
type Database struct {
	Driver          string        `env:"DRIVER" envDefault:"postgres"`
	URL             string        `env:"URL"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"warn"`
}

type Auth struct {
	JWTSecret  string        `env:"JWT_SECRET" envDefault:"change-me"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

// RateLimit holds requests per Window for the whole API and for /api/auth.
type RateLimit struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Window   time.Duration `env:"WINDOW" envDefault:"15m"`
	API      int           `env:"API" envDefault:"100"`
	Auth     int           `env:"AUTH" envDefault:"5"`
	ExpireIn time.Duration `env:"EXPIRE_IN" envDefault:"15m"`
}

type Subscription struct {
	TrialDays int `env:"TRIAL_DAYS" envDefault:"30"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

func (b Braintree) Configured() bool {
	return b.MerchantID != "" && b.PublicKey != "" && b.PrivateKey != ""
}
