package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. FITCOACH_STRIPE_SECRET_KEY
const EnvPrefix = "FITCOACH"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Profiling ProfilingConfig
	Stripe    StripeConfig
	Checkout  CheckoutConfig
	Catalog   CatalogConfig
	SMTP      SMTPConfig
	Storage   StorageConfig
	Swagger   SwaggerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name      string
	Env       string
	Port      string
	PublicURL string // site origin used for default checkout redirects
}

// IsProduction returns true when running in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds admin token settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AdminConfig holds the single admin account used for the back office
type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool // Export zap logs over OTLP
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
}

// ProfilingConfig holds Pyroscope settings
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	SpanProfiles      bool // link profiles to trace spans
}

// StripeConfig holds payment provider credentials and defaults
type StripeConfig struct {
	SecretKey       string
	PublishableKey  string
	WebhookSecret   string
	DefaultCurrency string
	SuccessURL      string
	CancelURL       string
	// PriceIntervals classifies catalog prices without a provider round trip.
	PriceIntervals []PriceInterval
	// PriceLookupTTL is how long provider price lookups are cached.
	PriceLookupTTL time.Duration
	WebhookEvents  []string
}

// PriceInterval is one entry of the price id to interval table.
// A list is used instead of a map because viper lower-cases map keys.
type PriceInterval struct {
	PriceID  string `mapstructure:"price_id"`
	Interval string `mapstructure:"interval"`
}

// IntervalTable returns the price intervals keyed by price id
func (s StripeConfig) IntervalTable() map[string]string {
	out := make(map[string]string, len(s.PriceIntervals))
	for _, p := range s.PriceIntervals {
		out[p.PriceID] = p.Interval
	}
	return out
}

// IsTestMode returns true for sk_test keys
func (s StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(s.SecretKey, "sk_test_")
}

// CheckoutConfig holds checkout policy
type CheckoutConfig struct {
	MixedCartPolicy   string // filter or reject
	PaymentIntentMode string // elements or hosted
	IdempotencyTTL    time.Duration
}

// CatalogProduct is a product definition pushed to the provider by products sync
type CatalogProduct struct {
	LookupKey   string `mapstructure:"lookup_key"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	UnitAmount  int64  `mapstructure:"unit_amount"`
	Currency    string `mapstructure:"currency"`
	Interval    string `mapstructure:"interval"`
}

// CatalogConfig holds product listing settings
type CatalogConfig struct {
	CacheTTL time.Duration
	Products []CatalogProduct
}

// SMTPConfig holds outbound mail settings
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLSMode  string // starttls, tls, none
	Timeout  time.Duration
}

// StorageConfig holds S3-compatible object storage settings for receipts
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
	KeyPrefix         string
}

// SwaggerConfig controls access to the API documentation
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // require an admin bearer token
	AllowedIPs  []string // IPs or CIDRs, empty allows all
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with FITCOACH_ prefix (e.g., FITCOACH_STRIPE_SECRET_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("app.name"),
			Env:       v.GetString("app.env"),
			Port:      v.GetString("app.port"),
			PublicURL: v.GetString("app.public_url"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Admin: AdminConfig{
			Username:     v.GetString("admin.username"),
			PasswordHash: v.GetString("admin.password_hash"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Profiling: ProfilingConfig{
			Enabled:           v.GetBool("profiling.enabled"),
			ServerAddress:     v.GetString("profiling.server_address"),
			ApplicationName:   v.GetString("profiling.application_name"),
			BasicAuthUser:     v.GetString("profiling.basic_auth_user"),
			BasicAuthPassword: v.GetString("profiling.basic_auth_password"),
			SpanProfiles:      v.GetBool("profiling.span_profiles"),
		},
		Stripe: StripeConfig{
			SecretKey:       v.GetString("stripe.secret_key"),
			PublishableKey:  v.GetString("stripe.publishable_key"),
			WebhookSecret:   v.GetString("stripe.webhook_secret"),
			DefaultCurrency: v.GetString("stripe.default_currency"),
			SuccessURL:      v.GetString("stripe.success_url"),
			CancelURL:       v.GetString("stripe.cancel_url"),
			PriceLookupTTL:  v.GetDuration("stripe.price_lookup_ttl"),
			WebhookEvents:   v.GetStringSlice("stripe.webhook_events"),
		},
		Checkout: CheckoutConfig{
			MixedCartPolicy:   v.GetString("checkout.mixed_cart_policy"),
			PaymentIntentMode: v.GetString("checkout.payment_intent_mode"),
			IdempotencyTTL:    v.GetDuration("checkout.idempotency_ttl"),
		},
		Catalog: CatalogConfig{
			CacheTTL: v.GetDuration("catalog.cache_ttl"),
		},
		SMTP: SMTPConfig{
			Enabled:  v.GetBool("smtp.enabled"),
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
			FromName: v.GetString("smtp.from_name"),
			TLSMode:  v.GetString("smtp.tls_mode"),
			Timeout:  v.GetDuration("smtp.timeout"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			KeyPrefix:         v.GetString("storage.key_prefix"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
	}

	if err := v.UnmarshalKey("stripe.price_intervals", &cfg.Stripe.PriceIntervals); err != nil {
		return nil, fmt.Errorf("invalid stripe.price_intervals: %w", err)
	}
	if err := v.UnmarshalKey("catalog.products", &cfg.Catalog.Products); err != nil {
		return nil, fmt.Errorf("invalid catalog.products: %w", err)
	}

	applyDefaults(cfg)
	if !v.IsSet("swagger.enabled") {
		cfg.Swagger.Enabled = !cfg.App.IsProduction()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fitcoach-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.PublicURL == "" {
		cfg.App.PublicURL = "http://localhost:5173"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "fitcoach"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 12 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "fitcoach-backend"
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 30
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	// CORS origins have no wildcard fallback. An empty list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Profiling.ApplicationName == "" {
		cfg.Profiling.ApplicationName = cfg.App.Name
	}
	if cfg.Stripe.DefaultCurrency == "" {
		cfg.Stripe.DefaultCurrency = "usd"
	}
	cfg.Stripe.DefaultCurrency = strings.ToLower(cfg.Stripe.DefaultCurrency)
	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = strings.TrimRight(cfg.App.PublicURL, "/") + "/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = strings.TrimRight(cfg.App.PublicURL, "/") + "/cart"
	}
	if cfg.Stripe.PriceLookupTTL == 0 {
		cfg.Stripe.PriceLookupTTL = 10 * time.Minute
	}
	if len(cfg.Stripe.WebhookEvents) == 0 {
		cfg.Stripe.WebhookEvents = []string{
			"checkout.session.completed",
			"checkout.session.async_payment_succeeded",
			"checkout.session.async_payment_failed",
			"customer.subscription.created",
			"customer.subscription.updated",
			"customer.subscription.deleted",
			"invoice.paid",
			"invoice.payment_failed",
			"payment_intent.succeeded",
		}
	}
	if cfg.Checkout.MixedCartPolicy == "" {
		cfg.Checkout.MixedCartPolicy = "filter"
	}
	if cfg.Checkout.PaymentIntentMode == "" {
		cfg.Checkout.PaymentIntentMode = "elements"
	}
	if cfg.Checkout.IdempotencyTTL == 0 {
		cfg.Checkout.IdempotencyTTL = 72 * time.Hour
	}
	if cfg.Catalog.CacheTTL == 0 {
		cfg.Catalog.CacheTTL = 5 * time.Minute
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.TLSMode == "" {
		cfg.SMTP.TLSMode = "starttls"
	}
	if cfg.SMTP.Timeout == 0 {
		cfg.SMTP.Timeout = 10 * time.Second
	}
	if cfg.SMTP.FromName == "" {
		cfg.SMTP.FromName = "FitCoach"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "receipts/"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Checkout.MixedCartPolicy {
	case "filter", "reject":
	default:
		return fmt.Errorf("checkout.mixed_cart_policy must be filter or reject, got %q", c.Checkout.MixedCartPolicy)
	}
	switch c.Checkout.PaymentIntentMode {
	case "elements", "hosted":
	default:
		return fmt.Errorf("checkout.payment_intent_mode must be elements or hosted, got %q", c.Checkout.PaymentIntentMode)
	}
	for _, p := range c.Stripe.PriceIntervals {
		if p.PriceID == "" {
			return fmt.Errorf("stripe.price_intervals entries require price_id")
		}
		if p.Interval != "month" && p.Interval != "year" {
			return fmt.Errorf("stripe.price_intervals[%s] must be month or year, got %q", p.PriceID, p.Interval)
		}
	}
	switch c.SMTP.TLSMode {
	case "starttls", "tls", "none":
	default:
		return fmt.Errorf("smtp.tls_mode must be starttls, tls or none, got %q", c.SMTP.TLSMode)
	}

	if c.App.IsProduction() {
		if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Stripe.SecretKey != "" && c.Stripe.IsTestMode() {
			return fmt.Errorf("stripe.secret_key must be a live key in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// RequireServerSecrets reports every secret the HTTP server cannot start
// without as a single ConfigurationError.
func (c *Config) RequireServerSecrets() error {
	var missing []string
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "stripe.secret_key")
	}
	if c.Stripe.WebhookSecret == "" {
		missing = append(missing, "stripe.webhook_secret")
	}
	if c.App.IsProduction() {
		if c.JWT.Secret == "" {
			missing = append(missing, "jwt.secret")
		}
		if c.Admin.PasswordHash == "" {
			missing = append(missing, "admin.password_hash")
		}
		if c.Database.Password == "" {
			missing = append(missing, "database.password")
		}
	}
	if c.SMTP.Enabled && c.SMTP.Host == "" {
		missing = append(missing, "smtp.host")
	}
	if c.SMTP.Enabled && c.SMTP.From == "" {
		missing = append(missing, "smtp.from")
	}
	if len(missing) > 0 {
		return shared.NewConfigurationError(missing...)
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
