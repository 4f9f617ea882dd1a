package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "checkout-service/pkg/aws"

	"github.com/joho/godotenv"
)

const (
	secretStripeKey       = "checkout/STRIPE_SECRET_API_KEY"
	secretStripePublicKey = "checkout/STRIPE_PUBLISHED_API_KEY"
)

type Config struct {
	Port                string
	Env                 string
	StripePublishedKey  string
	StripeSecretKey     string
	StripeCountry       string
	DefaultCurrency     string
	SupportedCurrencies []string
	RedisURL            string
	ReceiptCacheTTL     time.Duration
	CheckoutSNSTopicARN string
	UseSecrets          bool
	CloudWatchEnabled   bool
	CloudWatchLogGroup  string
	CloudWatchNamespace string
	AllowedOrigins      []string
	RateLimitPerMinute  int
}

// ClientConfig is the public payment configuration served to browsers.
type ClientConfig struct {
	PublishableKey      string   `json:"pk"`
	Country             string   `json:"country"`
	DefaultCurrency     string   `json:"defaultCurrency"`
	SupportedCurrencies []string `json:"supportedCurrencies"`
}

// LoadConfig reads an optional .env file and the process environment.
// When AWS_USE_SECRETS=true the Stripe keys come from Secrets Manager.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if cfg.UseSecrets {
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplySecrets(context.Background(), aws_pkg.NewSecretsClient(awsCfg)); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("RECEIPT_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECEIPT_CACHE_TTL: %w", err)
	}
	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil || rateLimit <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q", os.Getenv("RATE_LIMIT_PER_MINUTE"))
	}

	defaultCurrency := normalizeCurrency(getEnv("DEFAULT_CURRENCY", "usd"))
	supported := splitList(getEnv("SUPPORTED_CURRENCIES", defaultCurrency), normalizeCurrency)
	if !contains(supported, defaultCurrency) {
		supported = append([]string{defaultCurrency}, supported...)
	}

	return &Config{
		Port:                getEnv("PORT", "3000"),
		Env:                 getEnv("APP_ENV", "development"),
		StripePublishedKey:  os.Getenv("STRIPE_PUBLISHED_API_KEY"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_API_KEY"),
		StripeCountry:       strings.ToUpper(getEnv("STRIPE_ACCOUNT_COUNTRY", "US")),
		DefaultCurrency:     defaultCurrency,
		SupportedCurrencies: supported,
		RedisURL:            os.Getenv("REDIS_URL"),
		ReceiptCacheTTL:     ttl,
		CheckoutSNSTopicARN: os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),
		UseSecrets:          os.Getenv("AWS_USE_SECRETS") == "true",
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/checkout/services"),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Checkout"),
		AllowedOrigins:      splitList(os.Getenv("ALLOWED_ORIGINS"), func(s string) string { return strings.TrimSuffix(s, "/") }),
		RateLimitPerMinute:  rateLimit,
	}, nil
}

// ApplySecrets overrides the Stripe keys with values found in the secret store.
func (c *Config) ApplySecrets(ctx context.Context, secrets aws_pkg.SecretGetter) error {
	sk, err := secrets.GetSecret(ctx, secretStripeKey)
	if err != nil {
		return err
	}
	if sk != "" {
		c.StripeSecretKey = sk
	}
	if pk, err := secrets.GetSecret(ctx, secretStripePublicKey); err == nil && pk != "" {
		c.StripePublishedKey = pk
	}
	return nil
}

// Validate reports every missing required key at once.
func (c *Config) Validate() error {
	var missing []string
	if c.StripePublishedKey == "" {
		missing = append(missing, "STRIPE_PUBLISHED_API_KEY")
	}
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) ClientConfig() ClientConfig {
	return ClientConfig{
		PublishableKey:      c.StripePublishedKey,
		Country:             c.StripeCountry,
		DefaultCurrency:     c.DefaultCurrency,
		SupportedCurrencies: append([]string(nil), c.SupportedCurrencies...),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func normalizeCurrency(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func splitList(raw string, norm func(string) string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := norm(strings.TrimSpace(part)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
