package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
)

// SecretName holds a JSON object whose keys override the matching env vars.
const SecretName = "storefront/STOREFRONT_CREDENTIALS"

// Config holds all configuration for the storefront service.
type Config struct {
	Port string
	Env  string

	StoreDomain       string
	StorefrontVersion string
	StorefrontToken   string
	// StorefrontEndpoint overrides the URL derived from the domain and version.
	StorefrontEndpoint string
	// PublicURL is where the cart reaches its own upsell endpoint.
	PublicURL      string
	RequestTimeout time.Duration
	RenderWait     time.Duration

	FreeShippingGoal decimal.Decimal
	CurrencyLabel    string

	RedisURL       string
	UpsellCacheTTL time.Duration

	CartEventsTopicARN  string
	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string

	AllowedOrigins     []string
	RateLimitPerMinute int

	// TrustedProxies are the proxy CIDRs whose X-Forwarded-For is honoured. Empty keeps gin's default.
	TrustedProxies []string
}

// UpsellCacheEnabled reports whether both a Redis URL and a positive TTL are set.
func (c *Config) UpsellCacheEnabled() bool {
	return c.RedisURL != "" && c.UpsellCacheTTL > 0
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SecretGetter reads a named secret.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// LoadConfig reads .env (if present) and the environment, with an optional Secrets
// Manager override when AWS_USE_SECRETS=true.
func LoadConfig(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		if err := ApplySecrets(ctx, cfg, awspkg.NewSecretsClient(awsCfg)); err != nil {
			log.Printf("secrets override skipped: %v", err)
		}
	}

	return cfg, cfg.Validate()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	goal, err := decimal.NewFromString(getEnv("FREE_SHIPPING_GOAL", "200"))
	if err != nil {
		return nil, fmt.Errorf("FREE_SHIPPING_GOAL: %w", err)
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		StoreDomain:         os.Getenv("SHOPIFY_STORE_DOMAIN"),
		StorefrontVersion:   getEnv("SHOPIFY_STOREFRONT_API_VERSION", "2024-10"),
		StorefrontToken:     os.Getenv("SHOPIFY_STOREFRONT_TOKEN"),
		StorefrontEndpoint:  os.Getenv("STOREFRONT_ENDPOINT"),
		PublicURL:           os.Getenv("STOREFRONT_PUBLIC_URL"),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 10*time.Second),
		RenderWait:          getDuration("UPSELL_RENDER_WAIT", 2*time.Second),
		FreeShippingGoal:    goal,
		CurrencyLabel:       getEnv("CURRENCY_LABEL", "KSh"),
		RedisURL:            os.Getenv("REDIS_URL"),
		UpsellCacheTTL:      getDuration("UPSELL_CACHE_TTL", 0),
		CartEventsTopicARN:  os.Getenv("CART_EVENTS_TOPIC_ARN"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Storefront"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/storefront/services"),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute:  getInt("RATE_LIMIT_PER_MINUTE", 100),
		TrustedProxies:      splitList(os.Getenv("TRUSTED_PROXIES")),
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost:" + cfg.Port
	}
	return cfg, nil
}

// ApplySecrets overrides the token and Redis URL from the JSON secret.
func ApplySecrets(ctx context.Context, cfg *Config, sm SecretGetter) error {
	raw, err := sm.GetSecret(ctx, SecretName)
	if err != nil {
		return err
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return fmt.Errorf("secret %s is not a JSON object: %w", SecretName, err)
	}
	if v := m["SHOPIFY_STOREFRONT_TOKEN"]; v != "" {
		cfg.StorefrontToken = v
	}
	if v := m["REDIS_URL"]; v != "" {
		cfg.RedisURL = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.StoreDomain == "" && c.StorefrontEndpoint == "" {
		return fmt.Errorf("SHOPIFY_STORE_DOMAIN or STOREFRONT_ENDPOINT must be set")
	}
	if !c.FreeShippingGoal.IsPositive() {
		return fmt.Errorf("FREE_SHIPPING_GOAL must be positive, got %s", c.FreeShippingGoal)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, val, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, val, fallback)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
