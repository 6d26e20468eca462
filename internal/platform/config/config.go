package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	MigrationsPath     string
	JWTSecret          string
	JWTIssuer          string
	RateLimit          string
	CORSAllowedOrigins []string

	// Suggestion model
	GeminiModel  string
	GeminiAPIKey string

	PostHogAPIKey   string
	PostHogEndpoint string

	Engine EngineConfig
}

// EngineConfig tunes draft sessions and duplicate matching.
type EngineConfig struct {
	SplitAmountThreshold     decimal.Decimal
	SplitMerchants           []string
	FutureDateLimitDays      int
	LineItemAIDebounce       time.Duration
	LookupDebounce           time.Duration
	DuplicateAmountTolerance decimal.Decimal
	DuplicateWindowDays      int
	DuplicateLookbackDays    int
	SessionIdleTTL           time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "ledger-intake")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://us.i.posthog.com")
	viper.SetDefault("SPLIT_AMOUNT_THRESHOLD", "200")
	viper.SetDefault("SPLIT_MERCHANTS", "")
	viper.SetDefault("FUTURE_DATE_LIMIT_DAYS", 30)
	viper.SetDefault("LINE_ITEM_AI_DEBOUNCE", "300ms")
	viper.SetDefault("LOOKUP_DEBOUNCE", "300ms")
	viper.SetDefault("DUPLICATE_AMOUNT_TOLERANCE", "0.50")
	viper.SetDefault("DUPLICATE_WINDOW_DAYS", 7)
	viper.SetDefault("DUPLICATE_LOOKBACK_DAYS", 30)
	viper.SetDefault("SESSION_IDLE_TTL", "30m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.GeminiAPIKey = viper.GetString("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set. AI suggestions will be unavailable.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.GeminiModel = viper.GetString("GEMINI_MODEL")
	cfg.PostHogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PostHogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	cfg.Engine = EngineConfig{
		SplitAmountThreshold:     decimalSetting("SPLIT_AMOUNT_THRESHOLD", decimal.NewFromInt(200)),
		SplitMerchants:           splitList(viper.GetString("SPLIT_MERCHANTS")),
		FutureDateLimitDays:      viper.GetInt("FUTURE_DATE_LIMIT_DAYS"),
		LineItemAIDebounce:       durationSetting("LINE_ITEM_AI_DEBOUNCE", 300*time.Millisecond),
		LookupDebounce:           durationSetting("LOOKUP_DEBOUNCE", 300*time.Millisecond),
		DuplicateAmountTolerance: decimalSetting("DUPLICATE_AMOUNT_TOLERANCE", decimal.RequireFromString("0.50")),
		DuplicateWindowDays:      viper.GetInt("DUPLICATE_WINDOW_DAYS"),
		DuplicateLookbackDays:    viper.GetInt("DUPLICATE_LOOKBACK_DAYS"),
		SessionIdleTTL:           durationSetting("SESSION_IDLE_TTL", 30*time.Minute),
	}

	return cfg, nil
}

func durationSetting(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func decimalSetting(key string, fallback decimal.Decimal) decimal.Decimal {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

// splitList parses a comma separated setting, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
