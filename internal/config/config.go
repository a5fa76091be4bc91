package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	JWTSecret      string  `mapstructure:"JWT_SECRET"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	OpenAIKey   string `mapstructure:"OPENAI_API_KEY"`
	GeminiKey   string `mapstructure:"GEMINI_API_KEY"`
	GroqKey     string `mapstructure:"GROQ_API_KEY"`
	XAIKey      string `mapstructure:"XAI_API_KEY"`
	OpenAIModel string `mapstructure:"OPENAI_MODEL"`
	GeminiModel string `mapstructure:"GEMINI_MODEL"`
	GroqModel   string `mapstructure:"GROQ_MODEL"`
	XAIModel    string `mapstructure:"XAI_MODEL"`

	// Price per token in USD, used for cost estimates on usage records.
	PriceChatGPT float64 `mapstructure:"PRICE_PER_TOKEN_CHATGPT"`
	PriceGemini  float64 `mapstructure:"PRICE_PER_TOKEN_GEMINI"`
	PriceGroq    float64 `mapstructure:"PRICE_PER_TOKEN_GROQ"`
	PriceXAI     float64 `mapstructure:"PRICE_PER_TOKEN_XAI"`

	LLMRateWindow time.Duration `mapstructure:"LLM_RATE_WINDOW"`
	LLMTimeout    time.Duration `mapstructure:"LLM_TIMEOUT"`
	LLMMaxRetries int           `mapstructure:"LLM_MAX_RETRIES"`

	ChatHistoryLimit  int    `mapstructure:"CHAT_HISTORY_LIMIT"`
	ChatMaxToolRounds int    `mapstructure:"CHAT_MAX_TOOL_ROUNDS"`
	RetrievalURL      string `mapstructure:"RETRIEVAL_URL"`
	RetrievalTopK     int    `mapstructure:"RETRIEVAL_TOP_K"`

	VitalsLookback time.Duration `mapstructure:"VITALS_LOOKBACK"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GROQ_MODEL", "llama-3.1-8b-instant")
	v.SetDefault("XAI_MODEL", "grok-2-latest")
	v.SetDefault("PRICE_PER_TOKEN_CHATGPT", 0.00000015)
	v.SetDefault("PRICE_PER_TOKEN_GEMINI", 0.000000075)
	v.SetDefault("PRICE_PER_TOKEN_GROQ", 0.00000005)
	v.SetDefault("PRICE_PER_TOKEN_XAI", 0.0000002)
	v.SetDefault("LLM_RATE_WINDOW", "1s")
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("LLM_MAX_RETRIES", 2)
	v.SetDefault("CHAT_HISTORY_LIMIT", 5)
	v.SetDefault("CHAT_MAX_TOOL_ROUNDS", 5)
	v.SetDefault("RETRIEVAL_TOP_K", 5)
	v.SetDefault("VITALS_LOOKBACK", "24h")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"CORS_ORIGINS", "JWT_SECRET", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"OPENAI_API_KEY", "GEMINI_API_KEY", "GROQ_API_KEY", "XAI_API_KEY",
		"OPENAI_MODEL", "GEMINI_MODEL", "GROQ_MODEL", "XAI_MODEL",
		"PRICE_PER_TOKEN_CHATGPT", "PRICE_PER_TOKEN_GEMINI",
		"PRICE_PER_TOKEN_GROQ", "PRICE_PER_TOKEN_XAI",
		"LLM_RATE_WINDOW", "LLM_TIMEOUT", "LLM_MAX_RETRIES",
		"CHAT_HISTORY_LIMIT", "CHAT_MAX_TOOL_ROUNDS",
		"RETRIEVAL_URL", "RETRIEVAL_TOP_K", "VITALS_LOOKBACK",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; all requests get nurse access.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// mode JWT_SECRET must be set so that real bearer authentication is enforced,
// and at least one LLM provider key must be configured so that report
// generation can work at all.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q; refusing to start without authentication", c.Env)
	}
	if c.OpenAIKey == "" && c.GeminiKey == "" && c.GroqKey == "" && c.XAIKey == "" {
		return fmt.Errorf("no LLM provider key configured; set at least one of OPENAI_API_KEY, GEMINI_API_KEY, GROQ_API_KEY, XAI_API_KEY")
	}
	if c.LLMRateWindow <= 0 {
		return fmt.Errorf("LLM_RATE_WINDOW must be positive, got %s", c.LLMRateWindow)
	}
	if c.ChatHistoryLimit <= 0 {
		return fmt.Errorf("CHAT_HISTORY_LIMIT must be positive, got %d", c.ChatHistoryLimit)
	}
	if c.ChatMaxToolRounds <= 0 {
		return fmt.Errorf("CHAT_MAX_TOOL_ROUNDS must be positive, got %d", c.ChatMaxToolRounds)
	}
	return nil
}
