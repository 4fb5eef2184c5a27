package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// PostgresURL enables the report archive when set.
	PostgresURL string `mapstructure:"POSTGRES_URL"`

	// GlobalPrefix namespaces every Redis key. Changing it orphans all existing data.
	GlobalPrefix      string   `mapstructure:"GLOBAL_PREFIX"`
	LinkCacheTime     int      `mapstructure:"LINKCACHE_TIME"` // in seconds
	Expiry            int      `mapstructure:"EXPIRY"`         // in seconds
	ValidSchemes      []string `mapstructure:"VALID_SCHEMES"`
	PermanentlyIgnore []string `mapstructure:"PERMANENTLY_IGNORE"` // one regexp per line

	// Crawler tuning, read by the external crawler.
	CrawlDelay float64 `mapstructure:"CRAWL_DELAY"`
	CheckDelay float64 `mapstructure:"CHECK_DELAY"`
	RetryCount int     `mapstructure:"RETRY_COUNT"`
	CrawlLimit int     `mapstructure:"CRAWL_LIMIT"`
}

// DefaultPermanentlyIgnore lists link patterns the checker never reports.
var DefaultPermanentlyIgnore = []string{
	`Search=true&filter\[\]=`, // search
	`^mailto:`,
	`\);\s?$`, // href javascript
	`javascript:`,
	`/(e|m|r)/`, // legacy
	`www\.tki\.org\.nz/(about|contact|help|accessibility|privacy)(/|$)`, // footer
	`wws/arc/`,       // mailing list archives
	`sympa/archive/`, // mailing list archives
}

// Load reads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing file is fine, production is configured through the environment.
	_ = v.ReadInConfig()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 1)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("GLOBAL_PREFIX", "tki-linkcheck")
	v.SetDefault("LINKCACHE_TIME", 60)
	v.SetDefault("EXPIRY", 691_200) // 8 days
	v.SetDefault("VALID_SCHEMES", []string{"http", "ftp", "https"})
	v.SetDefault("PERMANENTLY_IGNORE", DefaultPermanentlyIgnore)
	v.SetDefault("CRAWL_DELAY", 0.5)
	v.SetDefault("CHECK_DELAY", 0.5)
	v.SetDefault("RETRY_COUNT", 2)
	v.SetDefault("CRAWL_LIMIT", 2000)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	// Patterns may contain commas, so a string value holds one per line.
	if raw, ok := v.Get("PERMANENTLY_IGNORE").(string); ok {
		cfg.PermanentlyIgnore = splitLines(raw)
	}
	return &cfg, nil
}

func splitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// LinkCacheTTL is the minimum age of the check cache before Flush clears it.
func (c *Config) LinkCacheTTL() time.Duration {
	return time.Duration(c.LinkCacheTime) * time.Second
}

// RecencyWindow is the staleness threshold used by the summary report.
func (c *Config) RecencyWindow() time.Duration {
	return time.Duration(c.Expiry) * time.Second
}
