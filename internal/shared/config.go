package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"trustwatch/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	SourceBase  string
	SourceDelay time.Duration
	Languages   string
	DateFilter  string
	BatchSize   int
	MaxPages    int

	ReportsDir  string
	ReportWeeks int
	SinkDelay   time.Duration

	CacheTTL time.Duration
}

// Load reads trustwatch.yaml when present and lets environment variables
// override every key (APP_ENV, HTTP_ADDR, ...). A .env file is picked up
// first as a developer convenience.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("trustwatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/trustwatch")
	v.AutomaticEnv()

	v.SetDefault("app_env", "prod")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("metrics_addr", ":9100")
	v.SetDefault("mysql_dsn", "root:root@tcp(localhost:3306)/trustwatch?parseTime=true&charset=utf8mb4,utf8&loc=UTC")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("source_base_url", "https://www.trustpilot.com")
	v.SetDefault("source_delay", "2s")
	v.SetDefault("sync_languages", "all")
	v.SetDefault("sync_date_filter", "last30days")
	v.SetDefault("sync_batch_size", 20)
	v.SetDefault("sync_max_pages", 0)
	v.SetDefault("reports_dir", "reports")
	v.SetDefault("report_weeks", 4)
	v.SetDefault("sink_delay", "0s")
	v.SetDefault("cache_ttl_seconds", 900)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			log.Warn().Err(err).Msg("config file unreadable, falling back to env")
		}
	}

	return Config{
		AppEnv:      v.GetString("app_env"),
		HTTPAddr:    v.GetString("http_addr"),
		MetricsAddr: v.GetString("metrics_addr"),
		MySQLDSN:    v.GetString("mysql_dsn"),
		RedisAddr:   v.GetString("redis_addr"),
		RedisDB:     v.GetInt("redis_db"),
		RedisPass:   v.GetString("redis_password"),
		SourceBase:  v.GetString("source_base_url"),
		SourceDelay: v.GetDuration("source_delay"),
		Languages:   v.GetString("sync_languages"),
		DateFilter:  v.GetString("sync_date_filter"),
		BatchSize:   v.GetInt("sync_batch_size"),
		MaxPages:    v.GetInt("sync_max_pages"),
		ReportsDir:  v.GetString("reports_dir"),
		ReportWeeks: v.GetInt("report_weeks"),
		SinkDelay:   v.GetDuration("sink_delay"),
		CacheTTL:    time.Duration(v.GetInt("cache_ttl_seconds")) * time.Second,
	}
}

// LoadBrands resolves the roster. A JSON config file wins when it exists
// (path from BRANDS_CONFIG, default brands_config.json); otherwise the
// BRANDS_LIST variable is parsed as "domain|Name,domain2|Name2", with the
// name defaulting to the domain.
func LoadBrands() ([]domain.BrandRef, error) {
	path := os.Getenv("BRANDS_CONFIG")
	if path == "" {
		path = "brands_config.json"
	}
	if raw, err := os.ReadFile(path); err == nil {
		var cfg struct {
			Brands []struct {
				Domain string `json:"domain"`
				Name   string `json:"name"`
			} `json:"brands"`
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		out := make([]domain.BrandRef, 0, len(cfg.Brands))
		for _, b := range cfg.Brands {
			if b.Domain == "" {
				continue
			}
			name := b.Name
			if name == "" {
				name = b.Domain
			}
			out = append(out, domain.BrandRef{Domain: b.Domain, Name: name})
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%s lists no brands", path)
		}
		return out, nil
	}

	list := os.Getenv("BRANDS_LIST")
	if list == "" {
		return nil, errors.New("no brands configured: provide brands_config.json or BRANDS_LIST")
	}
	out := make([]domain.BrandRef, 0, 4)
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		ref := domain.BrandRef{Domain: item, Name: item}
		if d, n, ok := strings.Cut(item, "|"); ok {
			ref.Domain = strings.TrimSpace(d)
			ref.Name = strings.TrimSpace(n)
		}
		out = append(out, ref)
	}
	if len(out) == 0 {
		return nil, errors.New("BRANDS_LIST is empty")
	}
	return out, nil
}
