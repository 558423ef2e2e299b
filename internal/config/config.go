package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	UserName          string        `mapstructure:"fdp_user_name"`
	Host              string        `mapstructure:"fdp_host"`
	Port              int           `mapstructure:"fdp_port"`
	Source            string        `mapstructure:"fdp_source"`
	HTTPTimeoutSecond int64         `mapstructure:"fdp_timeout_seconds"`
	HTTPTimeout       time.Duration `mapstructure:"-"`

	ServiceName string   `mapstructure:"service_name"`
	TableOwners []string `mapstructure:"table_owners"`
	TablesFile  string   `mapstructure:"tables_file"`

	TunnelEnabled    bool   `mapstructure:"tunnel_enabled"`
	TunnelJumpHost   string `mapstructure:"tunnel_jump_host"`
	TunnelRemoteHost string `mapstructure:"tunnel_remote_host"`
	TunnelRemotePort int    `mapstructure:"tunnel_remote_port"`

	OnboardingRequester   string `mapstructure:"onboarding_requester"`
	OnboardingDescription string `mapstructure:"onboarding_description"`

	QueryStatement string `mapstructure:"query_statement"`
	QueryFormat    string `mapstructure:"query_format"`

	StorageType       string        `mapstructure:"storage_type"`
	BBoltPath         string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds int64         `mapstructure:"storage_ttl_seconds"`
	StorageTTL        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "fdp-http-api")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("fdp_user_name", "")
	v.SetDefault("fdp_host", "localhost")
	v.SetDefault("fdp_port", 14361) // staging; production is 19026
	v.SetDefault("fdp_source", "python")
	v.SetDefault("fdp_timeout_seconds", 0)

	v.SetDefault("service_name", "ltv")
	v.SetDefault("table_owners", []string{})
	v.SetDefault("tables_file", "./configs/tables.yaml")

	v.SetDefault("tunnel_enabled", true)
	v.SetDefault("tunnel_jump_host", "adhoc10-sjc1")
	v.SetDefault("tunnel_remote_host", "localhost")
	v.SetDefault("tunnel_remote_port", 0)

	v.SetDefault("onboarding_requester", "test@uber.com")
	v.SetDefault("onboarding_description", "the LTV service")

	v.SetDefault("query_statement", "select * from ltv_driver where city_id=328")
	v.SetDefault("query_format", "CSV")

	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/journal.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.TableOwners = splitList(v.GetStringSlice("table_owners"))

	if strings.TrimSpace(cfg.UserName) == "" {
		return nil, fmt.Errorf("fdp_user_name is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid fdp_port %d", cfg.Port)
	}
	if cfg.HTTPTimeoutSecond < 0 {
		return nil, fmt.Errorf("invalid fdp_timeout_seconds (must not be negative)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSecond) * time.Second

	if strings.TrimSpace(cfg.ServiceName) == "" {
		return nil, fmt.Errorf("service_name is required")
	}
	if cfg.TunnelRemotePort == 0 {
		cfg.TunnelRemotePort = cfg.Port
	}
	if cfg.TunnelRemotePort < 0 || cfg.TunnelRemotePort > 65535 {
		return nil, fmt.Errorf("invalid tunnel_remote_port %d", cfg.TunnelRemotePort)
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second

	return &cfg, nil
}

// splitList accepts both YAML-style lists and comma separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
