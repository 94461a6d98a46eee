// file: internal/config/config.go
// version: 1.1.0
// guid: 8c4e2a6f-0d17-4b93-a5e8-6f2c9d4b1e70

package config

import (
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	StoreType    string // "memory" (default) or "sqlite"
	DatabasePath string
	EnableAuth   bool

	// Matcher tuning
	SearchThreshold int // worst acceptable best-of-set score for listing search
	SuggestionLimit int // typeahead suggestions returned by default

	// Request limits
	RateLimitPerMinute   int
	RateLimitBurst       int
	RateLimitIdleMinutes int // minutes before an idle client's bucket is dropped
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	viper.SetDefault("store_type", "memory")
	viper.SetDefault("enable_auth", true)
	viper.SetDefault("search_threshold", 4)
	viper.SetDefault("suggestion_limit", 3)
	viper.SetDefault("rate_limit_per_minute", 300)
	viper.SetDefault("rate_limit_burst", 50)
	viper.SetDefault("rate_limit_idle_minutes", 15)

	AppConfig = Config{
		StoreType:            viper.GetString("store_type"),
		DatabasePath:         viper.GetString("database_path"),
		EnableAuth:           viper.GetBool("enable_auth"),
		SearchThreshold:      viper.GetInt("search_threshold"),
		SuggestionLimit:      viper.GetInt("suggestion_limit"),
		RateLimitPerMinute:   viper.GetInt("rate_limit_per_minute"),
		RateLimitBurst:       viper.GetInt("rate_limit_burst"),
		RateLimitIdleMinutes: viper.GetInt("rate_limit_idle_minutes"),
	}

	if AppConfig.StoreType == "sqlite3" {
		AppConfig.StoreType = "sqlite"
	}
	if AppConfig.StoreType == "" {
		AppConfig.StoreType = "memory"
	}
	if AppConfig.SearchThreshold < 0 {
		AppConfig.SearchThreshold = 4
	}
	if AppConfig.SuggestionLimit < 1 {
		AppConfig.SuggestionLimit = 3
	}
}
