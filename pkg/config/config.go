package config

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

type Config struct {
	App       AppConfig                 `json:"app"`
	Gateways  map[string]GatewayConfig  `json:"gateways"`
	Providers map[string]ProviderConfig `json:"providers"`
	Store     StoreConfig               `json:"store"`
	Cache     CacheConfig               `json:"cache"`
}

type AppConfig struct {
	Name    string `json:"name"`
	Prompts string `json:"prompts"`
}

type GatewayConfig struct {
	Token   string `json:"token"`
	Addr    string `json:"addr,omitempty"`
	Enabled bool   `json:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type StoreConfig struct {
	Path    string `json:"path"`
	Catalog string `json:"catalog,omitempty"`
}

type CacheConfig struct {
	Path       string `json:"path"`
	TTLSeconds int    `json:"ttl_seconds"`
}

func LoadConfig(path string) *Config {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	return &cfg
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetGateway returns the named gateway config if enabled
func (c *Config) GetGateway(name string) (GatewayConfig, bool) {
	gw, ok := c.Gateways[name]
	if ok && gw.Enabled {
		return gw, true
	}
	return GatewayConfig{}, false
}

// CacheTTL returns the configured cache expiry. Memoized LLM results should
// live for at least an hour, so that is the floor and the default.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
