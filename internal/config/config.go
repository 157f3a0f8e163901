package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dbs-admissions/admitd/internal/client"
)

type clientFile struct {
	Address        string `toml:"address"`
	ConnectTimeout string `toml:"connect_timeout"`
	ReadTimeout    string `toml:"read_timeout"`
	WriteTimeout   string `toml:"write_timeout"`
}

// LoadClientConfig reads a client TOML file over the driver defaults.
func LoadClientConfig(path string) (client.Config, error) {
	cfg := client.DefaultConfig()

	var raw clientFile
	if err := loadToml(path, &raw); err != nil {
		return client.Config{}, err
	}

	if strings.TrimSpace(raw.Address) != "" {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if err := applyDuration(&cfg.ConnectTimeout, raw.ConnectTimeout, "connect_timeout"); err != nil {
		return client.Config{}, err
	}
	if err := applyDuration(&cfg.ReadTimeout, raw.ReadTimeout, "read_timeout"); err != nil {
		return client.Config{}, err
	}
	if err := applyDuration(&cfg.WriteTimeout, raw.WriteTimeout, "write_timeout"); err != nil {
		return client.Config{}, err
	}

	if err := ValidateClientConfig(cfg); err != nil {
		return client.Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func applyDuration(dst *time.Duration, raw, name string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config parse %s: %w", name, err)
	}
	*dst = d
	return nil
}

func ValidateClientConfig(cfg client.Config) error {
	addr := strings.TrimSpace(cfg.Address)
	if addr == "" {
		return fmt.Errorf("client config missing address")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("client config address invalid: %w", err)
	}
	if cfg.ConnectTimeout <= 0 {
		return fmt.Errorf("client config connect_timeout must be positive")
	}
	return nil
}
