package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dbs-admissions/admitd/internal/server"
)

type fileConfig struct {
	ListenAddr         string `toml:"listen_addr"`
	AcceptTimeout      string `toml:"accept_timeout"`
	ReadTimeout        string `toml:"read_timeout"`
	WriteTimeout       string `toml:"write_timeout"`
	DatabasePath       string `toml:"database_path"`
	RegistrationPrefix string `toml:"registration_prefix"`
}

// loadServiceConfig overlays an operator TOML file onto runtime defaults;
// only keys actually present in the file override.
func loadServiceConfig(path string) (server.ServiceConfig, error) {
	cfg := server.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return server.ServiceConfig{}, fmt.Errorf("load admitd config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		addr := strings.TrimSpace(raw.ListenAddr)
		if addr != "" {
			cfg.Session.ListenAddr = addr
		}
	}

	if meta.IsDefined("accept_timeout") {
		d, err := parseTimeout(raw.AcceptTimeout, "accept_timeout")
		if err != nil {
			return server.ServiceConfig{}, err
		}
		cfg.Session.AcceptTimeout = d
	}

	if meta.IsDefined("read_timeout") {
		d, err := parseTimeout(raw.ReadTimeout, "read_timeout")
		if err != nil {
			return server.ServiceConfig{}, err
		}
		cfg.Session.ReadTimeout = d
	}

	if meta.IsDefined("write_timeout") {
		d, err := parseTimeout(raw.WriteTimeout, "write_timeout")
		if err != nil {
			return server.ServiceConfig{}, err
		}
		cfg.Session.WriteTimeout = d
	}

	if meta.IsDefined("database_path") {
		dbPath := strings.TrimSpace(raw.DatabasePath)
		if dbPath != "" {
			cfg.Registry.Path = dbPath
		}
	}

	if meta.IsDefined("registration_prefix") {
		prefix := strings.TrimSpace(raw.RegistrationPrefix)
		if prefix != "" {
			cfg.Registry.Prefix = prefix
		}
	}

	return cfg, nil
}

func parseTimeout(raw, name string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return d, nil
}
