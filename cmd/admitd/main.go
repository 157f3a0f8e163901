package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dbs-admissions/admitd/internal/logging"
	"github.com/dbs-admissions/admitd/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to admitd TOML config")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg := server.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "admitd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := server.NewServiceWithConfig(cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "admitd: %v\n", err)
		os.Exit(1)
	}
}
