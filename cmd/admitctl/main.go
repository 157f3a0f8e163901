package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dbs-admissions/admitd/internal/client"
	"github.com/dbs-admissions/admitd/internal/config"
	"github.com/dbs-admissions/admitd/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to admitctl TOML config")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg := client.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadClientConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "admitctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if strings.TrimSpace(*addr) != "" {
		cfg.Address = strings.TrimSpace(*addr)
	}

	req, err := collectRequest(bufio.NewReader(os.Stdin), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "admitctl: input aborted: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nApplication sent to server. Waiting for response...")

	result, err := client.NewDriver(cfg).Submit(context.Background(), req)
	if err != nil {
		reportFailure(err)
		os.Exit(1)
	}

	fmt.Println("\n=== Application Successful ===")
	fmt.Println("Your unique DBS registration number is:", result.RegistrationNumber)
	fmt.Println("Please keep this number for all future correspondence.")
}

// reportFailure maps each driver failure kind to a distinct operator message.
func reportFailure(err error) {
	var rejection *client.Rejection
	switch {
	case errors.As(err, &rejection):
		fmt.Println("\n=== Application Failed ===")
		fmt.Println("Reason:", rejection.Message)
	case errors.Is(err, client.ErrConnectionRefused):
		fmt.Println("Server refused to connect...")
	case errors.Is(err, client.ErrConnectionAborted):
		fmt.Println("Connection is aborted...")
	case errors.Is(err, client.ErrNoResponse):
		fmt.Println("No response received from server.")
	case errors.Is(err, client.ErrInvalidResponse):
		fmt.Println("Server returned invalid data.")
	default:
		fmt.Println("Connection error:", err)
	}
}
