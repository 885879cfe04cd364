// Command issuetoken prints a bearer token accepted by the write guard.
//
//	JWT_SECRET=... go run ./cmd/issuetoken -subject field-phone-01 -ttl 720h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"smart_tracker/internal/config"
	"smart_tracker/internal/middleware"
)

func main() {
	subject := flag.String("subject", "mobile-client", "token subject (device or client name)")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set; the write guard is disabled")
		os.Exit(1)
	}

	token, err := middleware.GenerateToken(*subject, []byte(cfg.JWTSecret), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
