// Command crontoken mints the bearer token expected by /api/cron and the
// item admin routes.
package main

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"github.com/spf13/pflag"

	"github.com/vietanh2810/camp-animal-economy/internal/config"
	"github.com/vietanh2810/camp-animal-economy/internal/pkg/jwthelper"
)

func main() {
	configPath := pflag.String("config", "./cmd/app/config.yml", "path to config file")
	subject := pflag.String("subject", "scheduler", "token subject")
	ttl := pflag.Duration("ttl", 0, "token lifetime, 0 for no expiry")
	pflag.Parse()

	if err := run(*configPath, *subject, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, subject string, ttl time.Duration) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config.Load -> %w", err)
	}

	if conf.API.CronSigningKey == "" {
		return fmt.Errorf("api.cron_signing_key is not set, the cron endpoint is unprotected")
	}

	token, err := jwthelper.GenerateToken([]byte(conf.API.CronSigningKey), subject, ttl)
	if err != nil {
		return fmt.Errorf("jwthelper.GenerateToken -> %w", err)
	}

	fmt.Println(token)

	return nil
}
