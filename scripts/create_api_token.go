package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/franciscosanchezn/fitbit-gateway/internal/auth"
	"github.com/franciscosanchezn/fitbit-gateway/internal/config"
	"github.com/franciscosanchezn/fitbit-gateway/internal/database"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/joho/godotenv"
)

func main() {
	subject := flag.String("sub", "", "Token subject (defaults to the stored Fitbit user id)")
	scope := flag.String("scope", "", "Optional scope claim")
	ttl := flag.Duration("ttl", auth.DefaultAPITokenTTL, "Token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if conf.APIJWTSecret == "" {
		log.Fatal("API_JWT_SECRET is not set; the API is unauthenticated and needs no token")
	}

	db, err := database.InitDatabase(database.FromAppConfig(conf))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	store := auth.NewGormTokenStore(db)

	// Show which Fitbit account the token will act on, never its secrets
	ctx := context.Background()
	var tok *models.Token
	if *subject != "" {
		tok, err = store.Get(ctx, *subject)
	} else {
		tok, err = store.First(ctx)
	}
	switch {
	case errors.Is(err, models.ErrNoTokenStored):
		fmt.Println("No Fitbit account authorized yet; visit /auth/login before calling the API.")
	case err != nil:
		log.Fatal("Failed to read stored tokens:", err)
	default:
		status := "valid"
		if tok.ExpiresWithin(time.Now(), conf.RefreshLeeway) {
			status = "will refresh on next use"
		}
		fmt.Printf("Fitbit user: %s\n", tok.UserID)
		fmt.Printf("Scope:       %s\n", tok.Scope)
		fmt.Printf("Expires at:  %s (%s)\n", tok.ExpiresAt.UTC().Format(time.RFC3339), status)
		if *subject == "" {
			*subject = tok.UserID
		}
	}
	if *subject == "" {
		log.Fatal("No subject given and no stored Fitbit account to default to; pass -sub")
	}

	signed, err := auth.IssueAPIToken([]byte(conf.APIJWTSecret), *subject, *scope, *ttl)
	if err != nil {
		log.Fatal("Failed to issue token:", err)
	}

	fmt.Printf("\nAPI token for '%s' (valid %s):\n%s\n", *subject, *ttl, signed)
	fmt.Println("\nUse it like this:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' \\\n", signed)
	fmt.Printf("  http://%s:%d/api/v1/biometrics/profile\n", conf.Host, conf.Port)
}
