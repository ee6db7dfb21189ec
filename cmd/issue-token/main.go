// Command issue-token prints a signed access token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gcclean/trash-service/internal/auth"
)

func main() {
	userFlag := flag.String("user", "", "user id (random when empty)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_ACCESS_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_ACCESS_SECRET is required")
		os.Exit(1)
	}

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid user id: %v\n", err)
			os.Exit(1)
		}
		userID = parsed
	}

	token, err := auth.NewIssuer(secret, *ttl).Issue(userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("user:  %s\ntoken: %s\n", userID, token)
}
