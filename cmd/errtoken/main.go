package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kerlexov/errorlog/pkg/auth"
)

func main() {
	var (
		configPath = flag.String("config", "./config/api-tokens.yaml", "Path to the access token configuration file")
		action     = flag.String("action", "", "Action to perform: create, list, revoke")
		name       = flag.String("name", "", "Name for the token")
		scopes     = flag.String("scopes", "read", "Comma-separated list of scopes: read, report, admin")
		expiresIn  = flag.String("expires-in", "", "Expiration duration (e.g. '30d', '6m', '1y')")
		token      = flag.String("token", "", "Token value to operate on (for revoke)")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Usage: errtoken -action=<create|list|revoke> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	config, err := auth.LoadTokenConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load token config: %v", err)
	}

	manager := auth.NewTokenManager(config)

	switch *action {
	case "create":
		if *name == "" {
			log.Fatal("Name is required for creating tokens")
		}

		parsed := parseScopes(*scopes)

		var expiresAt *time.Time
		if *expiresIn != "" {
			exp, err := parseExpiration(*expiresIn)
			if err != nil {
				log.Fatalf("Invalid expiration format: %v", err)
			}
			expiresAt = &exp
		}

		value, err := manager.CreateToken(*name, parsed, expiresAt)
		if err != nil {
			log.Fatalf("Failed to create token: %v", err)
		}

		fmt.Printf("Created token: %s\n", value)
		fmt.Printf("Name: %s\n", *name)
		fmt.Printf("Scopes: %v\n", parsed)
		if expiresAt != nil {
			fmt.Printf("Expires: %s\n", expiresAt.Format(time.RFC3339))
		}

		if err := auth.SaveTokenConfig(*configPath, config); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("\nConfiguration saved to: %s\n", *configPath)
		fmt.Println("Store this token securely. Only its hash is kept and it cannot be shown again.")

	case "list":
		tokens := manager.ListTokens()
		if len(tokens) == 0 {
			fmt.Println("No tokens found")
			return
		}

		fmt.Printf("%-20s %-20s %-20s %-12s %-8s\n", "Name", "Scopes", "Created", "Expires", "Active")
		fmt.Println(strings.Repeat("-", 80))

		for _, info := range tokens {
			scopesStr := strings.Join(scopesToStrings(info.Scopes), ",")

			expiresStr := "Never"
			if info.ExpiresAt != nil {
				expiresStr = info.ExpiresAt.Format("2006-01-02")
			}

			activeStr := "Yes"
			if !info.Active {
				activeStr = "No"
			}

			fmt.Printf("%-20s %-20s %-20s %-12s %-8s\n",
				info.Name,
				scopesStr,
				info.CreatedAt.Format("2006-01-02 15:04:05"),
				expiresStr,
				activeStr,
			)
		}

	case "revoke":
		if *token == "" {
			log.Fatal("Token value is required for revocation")
		}

		if !manager.RevokeToken(*token) {
			fmt.Println("Token not found")
			os.Exit(1)
		}

		if err := auth.SaveTokenConfig(*configPath, config); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Println("Token revoked")

	default:
		log.Fatalf("Unknown action: %s", *action)
	}
}

func parseScopes(raw string) []auth.Scope {
	parts := strings.Split(raw, ",")
	scopes := make([]auth.Scope, 0, len(parts))

	for _, part := range parts {
		switch strings.TrimSpace(part) {
		case "read":
			scopes = append(scopes, auth.ScopeRead)
		case "report":
			scopes = append(scopes, auth.ScopeReport)
		case "admin":
			scopes = append(scopes, auth.ScopeAdmin)
		default:
			log.Fatalf("Unknown scope: %s", part)
		}
	}

	return scopes
}

func scopesToStrings(scopes []auth.Scope) []string {
	out := make([]string, len(scopes))
	for i, scope := range scopes {
		out[i] = string(scope)
	}
	return out
}

func parseExpiration(raw string) (time.Time, error) {
	now := time.Now()

	var n int
	switch {
	case strings.HasSuffix(raw, "d"):
		if _, err := fmt.Sscanf(strings.TrimSuffix(raw, "d"), "%d", &n); err != nil {
			return time.Time{}, err
		}
		return now.AddDate(0, 0, n), nil
	case strings.HasSuffix(raw, "m"):
		if _, err := fmt.Sscanf(strings.TrimSuffix(raw, "m"), "%d", &n); err != nil {
			return time.Time{}, err
		}
		return now.AddDate(0, n, 0), nil
	case strings.HasSuffix(raw, "y"):
		if _, err := fmt.Sscanf(strings.TrimSuffix(raw, "y"), "%d", &n); err != nil {
			return time.Time{}, err
		}
		return now.AddDate(n, 0, 0), nil
	}

	return time.Time{}, fmt.Errorf("invalid expiration format, use: 30d, 6m, 1y")
}
