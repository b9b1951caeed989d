package main

import (
	"context"
	"flag"
	"log"
	"time"

	"storefront/internal/infrastructure/firebase"
	"storefront/pkg/config"
	"storefront/pkg/logger"
)

// grant-admin sets or clears the admin custom claim for one Firebase user.
// The user has to sign in again before the new claim shows up in their token.
func main() {
	uid := flag.String("uid", "", "Firebase user id")
	revoke := flag.Bool("revoke", false, "clear the claim instead of setting it")
	flag.Parse()

	if *uid == "" {
		log.Fatal("-uid is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StoreBackend != config.BackendFirestore {
		log.Fatalf("grant-admin needs STORE_BACKEND=%s", config.BackendFirestore)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opt, err := firebase.CredentialsOption(cfg.ServiceAccountJSON, cfg.ServiceAccountPath)
	if err != nil {
		log.Fatalf("Failed to resolve Firebase credentials: %v", err)
	}
	clients, err := firebase.NewClients(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer clients.Close()

	if err := clients.Auth.SetAdmin(ctx, *uid, cfg.AdminClaim, !*revoke); err != nil {
		log.Fatalf("Failed to update claims for %s: %v", *uid, err)
	}
	logger.Info("Claim %q set to %t for user %s", cfg.AdminClaim, !*revoke, *uid)
}
