package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/juju/clock"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/infrastructure/config"
	"github.com/complyance/governance/infrastructure/service/jwt"
)

// actor_token prints a bearer token whose subject is recorded as the actor
// of every lifecycle operation made with it.
func main() {
	subject := flag.String("subject", "", "actor ID recorded on audit entries")
	name := flag.String("name", "", "display name carried in the token")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to JWT_ACCESS_TOKEN_TTL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lifetime := cfg.JWTAccessTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := mint(cfg.JWTSecret, lifetime, *subject, *name)
	if err != nil {
		log.Fatalf("Failed to create token: %v", err)
	}

	fmt.Printf("Actor: %s\n", *subject)
	fmt.Printf("Expires in: %s\n", lifetime)
	fmt.Printf("Token: %s\n", token)
}

func mint(secret string, ttl time.Duration, subject, name string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("-subject is required")
	}
	svc, err := jwt.NewJWTService(secret, ttl, clock.WallClock)
	if err != nil {
		return "", err
	}
	return svc.GenerateAccessToken(outbound.TokenClaims{Subject: subject, Name: name})
}
