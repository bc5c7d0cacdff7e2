package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/khoahotran/career-onboard/pkg/auth"
)

// Prints a signed identity token for local testing:
//
//	DEV_EXTERNAL_ID=user_123 DEV_EMAIL=me@example.com go run ./scripts
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "career-onboard-api"
	}
	externalID := os.Getenv("DEV_EXTERNAL_ID")
	if externalID == "" {
		log.Fatal("DEV_EXTERNAL_ID is required")
	}

	jwtSvc := auth.NewJWTService(secret, issuer, 24*time.Hour)
	token, err := jwtSvc.GenerateToken(externalID, auth.CustomClaims{
		Email:      os.Getenv("DEV_EMAIL"),
		GivenName:  os.Getenv("DEV_FIRST_NAME"),
		FamilyName: os.Getenv("DEV_LAST_NAME"),
		Picture:    os.Getenv("DEV_IMAGE_URL"),
	})
	if err != nil {
		log.Fatalf("cannot issue token: %v", err)
	}

	fmt.Println(token)
}
