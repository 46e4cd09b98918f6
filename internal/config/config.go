package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crewfield/scheduling-service/internal/utils"
)

type Config struct {
	AppName string
	AppPort string
	AppUrl  string

	// Database
	DBUrl string

	// Auth
	RSAPublicKey *rsa.PublicKey

	SeedTestData     bool
	CORSHighSecurity bool
}

const AppName = "scheduling-service"

func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	pubB64 := os.Getenv("RSA_PUBLIC_KEY_BASE64")
	if pubB64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}
	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	seed := boolEnv("SEED_TEST_DATA", false)
	corsHigh := boolEnv("CORS_HIGH_SECURITY", true)

	return &Config{
		AppName:          AppName,
		AppPort:          appPort,
		AppUrl:           appUrl,
		DBUrl:            dbURL,
		RSAPublicKey:     pubKey,
		SeedTestData:     seed,
		CORSHighSecurity: corsHigh,
	}
}

func boolEnv(name string, def bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		utils.Logger.Warnf("Invalid %s '%s', defaulting to %t", name, raw, def)
		return def
	}
	return v
}

func (c *Config) Close() {}
