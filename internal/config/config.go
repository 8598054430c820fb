package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	StripeSecretKey string
	HostName        string

	LedgerNodeURL    string
	LedgerContractID string
	LedgerSigningKey string

	// Ledger-native integer amounts; see service.Thresholds.
	MinAccountCreationAmount int64
	MinOperatingBalance      int64
	FillAmount               int64

	DbUser     string
	DbPassword string
	DbHost     string
	DbName     string
	SSLMode    string
	DbPort     string
	Port       int
}

func Load() (*Config, error) {
	// Load .env file (only in development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	return &Config{
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		HostName:        os.Getenv("HOST_NAME"),

		LedgerNodeURL:    os.Getenv("LEDGER_NODE_URL"),
		LedgerContractID: os.Getenv("LEDGER_CONTRACT_ID"),
		LedgerSigningKey: os.Getenv("LEDGER_SIGNING_KEY"),

		MinAccountCreationAmount: envInt64("MIN_ACCOUNT_CREATION_AMOUNT", 500),
		MinOperatingBalance:      envInt64("MIN_OPERATING_BALANCE", 100),
		FillAmount:               envInt64("FILL_AMOUNT", 1000),

		DbUser:     os.Getenv("DB_USER"),
		DbPassword: os.Getenv("DB_PASSWORD"),
		DbHost:     os.Getenv("DB_HOST"),
		DbName:     os.Getenv("DB_NAME"),
		DbPort:     os.Getenv("DB_PORT"),
		SSLMode:    os.Getenv("SSL_MODE"),
		Port:       port,
	}, nil
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
