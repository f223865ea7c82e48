package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultPort = "8080"

	DefaultAccessTokenExpiryMin       = 15
	DefaultRefreshTokenExpiryMin      = 10080 // 7 days
	DefaultVerificationTokenExpiryMin = 1440  // 24 hours
	DefaultResetTokenExpiryMin        = 30
	DefaultPhoneTokenExpiryMin        = 10

	// Revocation entries must outlive the access tokens they block.
	DefaultRevocationRetentionMin = DefaultAccessTokenExpiryMin + 5

	DefaultBcryptCost = 12
)

type Config struct {
	Env  string
	Port string

	DBURL string

	AccessTokenSecret       string
	RefreshTokenSecret      string
	VerificationTokenSecret string
	ResetTokenSecret        string
	PhoneTokenSecret        string

	AccessExpiryMin       int
	RefreshExpiryMin      int
	VerificationExpiryMin int
	ResetExpiryMin        int
	PhoneExpiryMin        int

	RevocationRetentionMin int
	BcryptCost             int

	AppURL      string
	FrontendURL string

	MailHost        string
	MailPort        int
	MailUsername    string
	MailPassword    string
	MailFromName    string
	MailFromAddress string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
}

func Load() *Config {
	env := getEnv("ENV", "development")

	// Values already present in the environment win over the file.
	_ = godotenv.Load(fmt.Sprintf("config/.env.%s", envFileSuffix(env)))

	return &Config{
		Env:  env,
		Port: getEnv("PORT", DefaultPort),

		DBURL: mustGetEnv("DB_URL"),

		AccessTokenSecret:       mustGetEnv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:      mustGetEnv("REFRESH_TOKEN_SECRET"),
		VerificationTokenSecret: mustGetEnv("VERIFICATION_TOKEN_SECRET"),
		ResetTokenSecret:        mustGetEnv("RESET_TOKEN_SECRET"),
		PhoneTokenSecret:        getEnv("PHONE_TOKEN_SECRET", ""),

		AccessExpiryMin:       getEnvAsInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		RefreshExpiryMin:      getEnvAsInt("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiryMin),
		VerificationExpiryMin: getEnvAsInt("VERIFICATION_TOKEN_EXPIRY", DefaultVerificationTokenExpiryMin),
		ResetExpiryMin:        getEnvAsInt("RESET_TOKEN_EXPIRY", DefaultResetTokenExpiryMin),
		PhoneExpiryMin:        getEnvAsInt("PHONE_TOKEN_EXPIRY", DefaultPhoneTokenExpiryMin),

		RevocationRetentionMin: getEnvAsInt("REVOCATION_RETENTION_MINUTES", DefaultRevocationRetentionMin),
		BcryptCost:             getEnvAsInt("BCRYPT_COST", DefaultBcryptCost),

		AppURL:      getEnv("APP_URL", "http://localhost:"+getEnv("PORT", DefaultPort)),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		MailHost:        getEnv("MAIL_HOST", ""),
		MailPort:        getEnvAsInt("MAIL_PORT", 587),
		MailUsername:    getEnv("MAIL_USERNAME", ""),
		MailPassword:    getEnv("MAIL_PASSWORD", ""),
		MailFromName:    getEnv("MAIL_FROM_NAME", "LocationsGuard"),
		MailFromAddress: getEnv("MAIL_FROM_ADDRESS", ""),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
	}
}

func envFileSuffix(env string) string {
	if env == "production" {
		return "prod"
	}
	return "dev"
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
