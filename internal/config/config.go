// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The create-password secret is the
// process-wide signing key for the outer layer of create-password tokens;
// per-user token secrets live in the database, not here.
type Config struct {
	Env                  string // application environment (e.g. "dev", "prod")
	Port                 string // HTTP port to listen on
	MongoURI             string // MongoDB connection string
	MongoDB              string // database name
	TokenTTLMin          int    // access/refresh token time-to-live in minutes
	CreatePasswordSecret string // process-wide secret for create-password tokens
	CreatePasswordTTLMin int    // create-password token time-to-live in minutes
	BcryptCost           int    // bcrypt cost for password hashing
}

// Load reads configuration from environment variables. Missing required
// values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                  must("APP_ENV"),
		Port:                 must("APP_PORT"),
		MongoURI:             must("MONGO_URI"),
		MongoDB:              must("MONGO_DB"),
		TokenTTLMin:          mustInt("TOKEN_TTL_MIN"),
		CreatePasswordSecret: must("CREATE_PASSWORD_SECRET"),
		CreatePasswordTTLMin: mustInt("CREATE_PASSWORD_TTL_MIN"),
		BcryptCost:           mustInt("BCRYPT_COST"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
