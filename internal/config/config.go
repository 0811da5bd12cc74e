package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The rule-file paths point at the JSON files the
// allocation engine loads at the start of every run, so edits to the rules
// take effect without a restart.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret used to sign JWTs
	AccessTTLMin     int    // access token time-to-live in minutes
	OperatorUser     string // dashboard operator username
	OperatorPassHash string // bcrypt hash of the operator password
	SeatingRulesPath string // path to seating_rules.json
	HierarchyPath    string // path to category_hierarchy.json
	MappingDir       string // directory of per-source category mapping files
	RunMode          string // "assign" persists claims, "suggest" is a dry run
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
		OperatorUser:     must("OPERATOR_USER"),
		OperatorPassHash: must("OPERATOR_PASSWORD_HASH"),
		SeatingRulesPath: getenv("SEATING_RULES_PATH", "config/seating_rules.json"),
		HierarchyPath:    getenv("CATEGORY_HIERARCHY_PATH", "config/category_hierarchy.json"),
		MappingDir:       getenv("CATEGORY_MAPPING_DIR", "config/category_mapping"),
		RunMode:          getenv("RUN_MODE", "assign"),
	}
	if cfg.RunMode != "assign" && cfg.RunMode != "suggest" {
		log.Fatalf("invalid RUN_MODE: %q (want assign or suggest)", cfg.RunMode)
	}
	return cfg
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
