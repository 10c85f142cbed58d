// Package config loads and validates environment variables at startup.
// Fail-fast: a malformed variable stops the process with an error. Nothing is
// required; without DATABASE_URL the service runs in demo mode.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"factoryflow/quote-service/internal/model"
)

// Config holds all runtime configuration for the quote service.
type Config struct {
	Port           string
	GRPCPort       string
	DatabaseURL    string // empty ⇒ demo mode
	RedisURL       string // empty ⇒ events disabled
	LocalStorePath string
	JobsTable      string
	RemoteTimeout  time.Duration
	ProbeInterval  time.Duration
	AutoSetupDB    bool   // create the jobs table when the probe finds it missing
	PolicyRole     string // role granted insert/select by setup-db, "" for none
	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAIModel    string
	CatalogFile    string
	// Pricing is the default pricing configuration: the built-in one, or the
	// catalog file when set.
	Pricing model.PricingConfig
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	remoteTimeout, err := durationEnv("REMOTE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	probeInterval, err := durationEnv("PROBE_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	autoSetup := false
	if s := os.Getenv("AUTO_SETUP_DB"); s != "" {
		autoSetup, err = strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("AUTO_SETUP_DB must be a boolean, got %q", s)
		}
	}

	policyRole, ok := os.LookupEnv("JOBS_POLICY_ROLE")
	if !ok {
		policyRole = "anon"
	}

	catalogFile := os.Getenv("QUOTE_CATALOG_FILE")
	pricing := model.DefaultPricingConfig()
	if catalogFile != "" {
		pricing, err = LoadCatalog(catalogFile)
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		Port:           envOr("QUOTE_PORT", "8083"),
		GRPCPort:       envOr("QUOTE_GRPC_PORT", "9083"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		LocalStorePath: envOr("LOCAL_STORE_PATH", "factoryflow.db"),
		JobsTable:      envOr("JOBS_TABLE", "jobs"),
		RemoteTimeout:  remoteTimeout,
		ProbeInterval:  probeInterval,
		AutoSetupDB:    autoSetup,
		PolicyRole:     policyRole,
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		CatalogFile:    catalogFile,
		Pricing:        pricing,
	}, nil
}

// DemoOnly reports whether no remote database is configured.
func (c *Config) DemoOnly() bool { return c.DatabaseURL == "" }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}
