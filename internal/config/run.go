package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Storage selects where records are persisted. Empty fields disable a sink.
type Storage struct {
	Out       string
	PGDSN     string
	StateFile string
	StateName string
}

// Redis holds the shared cache connection settings.
type Redis struct {
	URL      string
	Password string
	Prefix   string
	TTL      time.Duration
}

// RunConfig holds configuration for the run command.
type RunConfig struct {
	Common
	Storage
	Redis Redis

	PollInterval time.Duration
	ClaimHold    time.Duration
	// HTTPAddr serves the API next to the poller when set.
	HTTPAddr string
}

// Load merges config file, environment variables, and flags into RunConfig.
func Load(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"poll-interval": 3 * time.Second,
		"claim-hold":    10 * time.Minute,
		"state-file":    "./data/state.json",
		"state-name":    "stake-poller",
		"redis-prefix":  "stakemetrics",
	})
	if err != nil {
		return RunConfig{}, err
	}

	cfg := RunConfig{
		Common: readCommon(v),
		Storage: Storage{
			Out:       v.GetString("out"),
			PGDSN:     v.GetString("pg-dsn"),
			StateFile: v.GetString("state-file"),
			StateName: v.GetString("state-name"),
		},
		Redis: Redis{
			URL:      v.GetString("redis-url"),
			Password: v.GetString("redis-password"),
			Prefix:   v.GetString("redis-prefix"),
			TTL:      v.GetDuration("redis-ttl"),
		},
		PollInterval: v.GetDuration("poll-interval"),
		ClaimHold:    v.GetDuration("claim-hold"),
		HTTPAddr:     v.GetString("http-addr"),
	}

	return cfg, nil
}
