package config

import "github.com/spf13/pflag"

// ServeConfig holds configuration for the standalone HTTP API.
type ServeConfig struct {
	HTTPAddr string
	PGDSN    string
	// ChainID and Account select the Postgres rows served when no cache is set.
	ChainID  uint64
	Account  string
	LogLevel string
	Redis    Redis
	Params   ParamsConfig
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"http-addr":    ":8080",
		"redis-prefix": "stakemetrics",
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		HTTPAddr: v.GetString("http-addr"),
		PGDSN:    v.GetString("pg-dsn"),
		ChainID:  v.GetUint64("chain-id"),
		Account:  v.GetString("account"),
		LogLevel: v.GetString("log-level"),
		Redis: Redis{
			URL:      v.GetString("redis-url"),
			Password: v.GetString("redis-password"),
			Prefix:   v.GetString("redis-prefix"),
			TTL:      v.GetDuration("redis-ttl"),
		},
		Params: readParams(v),
	}

	return cfg, nil
}
