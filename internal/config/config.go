package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"stakeMetrics/internal/reader"
)

const envPrefix = "STAKEMETRICS"

// Common holds the settings every chain-reading command shares.
type Common struct {
	RPCURL       string
	Account      string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
	Contracts    reader.ContractsConfig
	Params       ParamsConfig
}

// newViper merges defaults, config file, environment variables and flags.
// Nested keys map to env vars with dots and dashes replaced by underscores,
// so contracts.balance-tokens is read from STAKEMETRICS_CONTRACTS_BALANCE_TOKENS.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func readCommon(v *viper.Viper) Common {
	return Common{
		RPCURL:       v.GetString("rpc"),
		Account:      v.GetString("account"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
		Contracts: reader.ContractsConfig{
			Reader:           v.GetString("contracts.reader"),
			Factory:          v.GetString("contracts.factory"),
			Xgmt:             v.GetString("contracts.xgmt"),
			BalanceTokens:    getStringSlice(v, "contracts.balance-tokens"),
			YieldTrackers:    getStringSlice(v, "contracts.yield-trackers"),
			YieldTokens:      getStringSlice(v, "contracts.yield-tokens"),
			PairTokens:       getStringSlice(v, "contracts.pair-tokens"),
			ExcludedAccounts: getStringSlice(v, "contracts.excluded-accounts"),
		},
		Params: readParams(v),
	}
}

// Validate checks the fields every chain-reading command needs.
func (c Common) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.Account == "" {
		return fmt.Errorf("account is required")
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// parseStringMap reads comma-separated key=value pairs.
func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	for _, pair := range strings.Split(input, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
