package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/viper"

	"stakeMetrics/internal/aggregate"
)

// ParamsConfig overrides engine constants. Empty fields keep the defaults.
type ParamsConfig struct {
	BasisPointsDivisor string
	HoursPerYear       string
	Precision          string
	TokenUnit          string
	DustLPAmount       string
	// RewardTokens maps a staking key to "native" or "xgmt".
	RewardTokens map[string]string
}

func readParams(v *viper.Viper) ParamsConfig {
	return ParamsConfig{
		BasisPointsDivisor: v.GetString("params.basis-points-divisor"),
		HoursPerYear:       v.GetString("params.hours-per-year"),
		Precision:          v.GetString("params.precision"),
		TokenUnit:          v.GetString("params.token-unit"),
		DustLPAmount:       v.GetString("params.dust-lp-amount"),
		RewardTokens:       getStringMap(v, "params.reward-tokens"),
	}
}

// AggregateParams applies the overrides on top of aggregate.DefaultParams.
func (c ParamsConfig) AggregateParams() (aggregate.Params, error) {
	p := aggregate.DefaultParams()

	ints := []struct {
		name  string
		value string
		dst   **big.Int
	}{
		{"basis-points-divisor", c.BasisPointsDivisor, &p.BasisPointsDivisor},
		{"hours-per-year", c.HoursPerYear, &p.HoursPerYear},
		{"precision", c.Precision, &p.Precision},
		{"token-unit", c.TokenUnit, &p.TokenUnit},
		{"dust-lp-amount", c.DustLPAmount, &p.DustLPAmount},
	}
	for _, i := range ints {
		if i.value == "" {
			continue
		}
		n, ok := new(big.Int).SetString(i.value, 0)
		if !ok {
			return aggregate.Params{}, fmt.Errorf("params.%s: invalid integer %q", i.name, i.value)
		}
		*i.dst = n
	}

	if len(c.RewardTokens) > 0 {
		tokens := make(map[string]aggregate.RewardToken, len(p.RewardTokens))
		for key, token := range p.RewardTokens {
			tokens[key] = token
		}
		// viper lowercases map keys read from config files
		canonical := make(map[string]string, len(p.Layout.StakingKeys))
		for _, key := range p.Layout.StakingKeys {
			canonical[strings.ToLower(key)] = key
		}
		for key, name := range c.RewardTokens {
			stakingKey, ok := canonical[strings.ToLower(key)]
			if !ok {
				return aggregate.Params{}, fmt.Errorf("params.reward-tokens: unknown staking key %s", key)
			}
			token, err := aggregate.ParseRewardToken(strings.ToLower(name))
			if err != nil {
				return aggregate.Params{}, fmt.Errorf("params.reward-tokens.%s: %w", key, err)
			}
			tokens[stakingKey] = token
		}
		p.RewardTokens = tokens
	}

	if err := p.Validate(); err != nil {
		return aggregate.Params{}, fmt.Errorf("params: %w", err)
	}
	return p, nil
}
