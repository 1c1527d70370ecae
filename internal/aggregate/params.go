package aggregate

import (
	"fmt"
	"math/big"

	"stakeMetrics/internal/snapshot"
)

// RewardToken identifies the token a reward tracker pays out in.
type RewardToken int

const (
	// RewardNative trackers pay the chain's native token, priced via the reference pair.
	RewardNative RewardToken = iota
	// RewardXgmt trackers pay xGMT.
	RewardXgmt
)

func (t RewardToken) String() string {
	switch t {
	case RewardNative:
		return "native"
	case RewardXgmt:
		return "xgmt"
	default:
		return fmt.Sprintf("reward(%d)", int(t))
	}
}

// ParseRewardToken accepts the names produced by String.
func ParseRewardToken(name string) (RewardToken, error) {
	switch name {
	case "native":
		return RewardNative, nil
	case "xgmt":
		return RewardXgmt, nil
	default:
		return 0, fmt.Errorf("unknown reward token: %s", name)
	}
}

// Pool names used to group reward trackers.
const (
	poolNdol     = "ndol"
	poolXgmt     = "xgmt"
	poolGmtUsdg  = "gmtUsdg"
	poolXgmtUsdg = "xgmtUsdg"
	poolAutoUsdg = "autoUsdg"
)

// Params carries every constant the derivation depends on.
type Params struct {
	BasisPointsDivisor *big.Int
	HoursPerYear       *big.Int
	Precision          *big.Int
	TokenUnit          *big.Int
	DustLPAmount       *big.Int

	Layout snapshot.Layout

	// RewardTokens maps a staking key to the token its tracker pays.
	RewardTokens map[string]RewardToken
	// PoolTrackers maps a pool to the staking keys whose rewards it earns.
	PoolTrackers map[string][]string
}

// DefaultParams returns the production constants.
func DefaultParams() Params {
	return Params{
		BasisPointsDivisor: big.NewInt(10000),
		HoursPerYear:       big.NewInt(8760),
		Precision:          expandDecimals(1, 30),
		TokenUnit:          expandDecimals(1, 18),
		DustLPAmount:       expandDecimals(1, 16),
		Layout:             snapshot.DefaultLayout(),
		RewardTokens: map[string]RewardToken{
			"ndol":               RewardNative,
			"xgmt":               RewardNative,
			"gmtUsdgFarmXgmt":    RewardXgmt,
			"gmtUsdgFarmNative":  RewardNative,
			"xgmtUsdgFarmXgmt":   RewardXgmt,
			"xgmtUsdgFarmNative": RewardNative,
			"autoUsdgFarmXgmt":   RewardXgmt,
			"autoUsdgFarmNative": RewardNative,
		},
		PoolTrackers: map[string][]string{
			poolNdol:     {"ndol"},
			poolXgmt:     {"xgmt"},
			poolGmtUsdg:  {"gmtUsdgFarmXgmt", "gmtUsdgFarmNative"},
			poolXgmtUsdg: {"xgmtUsdgFarmXgmt", "xgmtUsdgFarmNative"},
			poolAutoUsdg: {"autoUsdgFarmXgmt", "autoUsdgFarmNative"},
		},
	}
}

// Validate rejects parameter sets that would divide by zero.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value *big.Int
	}{
		{"basis points divisor", p.BasisPointsDivisor},
		{"hours per year", p.HoursPerYear},
		{"precision", p.Precision},
		{"token unit", p.TokenUnit},
	}
	for _, c := range checks {
		if c.value == nil || c.value.Sign() <= 0 {
			return fmt.Errorf("%s must be positive", c.name)
		}
	}
	if p.DustLPAmount == nil || p.DustLPAmount.Sign() < 0 {
		return fmt.Errorf("dust lp amount must not be negative")
	}
	for _, rule := range aprRules {
		if _, ok := p.PoolTrackers[rule.pool]; !ok {
			return fmt.Errorf("pool %s has no tracker mapping", rule.pool)
		}
	}
	for pool, trackers := range p.PoolTrackers {
		for _, tracker := range trackers {
			if _, ok := p.RewardTokens[tracker]; !ok {
				return fmt.Errorf("pool %s: tracker %s has no reward token", pool, tracker)
			}
		}
	}
	return nil
}

func expandDecimals(n int64, decimals int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil)
	return scale.Mul(scale, big.NewInt(n))
}
