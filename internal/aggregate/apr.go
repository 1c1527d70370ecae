package aggregate

import (
	"math/big"

	"stakeMetrics/internal/model"
)

// onZero is what an APR becomes when one of its guard fields is zero.
type onZero int

const (
	zeroApr onZero = iota
	undefinedApr
)

type aprGuard struct {
	field  string
	onZero onZero
}

// aprRule describes one APR output. Guards are checked in order and the first
// zero guard decides the result.
type aprRule struct {
	output string
	pool   string
	guards []aprGuard
	// divisor is the field the scaled annual rewards are divided by.
	divisor string
	// tokenDenominated rules divide by a token amount instead of a USD value
	// and rescale the quotient back into USD terms.
	tokenDenominated bool
}

var aprRules = []aprRule{
	{
		output:           "ndolApr",
		pool:             poolNdol,
		guards:           []aprGuard{{"ndolTotalStaked", undefinedApr}},
		divisor:          "ndolTotalStaked",
		tokenDenominated: true,
	},
	{
		output: "xgmtApr",
		pool:   poolXgmt,
		guards: []aprGuard{
			{"xgmtSupplyUsd", zeroApr},
			{"xgmtTotalStakedUsd", zeroApr},
		},
		divisor: "xgmtTotalStakedUsd",
	},
	{
		output: "gmtUsdgApr",
		pool:   poolGmtUsdg,
		guards: []aprGuard{
			{"gmtUsdgSupplyUsd", zeroApr},
			{"gmtUsdgFarmSupplyUsd", undefinedApr},
		},
		divisor: "gmtUsdgSupplyUsd",
	},
	{
		output:  "xgmtUsdgApr",
		pool:    poolXgmtUsdg,
		guards:  []aprGuard{{"xgmtUsdgFarmSupplyUsd", undefinedApr}},
		divisor: "xgmtUsdgFarmSupplyUsd",
	},
	{
		output:  "autoUsdgApr",
		pool:    poolAutoUsdg,
		guards:  []aprGuard{{"autoUsdgFarmSupplyUsd", zeroApr}},
		divisor: "autoUsdgFarmSupplyUsd",
	},
}

// applyAprRules fills every APR field of out. All fields the rules read must
// already be set.
func applyAprRules(out *model.ProcessedMetrics, annual map[string]*big.Int, p Params) {
	for _, rule := range aprRules {
		out.Set(rule.output, evalApr(*out, rule, annual[rule.pool], p))
	}
}

func evalApr(m model.ProcessedMetrics, rule aprRule, annual *big.Int, p Params) model.Value {
	for _, g := range rule.guards {
		v, _ := m.Get(g.field)
		n, _ := v.Int()
		if !isZero(n) {
			continue
		}
		if g.onZero == undefinedApr {
			return model.Undefined()
		}
		return model.Defined(new(big.Int))
	}

	dv, _ := m.Get(rule.divisor)
	divisor, ok := dv.Int()
	if !ok || divisor.Sign() == 0 {
		return model.Undefined()
	}

	apr := quo(mul(annual, p.BasisPointsDivisor), divisor)
	if rule.tokenDenominated {
		apr = quo(mul(apr, p.TokenUnit), p.Precision)
	}
	return model.Defined(apr)
}
