package aggregate

import (
	"math/big"

	"stakeMetrics/internal/model"
)

// AnnualRewardsUsd annualizes an hourly emission rate into a PRECISION-scaled
// USD figure: tokensPerInterval * price * HOURS_PER_YEAR / TokenUnit.
func AnnualRewardsUsd(entry model.StakingEntry, price *big.Int, p Params) *big.Int {
	return quo(mul(entry.TokensPerInterval, price, p.HoursPerYear), p.TokenUnit)
}

// rewardPrice resolves the price a tracker's rewards are valued at.
func rewardPrice(token RewardToken, prices Prices) *big.Int {
	if token == RewardXgmt {
		return prices.Xgmt
	}
	return prices.Bnb
}

// PoolAnnualRewards sums the annualized USD rewards of every tracker feeding
// pool. The second result reports whether every tracker was present.
func PoolAnnualRewards(pool string, staking model.StakingSet, prices Prices, p Params) (*big.Int, bool) {
	total := new(big.Int)
	for _, tracker := range p.PoolTrackers[pool] {
		entry, ok := staking[tracker]
		if !ok {
			return nil, false
		}
		total.Add(total, AnnualRewardsUsd(entry, rewardPrice(p.RewardTokens[tracker], prices), p))
	}
	return total, true
}
