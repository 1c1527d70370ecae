package snapshot

import (
	"math/big"

	"stakeMetrics/internal/model"
)

// DecodeChunks splits raw into groups of width slots, one per key in order.
// It reports false unless raw is non-empty and holds exactly len(keys)*width
// slots. Values are passed through unchanged.
func DecodeChunks[T any](raw model.RawSnapshot, keys []string, width int, build func(chunk []*big.Int) T) (map[string]T, bool) {
	if width <= 0 || len(raw) == 0 || len(raw) != len(keys)*width {
		return nil, false
	}
	out := make(map[string]T, len(keys))
	for i, key := range keys {
		out[key] = build(raw[i*width : (i+1)*width])
	}
	return out, true
}

// DecodeBalances reads (balance, supply) pairs.
func DecodeBalances(raw model.RawSnapshot, layout Layout) (model.BalanceSupplySet, bool) {
	return DecodeChunks(raw, layout.BalanceKeys, balanceWidth, func(chunk []*big.Int) model.BalanceSupply {
		return model.BalanceSupply{Balance: chunk[0], Supply: chunk[1]}
	})
}

// DecodeStaking reads (claimable, tokensPerInterval) pairs per reward tracker.
func DecodeStaking(raw model.RawSnapshot, layout Layout) (model.StakingSet, bool) {
	return DecodeChunks(raw, layout.StakingKeys, stakingWidth, func(chunk []*big.Int) model.StakingEntry {
		return model.StakingEntry{Claimable: chunk[0], TokensPerInterval: chunk[1]}
	})
}

// DecodeTotalStaked reads one total per yield token.
func DecodeTotalStaked(raw model.RawSnapshot, layout Layout) (model.TotalStakedSet, bool) {
	return DecodeChunks(raw, layout.TotalStakedKeys, totalStakedWidth, func(chunk []*big.Int) *big.Int {
		return chunk[0]
	})
}

// DecodePairs reads (reserve0, reserve1) per pool.
func DecodePairs(raw model.RawSnapshot, layout Layout) (model.PairSet, bool) {
	return DecodeChunks(raw, layout.PairKeys, pairWidth, func(chunk []*big.Int) model.PairReserves {
		return model.PairReserves{Reserve0: chunk[0], Reserve1: chunk[1]}
	})
}
