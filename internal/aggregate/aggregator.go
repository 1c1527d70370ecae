package aggregate

import (
	"math/big"

	"stakeMetrics/internal/model"
	"stakeMetrics/internal/snapshot"
)

// Inputs are the decoded structures the aggregator combines. A nil map or a
// nil ExternalSupply marks that input as absent.
type Inputs struct {
	Balances       model.BalanceSupplySet
	Staking        model.StakingSet
	TotalStaked    model.TotalStakedSet
	Pairs          model.PairSet
	ExternalSupply *big.Int
}

func (in Inputs) complete() bool {
	return in.Balances != nil &&
		in.Staking != nil &&
		in.TotalStaked != nil &&
		in.Pairs != nil &&
		in.ExternalSupply != nil
}

// Decode splits a raw snapshot set into Inputs. Inputs that are absent or
// have the wrong length stay nil.
func Decode(set model.SnapshotSet, p Params) Inputs {
	var in Inputs
	if balances, ok := snapshot.DecodeBalances(set.Balances, p.Layout); ok {
		in.Balances = balances
	}
	if staking, ok := snapshot.DecodeStaking(set.Staking, p.Layout); ok {
		in.Staking = staking
	}
	if totals, ok := snapshot.DecodeTotalStaked(set.TotalStaked, p.Layout); ok {
		in.TotalStaked = totals
	}
	if pairs, ok := snapshot.DecodePairs(set.Pairs, p.Layout); ok {
		in.Pairs = pairs
	}
	if set.ExternalSupply != nil {
		in.ExternalSupply = new(big.Int).Set(set.ExternalSupply)
	}
	return in
}

// Process decodes set and aggregates it in one pass.
func Process(set model.SnapshotSet, p Params) model.ProcessedMetrics {
	return Aggregate(Decode(set, p), p)
}

// Aggregate derives the full metrics record. It returns the empty record when
// any input is absent or a key the derivation reads is missing.
func Aggregate(in Inputs, p Params) model.ProcessedMetrics {
	if !in.complete() {
		return model.ProcessedMetrics{}
	}

	prices, ok := DerivePrices(in.Pairs, in.Balances, p)
	if !ok {
		return model.ProcessedMetrics{}
	}

	var l lookup
	ndolBal := need(&l, in.Balances, "ndol")
	xgmtBal := need(&l, in.Balances, "xgmt")
	gmtPair := need(&l, in.Balances, "gmtUsdgPair")
	gmtFarm := need(&l, in.Balances, "gmtUsdgFarm")
	xgmtPair := need(&l, in.Balances, "xgmtUsdgPair")
	xgmtFarm := need(&l, in.Balances, "xgmtUsdgFarm")
	autoPair := need(&l, in.Balances, "autoUsdgPair")
	autoFarm := need(&l, in.Balances, "autoUsdgFarm")
	ndolStaked := need(&l, in.TotalStaked, "ndol")
	xgmtStaked := need(&l, in.TotalStaked, "xgmt")

	ndolStake := need(&l, in.Staking, "ndol")
	xgmtStake := need(&l, in.Staking, "xgmt")
	gmtXgmt := need(&l, in.Staking, "gmtUsdgFarmXgmt")
	gmtNative := need(&l, in.Staking, "gmtUsdgFarmNative")
	xgmtXgmt := need(&l, in.Staking, "xgmtUsdgFarmXgmt")
	xgmtNative := need(&l, in.Staking, "xgmtUsdgFarmNative")
	autoXgmt := need(&l, in.Staking, "autoUsdgFarmXgmt")
	autoNative := need(&l, in.Staking, "autoUsdgFarmNative")
	if l.missing {
		return model.ProcessedMetrics{}
	}

	annual := make(map[string]*big.Int, len(aprRules))
	for _, rule := range aprRules {
		if _, ok := p.PoolTrackers[rule.pool]; !ok {
			return model.ProcessedMetrics{}
		}
		rewards, ok := PoolAnnualRewards(rule.pool, in.Staking, prices, p)
		if !ok {
			return model.ProcessedMetrics{}
		}
		annual[rule.pool] = rewards
	}

	out := model.ProcessedMetrics{Ready: true, Prices: prices.toModel()}
	d := model.Defined

	out.NdolBalance = d(orZero(ndolBal.Balance))
	out.NdolSupply = d(orZero(ndolBal.Supply))
	out.NdolTotalStaked = d(orZero(ndolStaked))
	out.NdolTotalStakedUsd = d(usdValue(ndolStaked, p.Precision, p))
	out.NdolSupplyUsd = d(usdValue(ndolBal.Supply, p.Precision, p))
	out.NdolRewards = d(orZero(ndolStake.Claimable))

	out.XgmtBalance = d(orZero(xgmtBal.Balance))
	out.XgmtBalanceUsd = d(usdValue(xgmtBal.Balance, prices.Xgmt, p))
	out.XgmtSupply = d(in.ExternalSupply)
	out.XgmtTotalStaked = d(orZero(xgmtStaked))
	out.XgmtTotalStakedUsd = d(usdValue(xgmtStaked, prices.Xgmt, p))
	out.XgmtSupplyUsd = d(usdValue(in.ExternalSupply, prices.Xgmt, p))
	out.XgmtRewards = d(orZero(xgmtStake.Claimable))

	out.GmtUsdgFarmBalance = d(orZero(gmtFarm.Balance))
	out.GmtUsdgBalance = d(orZero(gmtPair.Balance))
	out.GmtUsdgBalanceUsd = d(usdValue(gmtPair.Balance, prices.GmtUsdg, p))
	out.GmtUsdgSupply = d(orZero(gmtPair.Supply))
	out.GmtUsdgSupplyUsd = d(usdValue(gmtPair.Supply, prices.GmtUsdg, p))
	out.GmtUsdgStaked = d(orZero(gmtFarm.Balance))
	out.GmtUsdgStakedUsd = d(usdValue(gmtFarm.Balance, prices.GmtUsdg, p))
	out.GmtUsdgFarmSupplyUsd = d(usdValue(gmtFarm.Supply, prices.GmtUsdg, p))
	out.GmtUsdgXgmtRewards = d(orZero(gmtXgmt.Claimable))
	out.GmtUsdgNativeRewards = d(orZero(gmtNative.Claimable))
	out.GmtUsdgTotalRewards = d(add(gmtXgmt.Claimable, gmtNative.Claimable))
	out.GmtUsdgTotalStaked = d(orZero(gmtFarm.Supply))
	out.GmtUsdgTotalStakedUsd = d(usdValue(gmtFarm.Supply, prices.GmtUsdg, p))

	out.XgmtUsdgFarmBalance = d(orZero(xgmtFarm.Balance))
	out.XgmtUsdgBalance = d(orZero(xgmtPair.Balance))
	out.XgmtUsdgBalanceUsd = d(usdValue(xgmtPair.Balance, prices.XgmtUsdg, p))
	out.XgmtUsdgSupply = d(orZero(xgmtPair.Supply))
	out.XgmtUsdgSupplyUsd = d(usdValue(xgmtPair.Supply, prices.XgmtUsdg, p))
	out.XgmtUsdgStaked = d(orZero(xgmtFarm.Balance))
	out.XgmtUsdgStakedUsd = d(usdValue(xgmtFarm.Balance, prices.XgmtUsdg, p))
	out.XgmtUsdgFarmSupplyUsd = d(usdValue(xgmtFarm.Supply, prices.XgmtUsdg, p))
	out.XgmtUsdgXgmtRewards = d(orZero(xgmtXgmt.Claimable))
	out.XgmtUsdgNativeRewards = d(orZero(xgmtNative.Claimable))
	out.XgmtUsdgTotalRewards = d(add(xgmtXgmt.Claimable, xgmtNative.Claimable))
	out.XgmtUsdgTotalStaked = d(orZero(xgmtFarm.Supply))
	out.XgmtUsdgTotalStakedUsd = d(usdValue(xgmtFarm.Supply, prices.XgmtUsdg, p))

	out.AutoUsdgBalance = d(orZero(autoPair.Balance))
	out.AutoUsdgFarmBalance = d(orZero(autoFarm.Balance))
	out.AutoUsdgBalanceUsd = d(usdValue(autoPair.Balance, prices.AutoUsdg, p))
	out.AutoUsdgStaked = d(orZero(autoFarm.Balance))
	out.AutoUsdgStakedUsd = d(usdValue(autoFarm.Balance, prices.AutoUsdg, p))
	out.AutoUsdgFarmSupplyUsd = d(usdValue(autoFarm.Supply, prices.AutoUsdg, p))
	out.AutoUsdgXgmtRewards = d(orZero(autoXgmt.Claimable))
	out.AutoUsdgNativeRewards = d(orZero(autoNative.Claimable))
	out.AutoUsdgTotalRewards = d(add(autoXgmt.Claimable, autoNative.Claimable))
	out.AutoUsdgTotalStaked = d(orZero(autoFarm.Supply))
	out.AutoUsdgTotalStakedUsd = d(usdValue(autoFarm.Supply, prices.AutoUsdg, p))

	out.TotalStakedUsd = d(add(
		usdValue(ndolStaked, p.Precision, p),
		usdValue(xgmtStaked, prices.Xgmt, p),
		usdValue(gmtFarm.Supply, prices.GmtUsdg, p),
		usdValue(xgmtFarm.Supply, prices.XgmtUsdg, p),
		usdValue(autoFarm.Supply, prices.AutoUsdg, p),
	))

	applyAprRules(&out, annual, p)
	return out
}

// lookup records whether any required key was absent.
type lookup struct {
	missing bool
}

func need[V any](l *lookup, set map[string]V, key string) V {
	v, ok := set[key]
	if !ok {
		l.missing = true
	}
	return v
}
