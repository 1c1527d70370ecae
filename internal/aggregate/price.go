package aggregate

import (
	"math/big"

	"stakeMetrics/internal/model"
)

// Prices are spot USD prices per token unit, scaled by Params.Precision.
type Prices struct {
	Xgmt     *big.Int
	GmtUsdg  *big.Int
	XgmtUsdg *big.Int
	AutoUsdg *big.Int
	Bnb      *big.Int
}

func (p Prices) toModel() model.Prices {
	return model.Prices{
		Xgmt:     model.Defined(p.Xgmt),
		GmtUsdg:  model.Defined(p.GmtUsdg),
		XgmtUsdg: model.Defined(p.XgmtUsdg),
		AutoUsdg: model.Defined(p.AutoUsdg),
		Bnb:      model.Defined(p.Bnb),
	}
}

// DerivePrices computes spot prices from pair reserves and LP supplies. It
// reports false when a required pair or supply key is absent, or when the
// reference pair has an empty asset reserve. The reference pair is assumed to
// be live and carries no zero-guard of its own.
func DerivePrices(pairs model.PairSet, supplies model.BalanceSupplySet, p Params) (Prices, bool) {
	var l lookup
	xgmtPair := need(&l, pairs, "xgmtUsdg")
	gmtPair := need(&l, pairs, "gmtUsdg")
	autoPair := need(&l, pairs, "autoUsdg")
	refPair := need(&l, pairs, "bnbBusd")
	gmtLP := need(&l, supplies, "gmtUsdgPair")
	xgmtLP := need(&l, supplies, "xgmtUsdgPair")
	autoLP := need(&l, supplies, "autoUsdgPair")
	if l.missing {
		return Prices{}, false
	}
	if isZero(refPair.Reserve0) {
		return Prices{}, false
	}

	return Prices{
		Xgmt:     SpotPrice(xgmtPair, p),
		GmtUsdg:  LPPrice(gmtPair, gmtLP.Supply, p),
		XgmtUsdg: LPPrice(xgmtPair, xgmtLP.Supply, p),
		AutoUsdg: LPPrice(autoPair, autoLP.Supply, p),
		Bnb:      quo(mul(refPair.Reserve1, p.Precision), refPair.Reserve0),
	}, true
}

// SpotPrice is reserve1 * PRECISION / reserve0, or zero for an empty asset reserve.
func SpotPrice(pair model.PairReserves, p Params) *big.Int {
	if isZero(pair.Reserve0) {
		return new(big.Int)
	}
	return quo(mul(pair.Reserve1, p.Precision), pair.Reserve0)
}

// LPPrice values one LP token at twice its share of the quote reserve, or zero
// when no LP tokens exist.
func LPPrice(pair model.PairReserves, lpSupply *big.Int, p Params) *big.Int {
	if isZero(lpSupply) {
		return new(big.Int)
	}
	return quo(mul(pair.Reserve1, p.Precision, big.NewInt(2)), lpSupply)
}
