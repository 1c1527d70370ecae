package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"stakeMetrics/internal/model"
)

// Placeholder is shown for values that cannot be determined yet.
const Placeholder = "..."

const (
	tokenDecimals = 18
	usdDecimals   = 30
)

// Display renders every field of m as a human readable decimal rounded to
// places. Token amounts use 18 decimals, USD values and prices 30, and APRs are
// shown as percentages. The empty record renders as nil.
func Display(m model.ProcessedMetrics, places int32) map[string]string {
	if !m.Ready {
		return nil
	}
	out := make(map[string]string, len(m.Fields())+5)
	for _, f := range m.Fields() {
		out[f.Name] = formatField(f.Name, f.Value, places)
	}
	prices := []model.Field{
		{Name: "xgmtPrice", Value: m.Prices.Xgmt},
		{Name: "gmtUsdgPrice", Value: m.Prices.GmtUsdg},
		{Name: "xgmtUsdgPrice", Value: m.Prices.XgmtUsdg},
		{Name: "autoUsdgPrice", Value: m.Prices.AutoUsdg},
		{Name: "bnbPrice", Value: m.Prices.Bnb},
	}
	for _, f := range prices {
		out[f.Name] = formatUnits(f.Value, usdDecimals, places)
	}
	return out
}

func formatField(name string, v model.Value, places int32) string {
	switch {
	case strings.HasSuffix(name, "Apr"):
		n, ok := v.Int()
		if !ok {
			return Placeholder
		}
		// basis points: 10000 = 100%
		return decimal.NewFromBigInt(n, -2).StringFixed(places) + "%"
	case strings.HasSuffix(name, "Usd"):
		return formatUnits(v, usdDecimals, places)
	default:
		return formatUnits(v, tokenDecimals, places)
	}
}

func formatUnits(v model.Value, decimals int32, places int32) string {
	n, ok := v.Int()
	if !ok {
		return Placeholder
	}
	return decimal.NewFromBigInt(n, -decimals).StringFixed(places)
}

// lpPools are the pools whose LP tokens can be staked into a farm, with the
// output field holding the wallet's unstaked LP balance.
var lpPools = []struct {
	pool    string
	balance string
}{
	{poolGmtUsdg, "gmtUsdgBalance"},
	{poolXgmtUsdg, "xgmtUsdgBalance"},
	{poolAutoUsdg, "autoUsdgBalance"},
}

// UnstakedLPWarnings lists the pools where the wallet holds more unstaked LP
// tokens than the dust threshold.
func UnstakedLPWarnings(m model.ProcessedMetrics, p Params) []string {
	var pools []string
	for _, lp := range lpPools {
		v, ok := m.Get(lp.balance)
		if !ok {
			continue
		}
		n, ok := v.Int()
		if ok && n.Cmp(p.DustLPAmount) > 0 {
			pools = append(pools, lp.pool)
		}
	}
	return pools
}

var claimFields = []struct {
	pool  string
	field string
}{
	{poolNdol, "ndolRewards"},
	{poolXgmt, "xgmtRewards"},
	{poolGmtUsdg, "gmtUsdgTotalRewards"},
	{poolXgmtUsdg, "xgmtUsdgTotalRewards"},
	{poolAutoUsdg, "autoUsdgTotalRewards"},
}

// ClaimableFarms lists the pools with a positive pending reward total.
func ClaimableFarms(m model.ProcessedMetrics) []string {
	var pools []string
	for _, c := range claimFields {
		v, ok := m.Get(c.field)
		if !ok {
			continue
		}
		if n, ok := v.Int(); ok && n.Sign() > 0 {
			pools = append(pools, c.pool)
		}
	}
	return pools
}
