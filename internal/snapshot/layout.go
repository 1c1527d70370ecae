package snapshot

// Layout holds the ordered key lists that give raw reader output its meaning.
// Key i of a list always consumes the slots at offset i*width.
type Layout struct {
	BalanceKeys     []string
	StakingKeys     []string
	TotalStakedKeys []string
	PairKeys        []string
}

const (
	balanceWidth     = 2
	stakingWidth     = 2
	totalStakedWidth = 1
	pairWidth        = 2
)

// DefaultLayout matches the argument order the reader calls are made with.
func DefaultLayout() Layout {
	return Layout{
		BalanceKeys: []string{
			"ndol",
			"gmt",
			"xgmt",
			"gmtUsdgPair",
			"xgmtUsdgPair",
			"gmtUsdgFarm",
			"xgmtUsdgFarm",
			"autoUsdgPair",
			"autoUsdgFarm",
		},
		StakingKeys: []string{
			"ndol",
			"xgmt",
			"gmtUsdgFarmXgmt",
			"gmtUsdgFarmNative",
			"xgmtUsdgFarmXgmt",
			"xgmtUsdgFarmNative",
			"autoUsdgFarmXgmt",
			"autoUsdgFarmNative",
		},
		TotalStakedKeys: []string{"ndol", "xgmt"},
		PairKeys:        []string{"gmtUsdg", "xgmtUsdg", "bnbBusd", "autoUsdg"},
	}
}

// ExpectedLengths returns the slot count each reader call must return.
func (l Layout) ExpectedLengths() (balances, staking, totalStaked, pairs int) {
	return len(l.BalanceKeys) * balanceWidth,
		len(l.StakingKeys) * stakingWidth,
		len(l.TotalStakedKeys) * totalStakedWidth,
		len(l.PairKeys) * pairWidth
}
