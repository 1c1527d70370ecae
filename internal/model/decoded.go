package model

import "math/big"

// BalanceSupply is the wallet balance and total supply of one token.
type BalanceSupply struct {
	Balance *big.Int
	Supply  *big.Int
}

// StakingEntry is the pending reward and hourly emission of one reward tracker.
type StakingEntry struct {
	Claimable         *big.Int
	TokensPerInterval *big.Int
}

// PairReserves holds one AMM pool's reserves ordered (asset, quote).
type PairReserves struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

type (
	BalanceSupplySet map[string]BalanceSupply
	StakingSet       map[string]StakingEntry
	TotalStakedSet   map[string]*big.Int
	PairSet          map[string]PairReserves
)
