package reader

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"stakeMetrics/internal/snapshot"
)

// Contracts holds every address the reader calls are made with. The ordered
// lists must follow the snapshot layout so that decoding lines up.
type Contracts struct {
	Reader  common.Address
	Factory common.Address
	Xgmt    common.Address

	// BalanceTokens has one entry per balance key.
	BalanceTokens []common.Address
	// YieldTrackers has one entry per staking key.
	YieldTrackers []common.Address
	// YieldTokens has one entry per total-staked key.
	YieldTokens []common.Address
	// PairTokens has an (asset, quote) entry pair per pair key.
	PairTokens []common.Address

	ExcludedAccounts []common.Address
}

// ContractsConfig is the unparsed form of Contracts.
type ContractsConfig struct {
	Reader           string
	Factory          string
	Xgmt             string
	BalanceTokens    []string
	YieldTrackers    []string
	YieldTokens      []string
	PairTokens       []string
	ExcludedAccounts []string
}

// ParseContracts validates cfg against layout.
func ParseContracts(cfg ContractsConfig, layout snapshot.Layout) (Contracts, error) {
	var c Contracts
	var err error

	single := []struct {
		name  string
		value string
		dst   *common.Address
	}{
		{"reader", cfg.Reader, &c.Reader},
		{"factory", cfg.Factory, &c.Factory},
		{"xgmt token", cfg.Xgmt, &c.Xgmt},
	}
	for _, s := range single {
		if s.value == "" {
			return Contracts{}, fmt.Errorf("%s address is required", s.name)
		}
		addr, err := ParseAddress(s.value)
		if err != nil {
			return Contracts{}, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.dst = addr
	}

	lists := []struct {
		name  string
		value []string
		want  int
		dst   *[]common.Address
	}{
		{"balance tokens", cfg.BalanceTokens, len(layout.BalanceKeys), &c.BalanceTokens},
		{"yield trackers", cfg.YieldTrackers, len(layout.StakingKeys), &c.YieldTrackers},
		{"yield tokens", cfg.YieldTokens, len(layout.TotalStakedKeys), &c.YieldTokens},
		{"pair tokens", cfg.PairTokens, len(layout.PairKeys) * 2, &c.PairTokens},
	}
	for _, l := range lists {
		*l.dst, err = ParseAddresses(l.value)
		if err != nil {
			return Contracts{}, fmt.Errorf("%s: %w", l.name, err)
		}
		if len(*l.dst) != l.want {
			return Contracts{}, fmt.Errorf("%s: expected %d addresses, got %d", l.name, l.want, len(*l.dst))
		}
	}

	c.ExcludedAccounts, err = ParseAddresses(cfg.ExcludedAccounts)
	if err != nil {
		return Contracts{}, fmt.Errorf("excluded accounts: %w", err)
	}
	return c, nil
}

// ParseAddress converts a hex string into an address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseAddresses converts string addresses into common.Address, skipping blanks.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		addr, err := ParseAddress(input)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}
