package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// RawSnapshot is a uint256[] returned verbatim by a reader call. A nil
// RawSnapshot means the value has not been fetched.
type RawSnapshot []*big.Int

// MarshalJSON encodes every slot as a decimal string.
func (r RawSnapshot) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	out := make([]string, len(r))
	for i, v := range r {
		if v == nil {
			out[i] = "0"
			continue
		}
		out[i] = v.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts decimal strings, 0x-prefixed hex strings and bare numbers.
func (r *RawSnapshot) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*r = nil
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(RawSnapshot, 0, len(items))
	for i, item := range items {
		v, err := parseJSONInt(item)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		out = append(out, v)
	}
	*r = out
	return nil
}

// SnapshotSet groups the five independently fetched inputs for one refresh.
type SnapshotSet struct {
	BlockNumber    uint64
	Balances       RawSnapshot
	Staking        RawSnapshot
	TotalStaked    RawSnapshot
	Pairs          RawSnapshot
	ExternalSupply *big.Int
}

type snapshotSetJSON struct {
	BlockNumber    uint64          `json:"block_number"`
	Balances       RawSnapshot     `json:"balances"`
	Staking        RawSnapshot     `json:"staking"`
	TotalStaked    RawSnapshot     `json:"total_staked"`
	Pairs          RawSnapshot     `json:"pairs"`
	ExternalSupply json.RawMessage `json:"external_supply"`
}

// MarshalJSON keeps the external supply as a decimal string like the slots.
func (s SnapshotSet) MarshalJSON() ([]byte, error) {
	supply := json.RawMessage("null")
	if s.ExternalSupply != nil {
		supply = json.RawMessage(`"` + s.ExternalSupply.String() + `"`)
	}
	return json.Marshal(snapshotSetJSON{
		BlockNumber:    s.BlockNumber,
		Balances:       s.Balances,
		Staking:        s.Staking,
		TotalStaked:    s.TotalStaked,
		Pairs:          s.Pairs,
		ExternalSupply: supply,
	})
}

// UnmarshalJSON decodes a SnapshotSet from JSON.
func (s *SnapshotSet) UnmarshalJSON(data []byte) error {
	var a snapshotSetJSON
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var supply *big.Int
	if len(a.ExternalSupply) > 0 && !isNull(a.ExternalSupply) {
		v, err := parseJSONInt(a.ExternalSupply)
		if err != nil {
			return fmt.Errorf("external_supply: %w", err)
		}
		supply = v
	}
	*s = SnapshotSet{
		BlockNumber:    a.BlockNumber,
		Balances:       a.Balances,
		Staking:        a.Staking,
		TotalStaked:    a.TotalStaked,
		Pairs:          a.Pairs,
		ExternalSupply: supply,
	}
	return nil
}

// Missing lists the input slots that are absent.
func (s SnapshotSet) Missing() []string {
	var missing []string
	if s.Balances == nil {
		missing = append(missing, "balances")
	}
	if s.Staking == nil {
		missing = append(missing, "staking")
	}
	if s.TotalStaked == nil {
		missing = append(missing, "total_staked")
	}
	if s.Pairs == nil {
		missing = append(missing, "pairs")
	}
	if s.ExternalSupply == nil {
		missing = append(missing, "external_supply")
	}
	return missing
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func parseJSONInt(raw json.RawMessage) (*big.Int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return ParseInt(s)
	}
	return ParseInt(string(raw))
}

// ParseInt parses a decimal or 0x-prefixed hex integer.
func ParseInt(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty int")
	}
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		v, err := hexutil.DecodeBig(strings.ToLower(value))
		if err != nil {
			return nil, fmt.Errorf("invalid hex int %s: %w", value, err)
		}
		return v, nil
	}
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return v, nil
}
