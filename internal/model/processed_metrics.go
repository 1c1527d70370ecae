package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Prices are spot USD prices scaled by PRECISION.
type Prices struct {
	Xgmt     Value `json:"xgmt"`
	GmtUsdg  Value `json:"gmtUsdg"`
	XgmtUsdg Value `json:"xgmtUsdg"`
	AutoUsdg Value `json:"autoUsdg"`
	Bnb      Value `json:"bnb"`
}

// ProcessedMetrics is the derived staking record. The zero value is the empty
// record returned while inputs are still missing.
type ProcessedMetrics struct {
	Ready bool

	NdolBalance        Value
	NdolSupply         Value
	NdolTotalStaked    Value
	NdolTotalStakedUsd Value
	NdolSupplyUsd      Value
	NdolApr            Value
	NdolRewards        Value

	XgmtBalance        Value
	XgmtBalanceUsd     Value
	XgmtSupply         Value
	XgmtTotalStaked    Value
	XgmtTotalStakedUsd Value
	XgmtSupplyUsd      Value
	XgmtApr            Value
	XgmtRewards        Value

	GmtUsdgFarmBalance    Value
	GmtUsdgBalance        Value
	GmtUsdgBalanceUsd     Value
	GmtUsdgSupply         Value
	GmtUsdgSupplyUsd      Value
	GmtUsdgStaked         Value
	GmtUsdgStakedUsd      Value
	GmtUsdgFarmSupplyUsd  Value
	GmtUsdgApr            Value
	GmtUsdgXgmtRewards    Value
	GmtUsdgNativeRewards  Value
	GmtUsdgTotalRewards   Value
	GmtUsdgTotalStaked    Value
	GmtUsdgTotalStakedUsd Value

	XgmtUsdgFarmBalance    Value
	XgmtUsdgBalance        Value
	XgmtUsdgBalanceUsd     Value
	XgmtUsdgSupply         Value
	XgmtUsdgSupplyUsd      Value
	XgmtUsdgStaked         Value
	XgmtUsdgStakedUsd      Value
	XgmtUsdgFarmSupplyUsd  Value
	XgmtUsdgApr            Value
	XgmtUsdgXgmtRewards    Value
	XgmtUsdgNativeRewards  Value
	XgmtUsdgTotalRewards   Value
	XgmtUsdgTotalStaked    Value
	XgmtUsdgTotalStakedUsd Value

	AutoUsdgBalance        Value
	AutoUsdgFarmBalance    Value
	AutoUsdgBalanceUsd     Value
	AutoUsdgStaked         Value
	AutoUsdgStakedUsd      Value
	AutoUsdgFarmSupplyUsd  Value
	AutoUsdgApr            Value
	AutoUsdgXgmtRewards    Value
	AutoUsdgNativeRewards  Value
	AutoUsdgTotalRewards   Value
	AutoUsdgTotalStaked    Value
	AutoUsdgTotalStakedUsd Value

	TotalStakedUsd Value

	Prices Prices
}

// Field is one named output value.
type Field struct {
	Name  string
	Value Value
}

type fieldRef struct {
	name string
	ref  *Value
}

func (m *ProcessedMetrics) refs() []fieldRef {
	return []fieldRef{
		{"ndolBalance", &m.NdolBalance},
		{"ndolSupply", &m.NdolSupply},
		{"ndolTotalStaked", &m.NdolTotalStaked},
		{"ndolTotalStakedUsd", &m.NdolTotalStakedUsd},
		{"ndolSupplyUsd", &m.NdolSupplyUsd},
		{"ndolApr", &m.NdolApr},
		{"ndolRewards", &m.NdolRewards},

		{"xgmtBalance", &m.XgmtBalance},
		{"xgmtBalanceUsd", &m.XgmtBalanceUsd},
		{"xgmtSupply", &m.XgmtSupply},
		{"xgmtTotalStaked", &m.XgmtTotalStaked},
		{"xgmtTotalStakedUsd", &m.XgmtTotalStakedUsd},
		{"xgmtSupplyUsd", &m.XgmtSupplyUsd},
		{"xgmtApr", &m.XgmtApr},
		{"xgmtRewards", &m.XgmtRewards},

		{"gmtUsdgFarmBalance", &m.GmtUsdgFarmBalance},
		{"gmtUsdgBalance", &m.GmtUsdgBalance},
		{"gmtUsdgBalanceUsd", &m.GmtUsdgBalanceUsd},
		{"gmtUsdgSupply", &m.GmtUsdgSupply},
		{"gmtUsdgSupplyUsd", &m.GmtUsdgSupplyUsd},
		{"gmtUsdgStaked", &m.GmtUsdgStaked},
		{"gmtUsdgStakedUsd", &m.GmtUsdgStakedUsd},
		{"gmtUsdgFarmSupplyUsd", &m.GmtUsdgFarmSupplyUsd},
		{"gmtUsdgApr", &m.GmtUsdgApr},
		{"gmtUsdgXgmtRewards", &m.GmtUsdgXgmtRewards},
		{"gmtUsdgNativeRewards", &m.GmtUsdgNativeRewards},
		{"gmtUsdgTotalRewards", &m.GmtUsdgTotalRewards},
		{"gmtUsdgTotalStaked", &m.GmtUsdgTotalStaked},
		{"gmtUsdgTotalStakedUsd", &m.GmtUsdgTotalStakedUsd},

		{"xgmtUsdgFarmBalance", &m.XgmtUsdgFarmBalance},
		{"xgmtUsdgBalance", &m.XgmtUsdgBalance},
		{"xgmtUsdgBalanceUsd", &m.XgmtUsdgBalanceUsd},
		{"xgmtUsdgSupply", &m.XgmtUsdgSupply},
		{"xgmtUsdgSupplyUsd", &m.XgmtUsdgSupplyUsd},
		{"xgmtUsdgStaked", &m.XgmtUsdgStaked},
		{"xgmtUsdgStakedUsd", &m.XgmtUsdgStakedUsd},
		{"xgmtUsdgFarmSupplyUsd", &m.XgmtUsdgFarmSupplyUsd},
		{"xgmtUsdgApr", &m.XgmtUsdgApr},
		{"xgmtUsdgXgmtRewards", &m.XgmtUsdgXgmtRewards},
		{"xgmtUsdgNativeRewards", &m.XgmtUsdgNativeRewards},
		{"xgmtUsdgTotalRewards", &m.XgmtUsdgTotalRewards},
		{"xgmtUsdgTotalStaked", &m.XgmtUsdgTotalStaked},
		{"xgmtUsdgTotalStakedUsd", &m.XgmtUsdgTotalStakedUsd},

		{"autoUsdgBalance", &m.AutoUsdgBalance},
		{"autoUsdgFarmBalance", &m.AutoUsdgFarmBalance},
		{"autoUsdgBalanceUsd", &m.AutoUsdgBalanceUsd},
		{"autoUsdgStaked", &m.AutoUsdgStaked},
		{"autoUsdgStakedUsd", &m.AutoUsdgStakedUsd},
		{"autoUsdgFarmSupplyUsd", &m.AutoUsdgFarmSupplyUsd},
		{"autoUsdgApr", &m.AutoUsdgApr},
		{"autoUsdgXgmtRewards", &m.AutoUsdgXgmtRewards},
		{"autoUsdgNativeRewards", &m.AutoUsdgNativeRewards},
		{"autoUsdgTotalRewards", &m.AutoUsdgTotalRewards},
		{"autoUsdgTotalStaked", &m.AutoUsdgTotalStaked},
		{"autoUsdgTotalStakedUsd", &m.AutoUsdgTotalStakedUsd},

		{"totalStakedUsd", &m.TotalStakedUsd},
	}
}

// Fields returns the output values in declaration order, or nil for the empty record.
func (m ProcessedMetrics) Fields() []Field {
	if !m.Ready {
		return nil
	}
	refs := m.refs()
	out := make([]Field, 0, len(refs))
	for _, r := range refs {
		out = append(out, Field{Name: r.name, Value: *r.ref})
	}
	return out
}

// Get looks up a field by its output name.
func (m ProcessedMetrics) Get(name string) (Value, bool) {
	if !m.Ready {
		return Value{}, false
	}
	for _, r := range m.refs() {
		if r.name == name {
			return *r.ref, true
		}
	}
	return Value{}, false
}

// Equal compares two records field by field.
func (m ProcessedMetrics) Equal(other ProcessedMetrics) bool {
	if m.Ready != other.Ready {
		return false
	}
	a, b := m.refs(), other.refs()
	for i := range a {
		if !a[i].ref.Equal(*b[i].ref) {
			return false
		}
	}
	return pricesEqual(m.Prices, other.Prices)
}

func pricesEqual(a, b Prices) bool {
	return a.Xgmt.Equal(b.Xgmt) &&
		a.GmtUsdg.Equal(b.GmtUsdg) &&
		a.XgmtUsdg.Equal(b.XgmtUsdg) &&
		a.AutoUsdg.Equal(b.AutoUsdg) &&
		a.Bnb.Equal(b.Bnb)
}

// MarshalJSON writes fields in declaration order. The empty record encodes as {}.
func (m ProcessedMetrics) MarshalJSON() ([]byte, error) {
	if !m.Ready {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", f.Name, err)
		}
		fmt.Fprintf(&buf, "%q:", f.Name)
		buf.Write(val)
	}
	prices, err := json.Marshal(m.Prices)
	if err != nil {
		return nil, fmt.Errorf("marshal prices: %w", err)
	}
	buf.WriteString(`,"prices":`)
	buf.Write(prices)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (m *ProcessedMetrics) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ProcessedMetrics{}
	if len(raw) == 0 {
		return nil
	}
	for _, r := range m.refs() {
		item, ok := raw[r.name]
		if !ok {
			continue
		}
		if err := r.ref.UnmarshalJSON(item); err != nil {
			return fmt.Errorf("%s: %w", r.name, err)
		}
	}
	if item, ok := raw["prices"]; ok {
		if err := json.Unmarshal(item, &m.Prices); err != nil {
			return fmt.Errorf("prices: %w", err)
		}
	}
	m.Ready = true
	return nil
}

// Set assigns a field by its output name and reports whether the name exists.
func (m *ProcessedMetrics) Set(name string, v Value) bool {
	for _, r := range m.refs() {
		if r.name == name {
			*r.ref = v
			return true
		}
	}
	return false
}
