package snapshot

import (
	"math/big"
	"testing"

	"stakeMetrics/internal/model"
)

func sequence(n int) model.RawSnapshot {
	raw := make(model.RawSnapshot, n)
	for i := range raw {
		raw[i] = big.NewInt(int64(i))
	}
	return raw
}

func TestExpectedLengths(t *testing.T) {
	b, s, ts, p := DefaultLayout().ExpectedLengths()
	if b != 18 || s != 16 || ts != 2 || p != 8 {
		t.Fatalf("unexpected lengths: %d %d %d %d", b, s, ts, p)
	}
}

func TestDecodeRejectsWrongLengths(t *testing.T) {
	layout := DefaultLayout()
	b, s, ts, p := layout.ExpectedLengths()

	for _, n := range []int{0, b - 1, b + 1} {
		if _, ok := DecodeBalances(sequence(n), layout); ok {
			t.Fatalf("balances: expected rejection for length %d", n)
		}
	}
	for _, n := range []int{0, s - 1, s + 1} {
		if _, ok := DecodeStaking(sequence(n), layout); ok {
			t.Fatalf("staking: expected rejection for length %d", n)
		}
	}
	for _, n := range []int{0, ts - 1, ts + 1} {
		if _, ok := DecodeTotalStaked(sequence(n), layout); ok {
			t.Fatalf("total staked: expected rejection for length %d", n)
		}
	}
	for _, n := range []int{0, p - 1, p + 1, p * 2} {
		if _, ok := DecodePairs(sequence(n), layout); ok {
			t.Fatalf("pairs: expected rejection for length %d", n)
		}
	}
	if _, ok := DecodeBalances(nil, layout); ok {
		t.Fatalf("expected rejection for nil input")
	}
}

func TestDecodeIsPositional(t *testing.T) {
	layout := DefaultLayout()
	b, _, _, p := layout.ExpectedLengths()

	balances, ok := DecodeBalances(sequence(b), layout)
	if !ok {
		t.Fatalf("expected balances to decode")
	}
	for i, key := range layout.BalanceKeys {
		got := balances[key]
		if got.Balance.Int64() != int64(2*i) || got.Supply.Int64() != int64(2*i+1) {
			t.Fatalf("%s: got balance=%s supply=%s", key, got.Balance, got.Supply)
		}
	}

	pairs, ok := DecodePairs(sequence(p), layout)
	if !ok {
		t.Fatalf("expected pairs to decode")
	}
	ref := pairs["bnbBusd"]
	if ref.Reserve0.Int64() != 4 || ref.Reserve1.Int64() != 5 {
		t.Fatalf("bnbBusd: got %s/%s", ref.Reserve0, ref.Reserve1)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	layout := DefaultLayout()
	_, s, ts, _ := layout.ExpectedLengths()

	raw := sequence(s)
	staking, ok := DecodeStaking(raw, layout)
	if !ok {
		t.Fatalf("expected staking to decode")
	}
	var flat model.RawSnapshot
	for _, key := range layout.StakingKeys {
		flat = append(flat, staking[key].Claimable, staking[key].TokensPerInterval)
	}
	for i := range raw {
		if raw[i].Cmp(flat[i]) != 0 {
			t.Fatalf("slot %d: expected %s, got %s", i, raw[i], flat[i])
		}
	}

	totals, ok := DecodeTotalStaked(sequence(ts), layout)
	if !ok {
		t.Fatalf("expected totals to decode")
	}
	if totals["ndol"].Int64() != 0 || totals["xgmt"].Int64() != 1 {
		t.Fatalf("unexpected totals: %v", totals)
	}
}

func TestDecodePassesValuesThrough(t *testing.T) {
	layout := Layout{TotalStakedKeys: []string{"a"}}
	neg := big.NewInt(-5)
	totals, ok := DecodeTotalStaked(model.RawSnapshot{neg}, layout)
	if !ok || totals["a"].Cmp(neg) != 0 {
		t.Fatalf("expected negative value to pass through, got %v", totals)
	}
}

func FuzzDecodeChunksLength(f *testing.F) {
	f.Add(0, 3, 2)
	f.Add(6, 3, 2)
	f.Add(7, 3, 2)
	f.Add(2, 2, 1)
	f.Fuzz(func(t *testing.T, n, keyCount, width int) {
		if n < 0 || n > 256 || keyCount < 0 || keyCount > 64 || width < 1 || width > 4 {
			t.Skip()
		}
		keys := make([]string, keyCount)
		for i := range keys {
			keys[i] = string(rune('a' + i))
		}
		out, ok := DecodeChunks(sequence(n), keys, width, func(chunk []*big.Int) int { return len(chunk) })
		want := n > 0 && n == keyCount*width
		if ok != want {
			t.Fatalf("n=%d keys=%d width=%d: ok=%v, want %v", n, keyCount, width, ok, want)
		}
		if !ok {
			if out != nil {
				t.Fatalf("expected nil map on rejection")
			}
			return
		}
		if len(out) != keyCount {
			t.Fatalf("expected %d keys, got %d", keyCount, len(out))
		}
		for _, size := range out {
			if size != width {
				t.Fatalf("expected chunk width %d, got %d", width, size)
			}
		}
	})
}
