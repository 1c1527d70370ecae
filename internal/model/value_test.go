package model

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestValueUndefinedIsNotZero(t *testing.T) {
	zero := Defined(big.NewInt(0))
	undef := Undefined()

	if undef.IsDefined() {
		t.Fatalf("expected undefined")
	}
	if !zero.IsDefined() || !zero.IsZero() {
		t.Fatalf("expected defined zero")
	}
	if zero.Equal(undef) || undef.IsZero() {
		t.Fatalf("zero and undefined must differ")
	}
	if !undef.Equal(Value{}) {
		t.Fatalf("zero Value must be undefined")
	}
	if Defined(nil).IsDefined() {
		t.Fatalf("nil must map to undefined")
	}
}

func TestValueCopiesInput(t *testing.T) {
	n := big.NewInt(7)
	v := Defined(n)
	n.SetInt64(9)
	got, _ := v.Int()
	if got.Int64() != 7 {
		t.Fatalf("expected 7, got %s", got)
	}
	got.SetInt64(11)
	again, _ := v.Int()
	if again.Int64() != 7 {
		t.Fatalf("Int must return a copy")
	}
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal([]Value{Undefined(), Defined(big.NewInt(0)), Defined(big.NewInt(42))})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `[null,"0","42"]` {
		t.Fatalf("unexpected json: %s", b)
	}

	var decoded []Value
	if err := json.Unmarshal([]byte(`[null,"0","0x2a",42]`), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded[0].IsDefined() || !decoded[1].IsZero() {
		t.Fatalf("unexpected decode: %v", decoded)
	}
	if decoded[2].String() != "42" || decoded[3].String() != "42" {
		t.Fatalf("unexpected decode: %v", decoded)
	}
}
