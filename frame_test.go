package ebml

import "testing"

func TestFrameChargeAndExhausted(t *testing.T) {
	f := newFrame(&Def{ID: 0x1A45DFA3, Kind: KindMaster}, KnownLength(10))
	if f.exhausted() {
		t.Fatal("freshly opened frame should not be exhausted")
	}
	if err := f.charge(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.charge(6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.exhausted() {
		t.Fatal("frame should be exhausted after its full length is charged")
	}
}

func TestFrameChargeUnderflow(t *testing.T) {
	f := newFrame(&Def{ID: 1, Kind: KindMaster}, KnownLength(2))
	if err := f.charge(5); err == nil {
		t.Fatal("expected an error charging more bytes than remain")
	}
}

func TestFrameUnknownLengthNeverExhausted(t *testing.T) {
	f := newFrame(&Def{ID: 1, Kind: KindMaster}, UnknownLength)
	if err := f.charge(1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.exhausted() {
		t.Fatal("an unknown-length frame should never report exhausted")
	}
}

func TestCheckOccurrenceCounts(t *testing.T) {
	required := &Def{ID: 1}
	optional := &Def{ID: 2}
	children := []ChildRef{
		{Def: required, MinOccurs: 1, MaxOccurs: 1},
		{Def: optional, MinOccurs: 0, MaxOccurs: MaxOccursUnbounded},
	}

	t.Run("missing required child", func(t *testing.T) {
		if err := checkOccurrenceCounts(map[uint32]uint32{}, children); err == nil {
			t.Fatal("expected error for missing required child")
		}
	})
	t.Run("satisfied", func(t *testing.T) {
		if err := checkOccurrenceCounts(map[uint32]uint32{1: 1, 2: 40}, children); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("over max", func(t *testing.T) {
		if err := checkOccurrenceCounts(map[uint32]uint32{1: 2}, children); err == nil {
			t.Fatal("expected error for exceeding max_occurs")
		}
	})
}
