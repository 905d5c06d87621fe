package bitset

import "testing"

func TestBitSetSetTest(t *testing.T) {
	b := New(100)
	if b.Test(42) {
		t.Fatal("bit 42 should start unset")
	}
	b.Set(42)
	if !b.Test(42) {
		t.Fatal("bit 42 should be set")
	}
	if b.Test(41) || b.Test(43) {
		t.Fatal("neighboring bits should be unaffected")
	}
}

func TestBitSetInsert(t *testing.T) {
	b := New(10)
	if !b.Insert(3) {
		t.Fatal("first insert of 3 should report true")
	}
	if b.Insert(3) {
		t.Fatal("second insert of 3 should report false")
	}
}

func TestGenerationalClear(t *testing.T) {
	g := NewGenerational(10)
	g.Set(5)
	if !g.Test(5) {
		t.Fatal("bit 5 should be set")
	}
	g.Clear()
	if g.Test(5) {
		t.Fatal("bit 5 should be cleared")
	}
	g.Set(5)
	if !g.Test(5) {
		t.Fatal("bit 5 should be set again after clear")
	}
}

func TestGenerationalSaturates(t *testing.T) {
	g := NewGenerational(4)
	g.Set(0)
	for i := 0; i < 300; i++ {
		g.Clear()
	}
	if g.Test(0) {
		t.Fatal("bit 0 should not survive many clears")
	}
	if g.generation == 0 {
		t.Fatal("generation counter should never be zero after saturation reset")
	}
}
