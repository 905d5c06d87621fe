package selector

import (
	"testing"

	"phfgen/internal/ir"
	"phfgen/internal/spec"
)

func TestLenSelectorEval(t *testing.T) {
	keys := []spec.Key{spec.Key("a"), spec.Key("bb"), spec.Key("ccc")}
	got := Selector{Kind: Len}.Eval(keys)
	want := []uint32{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Len.Eval = %v, want %v", got, want)
		}
	}
}

func TestIndexSelectorEval(t *testing.T) {
	keys := []spec.Key{spec.Key("cat"), spec.Key("dog")}
	got := Selector{Kind: Index, K: 0}.Eval(keys)
	if got[0] != uint32('c') || got[1] != uint32('d') {
		t.Fatalf("Index(0).Eval = %v", got)
	}
}

func TestSubAndShrlSelectorEvalReadKeyBytes(t *testing.T) {
	keys := []spec.Key{spec.Key("cat"), spec.Key("fish")}

	sub := Selector{Kind: Sub, K: 1}.Eval(keys)
	if sub[0] != uint32('t') || sub[1] != uint32('h') {
		t.Fatalf("Sub(1).Eval = %v, want last byte of each key", sub)
	}

	and := Selector{Kind: And, K: 1}.Eval(keys)
	if and[0] != uint32(keys[0][len(keys[0])&1]) || and[1] != uint32(keys[1][len(keys[1])&1]) {
		t.Fatalf("And(1).Eval = %v, want byte at len&1", and)
	}

	shrl := Selector{Kind: Shrl, K: 1}.Eval(keys)
	if shrl[0] != uint32(keys[0][len(keys[0])>>1]) || shrl[1] != uint32(keys[1][len(keys[1])>>1]) {
		t.Fatalf("Shrl(1).Eval = %v, want byte at len>>1", shrl)
	}
}

func TestTableSelectorEvalMasksLength(t *testing.T) {
	// table has 8 slots (power of two), so length 3 and length 11 (3
	// with the low 3 bits set the same way) would alias if the mask
	// were applied against the wrong width; keep lengths within [0,8).
	table := make([]uint32, 8)
	table[3] = 0 // keys of length 3 use byte 0 as their selector value
	table[4] = 2 // keys of length 4 use byte 2

	keys := []spec.Key{spec.Key("cat"), spec.Key("ruby")}
	got := Selector{Kind: Table, Table: table}.Eval(keys)
	if got[0] != uint32('c') || got[1] != uint32('b') {
		t.Fatalf("Table.Eval = %v, want ['c' 'b']", got)
	}
}

func TestSelectorCompileMatchesEvalForAllKinds(t *testing.T) {
	keys := []spec.Key{spec.Key("cat"), spec.Key("dog"), spec.Key("fish")}
	table := make([]uint32, 8)
	table[3] = 1
	table[4] = 0
	sels := []Selector{
		{Kind: Len},
		{Kind: Index, K: 0},
		{Kind: Sub, K: 1},
		{Kind: And, K: 1},
		{Kind: Shrl, K: 1},
		{Kind: Table, Table: table},
	}

	tac := ir.NewTac()
	tables := ir.NewTables()
	regs := make([]ir.Reg, len(sels))
	for i, s := range sels {
		regs[i] = s.Compile(tac, tables)
	}

	trace, err := ir.NewTrace(keys, tac, tables, -1)
	if err != nil {
		t.Fatal(err)
	}

	for i, s := range sels {
		want := s.Eval(keys)
		got := trace.Row(regs[i])
		for lane := range want {
			if got[lane] != want[lane] {
				t.Fatalf("selector %d (%v): compiled trace %v != eval %v", i, s.Kind, got, want)
			}
		}
	}
}

func TestSelectorCompileMatchesEval(t *testing.T) {
	keys := []spec.Key{spec.Key("cat"), spec.Key("dog"), spec.Key("fish")}
	sels := []Selector{{Kind: Len}, {Kind: Index, K: 0}}

	tac := ir.NewTac()
	tables := ir.NewTables()
	regs := make([]ir.Reg, len(sels))
	for i, s := range sels {
		regs[i] = s.Compile(tac, tables)
	}

	trace, err := ir.NewTrace(keys, tac, tables, -1)
	if err != nil {
		t.Fatal(err)
	}

	for i, s := range sels {
		want := s.Eval(keys)
		got := trace.Row(regs[i])
		for lane := range want {
			if got[lane] != want[lane] {
				t.Fatalf("selector %d: compiled trace %v != eval %v", i, got, want)
			}
		}
	}
}

func TestSearchDistinguishesSimpleKeys(t *testing.T) {
	sp := spec.New([]spec.Key{spec.Key("cat"), spec.Key("dog"), spec.Key("fish"), spec.Key("ox")})
	sels, ok := Search(sp)
	if !ok {
		t.Fatal("expected a distinguishing selector tuple")
	}
	if !distinguishesSelectors(sp.InterpretedKeys, sels) {
		t.Fatalf("selectors %+v do not actually distinguish the keys", sels)
	}
}

func TestSearchDistinguishesSameLengthKeys(t *testing.T) {
	sp := spec.New([]spec.Key{spec.Key("aaa"), spec.Key("aab"), spec.Key("aba"), spec.Key("baa")})
	sels, ok := Search(sp)
	if !ok {
		t.Fatal("expected a distinguishing selector tuple")
	}
	if !distinguishesSelectors(sp.InterpretedKeys, sels) {
		t.Fatalf("selectors %+v do not actually distinguish the keys", sels)
	}
}
