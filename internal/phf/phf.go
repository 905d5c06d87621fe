// Package phf assembles a searched-and-compiled register program into
// a complete perfect-hash function: a key table, an ordinal table, and
// the IR/tables a backend would emit as code, plus the validation pass
// that checks the assembly is actually correct before it is trusted.
package phf

import (
	"fmt"

	"phfgen/internal/ir"
	"phfgen/internal/spec"
)

// Phf is the final output of the compiler: everything a C (or other)
// backend needs to emit hash(key, len) and lookup(key, len).
type Phf struct {
	Tac      *ir.Tac
	Tables   *ir.Tables
	HashBits uint32
	// KeyTable has 2^HashBits entries; KeyTable[i] is the key stored at
	// slot i, or the synthetic fake key at slot 0 if no input key is
	// empty.
	KeyTable []spec.Key
	// Ordinals[i] is the position of KeyTable[i] in the original input
	// key list (including the empty key at slot 0, if present), or -1
	// for the fake-key slot and for unused slots.
	Ordinals []int
}

// New assembles a Phf from a searched hash register, tracing it over
// every non-empty key to place them in a table of size 2^hashBits, then
// validating the result.
func New(sp *spec.Spec, tac *ir.Tac, tables *ir.Tables, hashBits uint32, hashReg ir.Reg) (*Phf, error) {
	size := 1 << hashBits

	var hasEmpty bool
	emptyOrdinal := -1
	nonEmptyKeys := make([]spec.Key, 0, len(sp.Keys))
	nonEmptyOrdinals := make([]int, 0, len(sp.Keys))
	for i, k := range sp.Keys {
		if len(k) == 0 {
			hasEmpty = true
			emptyOrdinal = i
		} else {
			nonEmptyKeys = append(nonEmptyKeys, k)
			nonEmptyOrdinals = append(nonEmptyOrdinals, i)
		}
	}

	trace, err := ir.NewTrace(nonEmptyKeys, tac, tables, size)
	if err != nil {
		return nil, err
	}
	hashRow := trace.Row(hashReg)

	keyTable := make([]spec.Key, size)
	ordinals := make([]int, size)
	for i := range ordinals {
		ordinals[i] = -1
	}

	for lane, key := range nonEmptyKeys {
		h := hashRow[lane]
		if keyTable[h] != nil {
			return nil, fmt.Errorf("phf: hash collision at slot %d", h)
		}
		keyTable[h] = key
		ordinals[h] = nonEmptyOrdinals[lane]
	}

	if hasEmpty {
		keyTable[0] = spec.Key{}
		ordinals[0] = emptyOrdinal
	} else {
		fakeKey := spec.Key("!")
		for _, k := range keyTable {
			if k != nil {
				fakeKey = k
				break
			}
		}
		keyTable[0] = fakeKey
		ordinals[0] = -1
	}

	p := &Phf{Tac: tac, Tables: tables, HashBits: hashBits, KeyTable: keyTable, Ordinals: ordinals}
	if err := p.validate(sp); err != nil {
		return nil, err
	}
	return p, nil
}

// validate re-traces the IR for every stored key (applying the same
// out-of-range length guard a backend's emitted hash function would)
// and checks that the hash it produces matches the slot the key is
// stored at, then checks the full reconstructed key set equals the
// input key set.
func (p *Phf) validate(sp *spec.Spec) error {
	var reconstructed []spec.Key

	for i, key := range p.KeyTable {
		isRealKey := (len(key) == 0) == (i == 0)
		if !isRealKey {
			continue
		}

		var hash uint32
		if len(key) < sp.MinInterpretedKeyLen || len(key) > sp.MaxInterpretedKeyLen {
			hash = 0
		} else {
			trace, err := ir.NewTrace([]spec.Key{key}, p.Tac, p.Tables, len(p.KeyTable))
			if err != nil {
				return err
			}
			hash = trace.Row(p.Tac.LastReg())[0]
		}
		if hash != uint32(i) {
			return fmt.Errorf("phf: validation failed at slot %d: key hashes to %d", i, hash)
		}
		reconstructed = append(reconstructed, key)
	}

	if !sameKeySet(reconstructed, sp.Keys) {
		return fmt.Errorf("phf: validation failed: reconstructed key set does not match input")
	}
	return nil
}

func sameKeySet(a, b []spec.Key) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, k := range a {
		set[string(k)]++
	}
	for _, k := range b {
		set[string(k)]--
	}
	for _, n := range set {
		if n != 0 {
			return false
		}
	}
	return true
}
