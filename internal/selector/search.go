package selector

import (
	"encoding/binary"

	"phfgen/internal/combinatorics"
	"phfgen/internal/spec"
)

// searcher accumulates candidate selectors and their evaluated columns
// over a fixed key set, so combinations can be distinguished without
// re-evaluating any selector twice.
type searcher struct {
	keys    []spec.Key
	sels    []Selector
	columns [][]uint32
	seen    map[string]struct{}
}

func newSearcher(keys []spec.Key) *searcher {
	return &searcher{keys: keys, seen: make(map[string]struct{}, len(keys))}
}

func (s *searcher) add(sel Selector) int {
	s.sels = append(s.sels, sel)
	s.columns = append(s.columns, sel.Eval(s.keys))
	return len(s.sels) - 1
}

// distinguishes reports whether the selectors at the given pool
// indices produce a distinct tuple for every key.
func (s *searcher) distinguishes(indices []int) bool {
	for k := range s.seen {
		delete(s.seen, k)
	}
	width := len(s.keys)
	buf := make([]byte, 4*len(indices))
	for lane := 0; lane < width; lane++ {
		for j, idx := range indices {
			binary.LittleEndian.PutUint32(buf[j*4:], s.columns[idx][lane])
		}
		key := string(buf)
		if _, dup := s.seen[key]; dup {
			return false
		}
		s.seen[key] = struct{}{}
	}
	return true
}

// findDistinguishing tries every numChoices-subset of pool (indices
// into s.sels) in lexicographic order, returning the first subset that
// distinguishes every key.
func (s *searcher) findDistinguishing(pool []int, numChoices int) ([]int, bool) {
	if numChoices > len(pool) {
		return nil, false
	}
	gen := combinatorics.NewChooseGen(len(pool), numChoices)
	for {
		choice, ok := gen.Next()
		if !ok {
			return nil, false
		}
		indices := make([]int, numChoices)
		for i, c := range choice {
			indices[i] = pool[c]
		}
		if s.distinguishes(indices) {
			return indices, true
		}
	}
}

// Search runs the staged selector search described for this compiler:
// stage A tries small tuples of Len/Index selectors, then of
// Len/Index/Sub/And/Shrl selectors, for each tuple size in turn;
// stage B, reached only if stage A fails, groups keys by length and
// tries per-length Table selectors, optionally augmented with one
// StrSum selector.
func Search(sp *spec.Spec) ([]Selector, bool) {
	if sels, ok := stageA(sp); ok {
		return sels, true
	}
	return stageB(sp)
}

func stageA(sp *spec.Spec) ([]Selector, bool) {
	keys := sp.InterpretedKeys
	s := newSearcher(keys)

	lenIdx := s.add(Selector{Kind: Len})

	lengthVaries := sp.MinInterpretedKeyLen != sp.MaxInterpretedKeyLen

	var basicPool []int
	basicPool = append(basicPool, lenIdx)
	for pos := 0; pos < sp.MinInterpretedKeyLen; pos++ {
		basicPool = append(basicPool, s.add(Selector{Kind: Index, K: uint32(pos)}))
	}

	var arithPool []int
	if lengthVaries {
		minLen := sp.MinInterpretedKeyLen
		maxLen := sp.MaxInterpretedKeyLen

		// Sub(k) = byte at len-k: bounded to 1<=k<=min(min_len,32) so
		// len-k is in [0,len) for every key (len>=min_len for all).
		subLimit := minLen
		if subLimit > 32 {
			subLimit = 32
		}
		for k := uint32(1); int(k) <= subLimit; k++ {
			arithPool = append(arithPool, s.add(Selector{Kind: Sub, K: k}))
		}

		// And(k) = byte at len&k: bounded to 0<=k<min(min_len,32) so
		// len&k <= k < min_len <= len for every key.
		andLimit := minLen
		if andLimit > 32 {
			andLimit = 32
		}
		for k := uint32(0); int(k) < andLimit; k++ {
			arithPool = append(arithPool, s.add(Selector{Kind: And, K: k}))
		}

		// Shrl(k) = byte at len>>k: starts at 1 (k=0 would read offset
		// len itself, one past the last valid byte) and stops once
		// max_len>>k hits zero, since every key's shifted length is 0
		// from that k onward.
		for k := uint32(1); k < 32 && (maxLen>>k) != 0; k++ {
			arithPool = append(arithPool, s.add(Selector{Kind: Shrl, K: k}))
		}
	}

	combined := append(append([]int{}, basicPool...), arithPool...)

	for numChoices := 1; numChoices <= 4; numChoices++ {
		for _, pool := range [][]int{basicPool, combined} {
			if indices, ok := s.findDistinguishing(pool, numChoices); ok {
				return selectorsAt(s, indices), true
			}
		}
	}
	return nil, false
}

func selectorsAt(s *searcher, indices []int) []Selector {
	out := make([]Selector, len(indices))
	for i, idx := range indices {
		out[i] = s.sels[idx]
	}
	return out
}

func stageB(sp *spec.Spec) ([]Selector, bool) {
	keys := sp.InterpretedKeys
	maxLen := sp.MaxInterpretedKeyLen
	posLimit := maxLen
	if posLimit > 32 {
		posLimit = 32
	}

	byLen := make(map[int][]int)
	for i, k := range keys {
		byLen[len(k)] = append(byLen[len(k)], i)
	}

	// Table selectors are looked up through a masked length register
	// (the IR requires every TableGet index operand to be pre-masked),
	// so each table's allocated size must be a power of two at least
	// maxLen+1, not just maxLen+1 itself.
	tableSizeBits := tableBits(maxLen + 1)
	tableSize := 1 << tableSizeBits

	for numTables := 1; numTables <= 3; numTables++ {
		tables := make([][]uint32, numTables)
		for t := range tables {
			tables[t] = make([]uint32, tableSize)
		}

		ok := true
		for length, laneIdxs := range byLen {
			classKeys := make([]spec.Key, len(laneIdxs))
			for i, lane := range laneIdxs {
				classKeys[i] = keys[lane]
			}
			tuple, found := findIndexTuple(classKeys, posLimit, numTables)
			if !found {
				ok = false
				break
			}
			for t := 0; t < numTables; t++ {
				tables[t][length] = tuple[t]
			}
		}
		if !ok {
			continue
		}

		base := []Selector{{Kind: Len}}
		for t := 0; t < numTables; t++ {
			base = append(base, Selector{Kind: Table, Table: append([]uint32(nil), tables[t]...)})
		}
		if distinguishesSelectors(keys, base) {
			return base, true
		}
		for mask := uint32(0); mask < 32; mask++ {
			withSum := append(append([]Selector{}, base...), Selector{Kind: StrSum, K: mask})
			if distinguishesSelectors(keys, withSum) {
				return withSum, true
			}
		}
	}
	return nil, false
}

// findIndexTuple searches for a numTables-tuple of byte positions (in
// [0, posLimit)) whose values distinguish every key in classKeys,
// which are all the same length.
func findIndexTuple(classKeys []spec.Key, posLimit, numTables int) ([]uint32, bool) {
	classLen := len(classKeys[0])
	limit := posLimit
	if classLen < limit {
		limit = classLen
	}

	if len(classKeys) <= 1 {
		result := make([]uint32, numTables)
		for i := range result {
			if i < limit {
				result[i] = uint32(i)
			}
		}
		return result, true
	}

	s := newSearcher(classKeys)
	var pool []int
	for pos := 0; pos < limit; pos++ {
		pool = append(pool, s.add(Selector{Kind: Index, K: uint32(pos)}))
	}
	indices, ok := s.findDistinguishing(pool, numTables)
	if !ok {
		return nil, false
	}
	out := make([]uint32, numTables)
	for i, idx := range indices {
		out[i] = s.sels[idx].K
	}
	return out, true
}

func distinguishesSelectors(keys []spec.Key, sels []Selector) bool {
	s := newSearcher(keys)
	indices := make([]int, len(sels))
	for i, sel := range sels {
		indices[i] = s.add(sel)
	}
	return s.distinguishes(indices)
}
