// Package compressor implements the FCH-style (bucket-and-displace)
// offset-table search that folds a wide mixer hash down into the
// final, densely packed hash range.
package compressor

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"phfgen/internal/bitset"
	"phfgen/internal/ir"
	"phfgen/internal/mixer"
)

// ErrNoSolution is returned when no (offset_index_bits, base_shift)
// pair at the requested hash width produces a valid offset table.
var ErrNoSolution = errors.New("compressor: no solution")

// Compressor folds a mixer's wide hash into [0, 2^HashBits) via
// add(shrl(mix, BaseShift), OffsetTable[mix & mask]).
type Compressor struct {
	HashBits    uint32
	BaseShift   uint32
	OffsetTable []uint32
}

type candidate struct {
	offsetIndexBits uint32
	baseShift       uint32
	offsetTable     []uint32
}

// Search tries every offset_index_bits in [1, hashBits] (in parallel,
// one goroutine per value, each with its own bit set) and, within
// each, every base_shift in [mixBits-hashBits, offsetIndexBits] from
// smallest to largest, returning the first offset table it finds.
// Among parallel successes the lexicographically smallest
// (offset_index_bits, base_shift) pair is chosen, so the result is
// identical to what a sequential search in that order would produce.
func Search(hashBits uint32, mx *mixer.Mixer) (*Compressor, error) {
	hashTableSize := 1 << hashBits

	g, _ := errgroup.WithContext(context.Background())
	results := make([]*candidate, hashBits)

	for oib := uint32(1); oib <= hashBits; oib++ {
		oib := oib
		g.Go(func() error {
			groups := bucketize(mx.Mixes, oib)
			slices.SortStableFunc(groups, func(a, b []uint32) int {
				return len(b) - len(a)
			})

			var minBaseShift uint32
			if mx.MixBits > hashBits {
				minBaseShift = mx.MixBits - hashBits
			}
			seen := bitset.NewGenerational(hashTableSize)
			for baseShift := minBaseShift; baseShift <= oib; baseShift++ {
				if table, ok := findOffsetTable(groups, hashBits, oib, baseShift, seen); ok {
					results[oib-1] = &candidate{offsetIndexBits: oib, baseShift: baseShift, offsetTable: table}
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var found []*candidate
	for _, c := range results {
		if c != nil {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return nil, ErrNoSolution
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].offsetIndexBits != found[j].offsetIndexBits {
			return found[i].offsetIndexBits < found[j].offsetIndexBits
		}
		return found[i].baseShift < found[j].baseShift
	})
	best := found[0]
	return &Compressor{HashBits: hashBits, BaseShift: best.baseShift, OffsetTable: best.offsetTable}, nil
}

// bucketize groups mixes by their low offsetIndexBits bits, dropping
// empty buckets. Buckets are returned in ascending bucket-index order.
func bucketize(mixes []uint32, offsetIndexBits uint32) [][]uint32 {
	mask := ir.TableIndexMask(offsetIndexBits)
	buckets := make(map[uint32][]uint32)
	for _, m := range mixes {
		b := m & mask
		buckets[b] = append(buckets[b], m)
	}
	indices := make([]uint32, 0, len(buckets))
	for b := range buckets {
		indices = append(indices, b)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	out := make([][]uint32, 0, len(buckets))
	for _, b := range indices {
		out = append(out, buckets[b])
	}
	return out
}

// findOffsetTable tries to place every bucket in groups into a hash
// table of size 2^hashBits, given a fixed baseShift and offset-table
// width of 2^offsetIndexBits. Singleton buckets are placed greedily at
// the next free slot; multi-key buckets are placed by brute-force
// offset search, since a shared offset must work for every key in the
// bucket at once.
func findOffsetTable(groups [][]uint32, hashBits, offsetIndexBits, baseShift uint32, seen *bitset.Generational) ([]uint32, bool) {
	hashMask := ir.TableIndexMask(hashBits)
	offsetTableIndexMask := ir.TableIndexMask(offsetIndexBits)
	offsetTableSize := 1 << offsetIndexBits
	offsetSize := uint32(1) << hashBits

	seen.Clear()
	seen.Set(0)
	fullBefore := 1

	offsetTable := make([]uint32, offsetTableSize)

	for _, group := range groups {
		var goodOffset uint32
		found := false

		if len(group) == 1 {
			for fullBefore < int(offsetSize) && seen.Test(fullBefore) {
				fullBefore++
			}
			if fullBefore >= int(offsetSize) {
				return nil, false
			}
			goodOffset = (uint32(fullBefore) - (group[0] >> baseShift)) & hashMask
			found = true
		} else {
		offsetLoop:
			for offset := uint32(0); offset < offsetSize; offset++ {
				for _, mix := range group {
					hash := ((mix >> baseShift) + offset) & hashMask
					if seen.Test(int(hash)) {
						continue offsetLoop
					}
				}
				goodOffset = offset
				found = true
				break
			}
		}

		if !found {
			return nil, false
		}
		for _, mix := range group {
			hash := ((mix >> baseShift) + goodOffset) & hashMask
			seen.Set(int(hash))
		}
		idx := group[0] & offsetTableIndexMask
		offsetTable[idx] = goodOffset
	}

	return offsetTable, true
}

// Compile emits add(shrl(mixReg, BaseShift), table_get(offsetTable,
// and(mixReg, offset_table_index_mask))).
func (c *Compressor) Compile(tac *ir.Tac, tables *ir.Tables, mixReg ir.Reg) ir.Reg {
	offsetTable := tables.Push(c.OffsetTable)
	baseShiftImm := tac.Push(ir.Instr{Kind: ir.KindImm, Imm: c.BaseShift})
	shifted := tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.Shrl, A: mixReg, B: baseShiftImm})
	maskReg := tac.Push(ir.Instr{Kind: ir.KindTableIndexMask, Table: offsetTable})
	idx := tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.And, A: mixReg, B: maskReg})
	lookup := tac.Push(ir.Instr{Kind: ir.KindTableGet, Table: offsetTable, A: idx})
	return tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.Add, A: shifted, B: lookup})
}
