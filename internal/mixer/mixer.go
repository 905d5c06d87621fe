// Package mixer combines several selector columns into one 32-bit
// "wide hash" per key, then finds the smallest number of low bits of
// that wide hash which still distinguish every key.
package mixer

import (
	"encoding/binary"
	"errors"

	"phfgen/internal/ir"
)

// ErrNoSolution is returned when no combination of non-decreasing
// shifts keeps every key's mix distinct.
var ErrNoSolution = errors.New("mixer: no solution")

// Mixer records the per-column shift amounts chosen, the resulting
// wide hash for every key, and the minimal bit width that keeps those
// wide hashes distinct.
type Mixer struct {
	Shifts        []uint32
	MixBits       uint32
	Mixes         []uint32
	UsesIndexZero bool
}

// Search finds a mixer over cols (one column per selector, one row per
// key). Shifts are searched in non-decreasing order column to column,
// since that is sufficient to keep a running wide-hash sum distinct
// whenever any such combination of shifts exists, and it keeps the
// search space linear in the number of columns instead of exponential.
func Search(cols [][]uint32) (*Mixer, error) {
	if len(cols) == 0 {
		panic("mixer: no columns")
	}
	width := len(cols[0])

	shifts := []uint32{0}
	mixes := append([]uint32(nil), cols[0]...)

	for i := 1; i < len(cols); i++ {
		nextMixes, shift, ok := searchColumnShift(mixes, cols[i:], shifts[len(shifts)-1])
		if !ok {
			return nil, ErrNoSolution
		}
		shifts = append(shifts, shift)
		mixes = nextMixes
	}

	mixBits := uint32(32)
	maskedSeen := make(map[uint32]struct{}, width)
bitsLoop:
	for bits := shifts[len(shifts)-1]; bits < 32; bits++ {
		mask := uint32(1)<<bits - 1
		for k := range maskedSeen {
			delete(maskedSeen, k)
		}
		for _, m := range mixes {
			mm := m & mask
			if _, dup := maskedSeen[mm]; dup {
				continue bitsLoop
			}
			maskedSeen[mm] = struct{}{}
		}
		mixBits = bits
		break
	}

	finalMask := uint32(1)<<mixBits - 1
	if mixBits == 32 {
		finalMask = 0xFFFFFFFF
	}
	_, usesZero := lookupZero(mixes, finalMask)

	return &Mixer{Shifts: shifts, MixBits: mixBits, Mixes: mixes, UsesIndexZero: usesZero}, nil
}

func lookupZero(mixes []uint32, mask uint32) (uint32, bool) {
	for _, m := range mixes {
		if m&mask == 0 {
			return 0, true
		}
	}
	return 0, false
}

// searchColumnShift tries shift amounts starting at minShift, smallest
// first, for the next column to mix in. remainingCols is that column
// followed by every column still to be mixed in after it, since the
// distinguishing check must also account for columns not yet folded
// into the running mix.
func searchColumnShift(mixes []uint32, remainingCols [][]uint32, minShift uint32) ([]uint32, uint32, bool) {
	width := len(mixes)
	col := remainingCols[0]
	tailCols := remainingCols[1:]
	newMixes := make([]uint32, width)
	seen := make(map[string]struct{}, width)
	tupleWidth := 1 + len(tailCols)
	buf := make([]byte, 4*tupleWidth)

	for shift := minShift; shift < 32; shift++ {
		for k := range seen {
			delete(seen, k)
		}
		ok := true
		for lane := 0; lane < width && ok; lane++ {
			newMix := mixes[lane] + (col[lane] << (shift & 31))
			newMixes[lane] = newMix
			binary.LittleEndian.PutUint32(buf[0:4], newMix)
			for j, tc := range tailCols {
				binary.LittleEndian.PutUint32(buf[(j+1)*4:], tc[lane])
			}
			key := string(buf)
			if _, dup := seen[key]; dup {
				ok = false
			} else {
				seen[key] = struct{}{}
			}
		}
		if ok {
			out := make([]uint32, width)
			copy(out, newMixes)
			return out, shift, true
		}
	}
	return nil, 0, false
}

// Compile emits the wrapping sum of each selector's register shifted by
// its chosen amount.
func (m *Mixer) Compile(tac *ir.Tac, selRegs []ir.Reg) ir.Reg {
	var sum ir.Reg
	for i, reg := range selRegs {
		shiftImm := tac.Push(ir.Instr{Kind: ir.KindImm, Imm: m.Shifts[i]})
		shifted := tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.Shll, A: reg, B: shiftImm})
		if i == 0 {
			sum = shifted
			continue
		}
		sum = tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.Add, A: sum, B: shifted})
	}
	return sum
}
