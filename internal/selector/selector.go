// Package selector implements the per-key integer extractors that feed
// the mixer, and the staged search that picks a tuple of them able to
// distinguish every key in a spec.
package selector

import (
	"phfgen/internal/ir"
	"phfgen/internal/spec"
)

// Kind discriminates a Selector's union-style fields.
type Kind int

const (
	Len Kind = iota
	Index
	Sub
	And
	Shrl
	StrSum
	Table
)

// Selector is a cheap, per-key integer extractor. Index/Sub/And/Shrl
// and StrSum carry a parameter K (a byte position, an offset back from
// the key's end, an AND mask, a shift amount, or a StrSum mix mask,
// respectively); Table carries a per-length redirection table indexed
// by key length.
type Selector struct {
	Kind  Kind
	K     uint32
	Table []uint32
}

// Eval computes the selector's column over keys. Callers are expected
// to have already established that every offset/index this selector
// touches is in range for every key (selector search only ever builds
// selectors that satisfy this for the spec they were searched over).
func (s Selector) Eval(keys []spec.Key) []uint32 {
	out := make([]uint32, len(keys))
	switch s.Kind {
	case Len:
		for i, k := range keys {
			out[i] = uint32(len(k))
		}
	case Index:
		for i, k := range keys {
			out[i] = uint32(k[s.K])
		}
	case Sub:
		for i, k := range keys {
			out[i] = uint32(k[uint32(len(k))-s.K])
		}
	case And:
		for i, k := range keys {
			out[i] = uint32(k[uint32(len(k))&s.K])
		}
	case Shrl:
		for i, k := range keys {
			out[i] = uint32(k[uint32(len(k))>>(s.K&31)])
		}
	case StrSum:
		for i, k := range keys {
			var sum uint32
			for j, b := range k {
				sum += uint32(b) << (uint32(j) & s.K)
			}
			out[i] = sum
		}
	case Table:
		mask := ir.TableIndexMask(tableBits(len(s.Table)))
		for i, k := range keys {
			idx := s.Table[uint32(len(k))&mask]
			out[i] = uint32(k[idx])
		}
	}
	return out
}

// tableBits returns the number of index bits a table of size n was
// allocated with (n is always a power of two), matching the mask the
// IR's KindTableIndexMask instruction computes for the same table.
func tableBits(n int) uint32 {
	var bits uint32
	for (1 << bits) < n {
		bits++
	}
	return bits
}

// Compile lowers the selector into tac, allocating a per-length
// redirection table in tables if it is a Table selector.
func (s Selector) Compile(tac *ir.Tac, tables *ir.Tables) ir.Reg {
	switch s.Kind {
	case Len:
		return tac.Push(ir.Instr{Kind: ir.KindStrLen})
	case Index:
		idx := tac.Push(ir.Instr{Kind: ir.KindImm, Imm: s.K})
		return tac.Push(ir.Instr{Kind: ir.KindStrGet, A: idx})
	case Sub:
		lenReg := tac.Push(ir.Instr{Kind: ir.KindStrLen})
		kReg := tac.Push(ir.Instr{Kind: ir.KindImm, Imm: s.K})
		idxReg := tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.Sub, A: lenReg, B: kReg})
		return tac.Push(ir.Instr{Kind: ir.KindStrGet, A: idxReg})
	case And:
		lenReg := tac.Push(ir.Instr{Kind: ir.KindStrLen})
		kReg := tac.Push(ir.Instr{Kind: ir.KindImm, Imm: s.K})
		idxReg := tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.And, A: lenReg, B: kReg})
		return tac.Push(ir.Instr{Kind: ir.KindStrGet, A: idxReg})
	case Shrl:
		lenReg := tac.Push(ir.Instr{Kind: ir.KindStrLen})
		kReg := tac.Push(ir.Instr{Kind: ir.KindImm, Imm: s.K})
		idxReg := tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.Shrl, A: lenReg, B: kReg})
		return tac.Push(ir.Instr{Kind: ir.KindStrGet, A: idxReg})
	case StrSum:
		return tac.Push(ir.Instr{Kind: ir.KindStrSum, Mask: s.K})
	case Table:
		t := tables.Push(s.Table)
		lenReg := tac.Push(ir.Instr{Kind: ir.KindStrLen})
		maskReg := tac.Push(ir.Instr{Kind: ir.KindTableIndexMask, Table: t})
		maskedLen := tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.And, A: lenReg, B: maskReg})
		tableReg := tac.Push(ir.Instr{Kind: ir.KindTableGet, Table: t, A: maskedLen})
		return tac.Push(ir.Instr{Kind: ir.KindStrGet, A: tableReg})
	default:
		panic("selector: unknown Kind")
	}
}
