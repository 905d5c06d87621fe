package ir

import "phfgen/internal/spec"

// Trace evaluates every instruction of a Tac program over a batch of
// keys at once: each row holds one instruction's result for every key
// in the batch (column-oriented — one column per key). This is the
// workhorse every search phase uses both to test whether a candidate
// selector/mixer/compressor keeps a key set distinct, and to perform
// final PHF validation.
type Trace struct {
	rows [][]uint32
}

// NewTrace evaluates tac over keys. hashTableLen is the size of the
// hash table a HashMask instruction should mask against; pass -1 if no
// HashMask instruction can legally appear yet (selector and mixer
// search trace programs that have no HashMask instruction at all).
// It is an error for the program to contain a HashMask instruction
// when hashTableLen is -1.
func NewTrace(keys []spec.Key, tac *Tac, tables *Tables, hashTableLen int) (*Trace, error) {
	width := len(keys)
	instrs := tac.Instrs()
	rows := make([][]uint32, len(instrs))

	var hashMask uint32
	if hashTableLen >= 0 {
		hashMask = uint32(hashTableLen) - 1
	}

	for i, instr := range instrs {
		row := make([]uint32, width)
		switch instr.Kind {
		case KindImm:
			for lane := range row {
				row[lane] = instr.Imm
			}
		case KindStrGet:
			indexRow := rows[instr.A]
			for lane, key := range keys {
				idx := indexRow[lane]
				if int(idx) < len(key) {
					row[lane] = uint32(key[idx])
				}
			}
		case KindStrLen:
			for lane, key := range keys {
				row[lane] = uint32(len(key))
			}
		case KindStrSum:
			for lane, key := range keys {
				var sum uint32
				for j, b := range key {
					sum += uint32(b) << (uint32(j) & instr.Mask)
				}
				row[lane] = sum
			}
		case KindTableGet:
			table := tables.Get(instr.Table)
			indexRow := rows[instr.A]
			for lane := range row {
				row[lane] = table[indexRow[lane]]
			}
		case KindTableIndexMask:
			mask := TableIndexMask(tableBits(len(tables.Get(instr.Table))))
			for lane := range row {
				row[lane] = mask
			}
		case KindHashMask:
			if hashTableLen < 0 {
				return nil, errNoHashTableLen
			}
			for lane := range row {
				row[lane] = hashMask
			}
		case KindBinOp:
			a, b := rows[instr.A], rows[instr.B]
			for lane := range row {
				row[lane] = instr.Op.Eval(a[lane], b[lane])
			}
		}
		rows[i] = row
	}

	return &Trace{rows: rows}, nil
}

// Row returns the evaluated column for register r.
func (t *Trace) Row(r Reg) []uint32 {
	return t.rows[r]
}

// tableBits returns the number of index bits a table of size n was
// allocated with (n is always a power of two).
func tableBits(n int) uint32 {
	var bits uint32
	for (1 << bits) < n {
		bits++
	}
	return bits
}
