// Package ir implements the register-based three-address code that
// every selector, mixer, and compressor compiles into, plus the
// column-oriented tracer used to evaluate it over a batch of keys.
package ir

import "errors"

// errNoHashTableLen is returned by Trace when a HashMask instruction
// is encountered but no hash table length was supplied to evaluate it
// against.
var errNoHashTableLen = errors.New("ir: HashMask instruction with no hash table length")

// Reg names a value produced by some earlier instruction in a Tac
// program. Reg(i) is always the result of Tac.Instrs()[i].
type Reg int

// Table names a constant lookup table held by a Tables set.
type Table int

// BinOp is a binary integer opcode. All arithmetic wraps modulo 2^32;
// shift amounts are always in [0, 31] by construction of the selectors
// and mixers that emit them.
type BinOp int

const (
	Add BinOp = iota
	Sub
	And
	Shll
	Shrl
)

// Eval applies the opcode to two 32-bit operands with wrapping
// arithmetic (Go's unsigned integer overflow is already wraparound, so
// no explicit wrapping calls are required).
func (op BinOp) Eval(a, b uint32) uint32 {
	switch op {
	case Add:
		return a + b
	case Sub:
		return a - b
	case And:
		return a & b
	case Shll:
		return a << (b & 31)
	case Shrl:
		return a >> (b & 31)
	default:
		panic("ir: unknown BinOp")
	}
}

// TableIndexMask returns the mask that keeps a value within the bounds
// of a table with 2^indexBits entries.
func TableIndexMask(indexBits uint32) uint32 {
	return uint32(1<<indexBits) - 1
}
