package phf

import (
	"github.com/pkg/errors"

	"phfgen/internal/compressor"
	compileerrors "phfgen/internal/errors"
	"phfgen/internal/ir"
	"phfgen/internal/mixer"
	"phfgen/internal/selector"
	"phfgen/internal/spec"
)

// Compile runs the full pipeline — selector search, mixer search, an
// optional compressor search, and PHF assembly/validation — over sp.
// It returns a typed *compileerrors.CompileError identifying which
// phase failed (validation failures included, as ValidationFailed), or
// a wrapped generic error if tracing the selector columns fails.
func Compile(sp *spec.Spec) (*Phf, error) {
	sels, ok := selector.Search(sp)
	if !ok {
		return nil, compileerrors.New(compileerrors.SelectorSearchFailed, "no selector tuple distinguishes the given keys")
	}

	tac := ir.NewTac()
	tables := ir.NewTables()
	selRegs := make([]ir.Reg, len(sels))
	for i, sel := range sels {
		selRegs[i] = sel.Compile(tac, tables)
	}

	trace, err := ir.NewTrace(sp.InterpretedKeys, tac, tables, -1)
	if err != nil {
		return nil, errors.Wrap(err, "tracing selector columns")
	}
	cols := make([][]uint32, len(selRegs))
	for i, r := range selRegs {
		cols[i] = trace.Row(r)
	}

	mx, err := mixer.Search(cols)
	if err != nil {
		return nil, compileerrors.New(compileerrors.MixerSearchFailed, err.Error())
	}
	mixReg := mx.Compile(tac, selRegs)

	hashBits := sp.MinHashBits
	finalReg := mixReg
	needsCompressor := mx.MixBits > sp.MinHashBits || mx.UsesIndexZero

	if needsCompressor {
		maxBits := mx.MixBits
		if sp.MinHashBits > maxBits {
			maxBits = sp.MinHashBits
		}
		found := false
		for bits := sp.MinHashBits; bits <= maxBits && !found; bits++ {
			cmp, err := compressor.Search(bits, mx)
			if err != nil {
				continue
			}
			hashBits = bits
			finalReg = cmp.Compile(tac, tables, mixReg)
			found = true
		}
		if !found {
			return nil, compileerrors.New(compileerrors.CompressorSearchFailed, "no offset table at any hash width up to mix width")
		}
	}

	hashMaskReg := tac.Push(ir.Instr{Kind: ir.KindHashMask})
	finalReg = tac.Push(ir.Instr{Kind: ir.KindBinOp, Op: ir.And, A: finalReg, B: hashMaskReg})

	optimized, optimizedFinalReg := ir.Optimize(tac)

	result, err := New(sp, optimized, tables, hashBits, optimizedFinalReg)
	if err != nil {
		return nil, compileerrors.New(compileerrors.ValidationFailed, err.Error())
	}
	return result, nil
}
