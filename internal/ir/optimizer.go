package ir

// Optimize runs the full cleanup pipeline over a finished program: local
// value numbering hash-conses any duplicate instructions the selector,
// mixer, and compressor compile steps left behind (the same register
// program, e.g., often computes str_len() more than once), then the
// result is unflattened into an expression forest so constant
// propagation can fold the identity/annihilation patterns that a zero
// shift or zero offset produces, before being flattened back into a
// fresh program. It returns the optimized program and the register
// holding what was tac.LastReg() in the input program.
func Optimize(tac *Tac) (*Tac, Reg) {
	lvnTac, _ := tac.LocalValueNumbering()
	exprs := lvnTac.UnflattenDAG()

	out := NewTac()
	varToReg := make(map[Var]Reg, exprs.Len())
	var last Reg
	for i := 0; i < exprs.Len(); i++ {
		v := Var(i)
		last = out.PushExpr(ConstantPropagation(exprs.Get(v)), varToReg)
		varToReg[v] = last
	}
	return out, last
}

// ConstantPropagation simplifies the identity and annihilation patterns
// that selector/mixer/compressor compilation tends to produce when a
// shift amount or an Index offset happens to be zero: x+0, x-0, x<<0,
// and x>>0 all fold to x, and x&0 folds to the immediate 0.
func ConstantPropagation(e Expr) Expr {
	return e.Transform(func(top Expr) Expr {
		if top.Kind != EBinOp {
			return top
		}
		switch top.Op {
		case Add, Sub, Shll, Shrl:
			if top.B.Kind == EImm && top.B.Imm == 0 {
				return *top.A
			}
		case And:
			if (top.A.Kind == EImm && top.A.Imm == 0) || (top.B.Kind == EImm && top.B.Imm == 0) {
				return ImmE(0)
			}
		}
		return top
	})
}
