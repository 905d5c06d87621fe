package ir

// Tac is an append-only three-address-code program: each Instr is
// assigned the next Reg in sequence, and instructions may only refer
// to earlier registers.
type Tac struct {
	instrs []Instr
}

// NewTac returns an empty program.
func NewTac() *Tac {
	return &Tac{}
}

// Instrs returns the program in emission order. The last instruction
// is always the program's result register.
func (t *Tac) Instrs() []Instr {
	return t.instrs
}

// Get returns the instruction that defines r.
func (t *Tac) Get(r Reg) Instr {
	return t.instrs[r]
}

// LastReg returns the register of the most recently pushed
// instruction.
func (t *Tac) LastReg() Reg {
	return Reg(len(t.instrs) - 1)
}

// Push appends instr and returns the register it defines.
func (t *Tac) Push(instr Instr) Reg {
	t.instrs = append(t.instrs, instr)
	return t.LastReg()
}

// PushExpr flattens e onto the end of the program, returning its
// result register. Var leaves must already be bound in varToReg.
func (t *Tac) PushExpr(e Expr, varToReg map[Var]Reg) Reg {
	return e.flatten(t, varToReg)
}

// LocalValueNumbering rewrites the program, hash-consing identical
// instructions (after renaming their operands through the registers
// already produced by this pass) into a single shared register. It
// returns the rewritten program and the old-register-to-new-register
// map used to perform the rewrite, which callers need to translate
// any registers they were holding into the new program.
func (t *Tac) LocalValueNumbering() (*Tac, map[Reg]Reg) {
	instrToReg := make(map[Instr]Reg, len(t.instrs))
	oldToNew := make(map[Reg]Reg, len(t.instrs))
	newTac := NewTac()

	for i, instr := range t.instrs {
		renamed := instr
		switch instr.Kind {
		case KindStrGet, KindTableGet:
			renamed.A = oldToNew[instr.A]
		case KindBinOp:
			renamed.A = oldToNew[instr.A]
			renamed.B = oldToNew[instr.B]
		}

		newReg, ok := instrToReg[renamed]
		if !ok {
			newReg = newTac.Push(renamed)
			instrToReg[renamed] = newReg
		}
		oldToNew[Reg(i)] = newReg
	}

	return newTac, oldToNew
}

// UnflattenDAG rebuilds the program as an Exprs set: any register used
// more than once, other than an immediate, is promoted to a named Var,
// so the resulting
// expression forest shares subexpressions instead of duplicating them.
// The final entry in the returned Exprs is always the program's
// result expression.
func (t *Tac) UnflattenDAG() *Exprs {
	refcount := make([]int, len(t.instrs))
	for _, instr := range t.instrs {
		switch instr.Kind {
		case KindStrGet, KindTableGet:
			refcount[instr.A]++
		case KindBinOp:
			refcount[instr.A]++
			refcount[instr.B]++
		}
	}

	regToVar := make(map[Reg]Var)
	exprs := NewExprs()
	for i, rc := range refcount {
		reg := Reg(i)
		if rc > 1 && t.instrs[i].Kind != KindImm {
			v := exprs.Push(t.UnflattenTree(reg, regToVar))
			regToVar[reg] = v
		}
	}
	exprs.Push(t.UnflattenTree(t.LastReg(), regToVar))
	return exprs
}

// UnflattenTree rebuilds the expression rooted at r, substituting a Var
// leaf for any register already bound in regToVar.
func (t *Tac) UnflattenTree(r Reg, regToVar map[Reg]Var) Expr {
	if v, ok := regToVar[r]; ok {
		return VarE(v)
	}
	instr := t.instrs[r]
	switch instr.Kind {
	case KindImm:
		return ImmE(instr.Imm)
	case KindStrGet:
		return StrGetE(t.UnflattenTree(instr.A, regToVar))
	case KindStrLen:
		return StrLenE()
	case KindStrSum:
		return StrSumE(instr.Mask)
	case KindTableGet:
		return TableGetE(instr.Table, t.UnflattenTree(instr.A, regToVar))
	case KindTableIndexMask:
		return TableIndexMaskE(instr.Table)
	case KindHashMask:
		return HashMaskE()
	case KindBinOp:
		return BinOpE(instr.Op, t.UnflattenTree(instr.A, regToVar), t.UnflattenTree(instr.B, regToVar))
	default:
		panic("ir: unknown InstrKind")
	}
}
