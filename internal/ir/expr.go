package ir

// Var names a shared subexpression inside an Exprs forest.
type Var int

// ExprKind discriminates the union-style fields of an Expr.
type ExprKind int

const (
	EVar ExprKind = iota
	EReg
	EImm
	EStrGet
	EStrLen
	EStrSum
	ETableGet
	ETableIndexMask
	EHashMask
	EBinOp
)

// Expr is a tree (or, via Var leaves inside an Exprs forest, a DAG)
// form of a Tac program. It exists so passes like constant propagation
// can pattern-match and rewrite structure that is awkward to see in
// flat three-address code.
type Expr struct {
	Kind  ExprKind
	Var   Var
	Reg   Reg
	Imm   uint32
	Mask  uint32
	Table Table
	Op    BinOp
	A, B  *Expr
}

func VarE(v Var) Expr             { return Expr{Kind: EVar, Var: v} }
func RegE(r Reg) Expr             { return Expr{Kind: EReg, Reg: r} }
func ImmE(v uint32) Expr          { return Expr{Kind: EImm, Imm: v} }
func StrLenE() Expr               { return Expr{Kind: EStrLen} }
func StrSumE(mask uint32) Expr    { return Expr{Kind: EStrSum, Mask: mask} }
func TableIndexMaskE(t Table) Expr { return Expr{Kind: ETableIndexMask, Table: t} }
func HashMaskE() Expr             { return Expr{Kind: EHashMask} }

func StrGetE(index Expr) Expr {
	return Expr{Kind: EStrGet, A: &index}
}

func TableGetE(t Table, index Expr) Expr {
	return Expr{Kind: ETableGet, Table: t, A: &index}
}

func BinOpE(op BinOp, a, b Expr) Expr {
	return Expr{Kind: EBinOp, Op: op, A: &a, B: &b}
}

func AddE(a, b Expr) Expr  { return BinOpE(Add, a, b) }
func SubE(a, b Expr) Expr  { return BinOpE(Sub, a, b) }
func AndE(a, b Expr) Expr  { return BinOpE(And, a, b) }
func ShllE(a, b Expr) Expr { return BinOpE(Shll, a, b) }
func ShrlE(a, b Expr) Expr { return BinOpE(Shrl, a, b) }

// SumE folds a non-empty list of expressions with Add, left to right.
// An empty list sums to the immediate 0.
func SumE(terms []Expr) Expr {
	if len(terms) == 0 {
		return ImmE(0)
	}
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = AddE(acc, t)
	}
	return acc
}

// Transform rewrites e bottom-up: every child is transformed first,
// then f is applied to the resulting node. Passes like constant
// propagation are written as an f that only looks at the immediate
// node, relying on Transform to have already simplified its children.
func (e Expr) Transform(f func(Expr) Expr) Expr {
	var rewritten Expr
	switch e.Kind {
	case EVar, EReg, EImm, EStrLen, EStrSum, ETableIndexMask, EHashMask:
		rewritten = e
	case EStrGet:
		rewritten = StrGetE(e.A.Transform(f))
	case ETableGet:
		rewritten = TableGetE(e.Table, e.A.Transform(f))
	case EBinOp:
		rewritten = BinOpE(e.Op, e.A.Transform(f), e.B.Transform(f))
	default:
		panic("ir: unknown ExprKind")
	}
	return f(rewritten)
}

// flatten lowers e into tac, returning the register holding its value.
// Var leaves are resolved through varToReg, which must already contain
// an entry for every Var that appears in e.
func (e Expr) flatten(tac *Tac, varToReg map[Var]Reg) Reg {
	switch e.Kind {
	case EVar:
		return varToReg[e.Var]
	case EReg:
		return e.Reg
	case EImm:
		return tac.Push(Instr{Kind: KindImm, Imm: e.Imm})
	case EStrGet:
		return tac.Push(Instr{Kind: KindStrGet, A: e.A.flatten(tac, varToReg)})
	case EStrLen:
		return tac.Push(Instr{Kind: KindStrLen})
	case EStrSum:
		return tac.Push(Instr{Kind: KindStrSum, Mask: e.Mask})
	case ETableGet:
		return tac.Push(Instr{Kind: KindTableGet, Table: e.Table, A: e.A.flatten(tac, varToReg)})
	case ETableIndexMask:
		return tac.Push(Instr{Kind: KindTableIndexMask, Table: e.Table})
	case EHashMask:
		return tac.Push(Instr{Kind: KindHashMask})
	case EBinOp:
		a := e.A.flatten(tac, varToReg)
		b := e.B.flatten(tac, varToReg)
		return tac.Push(Instr{Kind: KindBinOp, Op: e.Op, A: a, B: b})
	default:
		panic("ir: unknown ExprKind")
	}
}

// Exprs is a forest of expressions sharing Var leaves: every entry may
// reference Vars bound by entries pushed earlier. The last entry
// pushed is conventionally the forest's overall result.
type Exprs struct {
	exprs []Expr
}

func NewExprs() *Exprs {
	return &Exprs{}
}

// Push appends e to the forest and returns a Var naming it, so later
// entries can reference it as a shared subexpression.
func (es *Exprs) Push(e Expr) Var {
	es.exprs = append(es.exprs, e)
	return Var(len(es.exprs) - 1)
}

func (es *Exprs) Get(v Var) Expr {
	return es.exprs[v]
}

func (es *Exprs) Len() int {
	return len(es.exprs)
}

// Flatten lowers the whole forest into tac in order, binding each
// pushed expression's Var to the register it flattens to so later
// entries can resolve their Var references. It returns the register of
// the forest's last entry.
func (es *Exprs) Flatten(tac *Tac) Reg {
	varToReg := make(map[Var]Reg, len(es.exprs))
	var last Reg
	for i, e := range es.exprs {
		last = e.flatten(tac, varToReg)
		varToReg[Var(i)] = last
	}
	return last
}
