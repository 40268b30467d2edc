package sat

import "strconv"

// Var is a propositional variable, numbered from 0.
type Var int32

// Pos returns the positive literal of v.
func (v Var) Pos() Lit { return Lit(v << 1) }

// Neg returns the negative literal of v.
func (v Var) Neg() Lit { return Lit(v<<1 | 1) }

// Int returns the 1-based DIMACS number of v.
func (v Var) Int() int { return int(v) + 1 }

func (v Var) String() string { return strconv.Itoa(v.Int()) }

// Lit is a literal, encoded as 2*var for the positive polarity and
// 2*var+1 for the negative one. The encoding makes negation a single
// bit flip and gives every literal a dense index for watch lists and
// caches.
type Lit int32

// MkLit returns the literal of v with the given polarity, neg meaning
// the negated literal.
func MkLit(v Var, neg bool) Lit {
	if neg {
		return v.Neg()
	}
	return v.Pos()
}

// LitFromInt converts a non-zero DIMACS integer to a Lit.
func LitFromInt(i int) Lit {
	if i < 0 {
		return Var(-i - 1).Neg()
	}
	return Var(i - 1).Pos()
}

// Var returns the variable of l.
func (l Lit) Var() Var { return Var(l >> 1) }

// Neg returns the complement of l.
func (l Lit) Neg() Lit { return l ^ 1 }

// Sign reports whether l is a negative literal.
func (l Lit) Sign() bool { return l&1 == 1 }

// Index returns the dense index of l, usable as a slice key.
func (l Lit) Index() int { return int(l) }

// Int returns the signed DIMACS number of l.
func (l Lit) Int() int {
	n := int(l>>1) + 1
	if l.Sign() {
		return -n
	}
	return n
}

func (l Lit) String() string { return strconv.Itoa(l.Int()) }

// LBool is a three-valued truth assignment.
type LBool int8

const (
	Unknown LBool = 0
	True    LBool = 1
	False   LBool = -1
)

func (b LBool) String() string {
	switch b {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}
