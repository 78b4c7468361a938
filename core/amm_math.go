package core

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Package-level arithmetic kernel for the CFMM formulas in spec §4.1.
//
// Every intermediate product is computed in math/big so that a chain of
// up to four u64 operands (reserve * reserve * amount * total-unit, the
// worst case in CalPoolUnit) can never wrap, mirroring the teacher's own
// use of big.Int for amounts that must not silently overflow
// (common_structs.go's Call/CreateContract take *big.Int; Ledger.MintBig
// takes *big.Int). Division truncates, matching big.Int.Div semantics.
// Narrowing a final big.Int result back down to the realized uint64
// ledger balance saturates at math.MaxUint64 via uint256, rather than
// wrapping, as a belt-and-braces contract even though no realistic
// reserve pair can produce an unnarrowable result.

var maxUint64Big = new(big.Int).SetUint64(^uint64(0))

func bi(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

// satMulBig multiplies an arbitrary number of big.Int factors; if any
// factor is zero the product is zero without touching the rest (mirrors
// spec's "division by zero returns zero" no-contribution rule extended
// to multiplication by zero).
func satMulBig(factors ...*big.Int) *big.Int {
	out := big.NewInt(1)
	for _, f := range factors {
		if f.Sign() == 0 {
			return big.NewInt(0)
		}
		out.Mul(out, f)
	}
	return out
}

// divBig truncates and returns zero for division by zero, per spec.
func divBig(num, den *big.Int) *big.Int {
	if den.Sign() == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Div(num, den)
}

// narrowU64 saturates a (non-negative) big.Int down to uint64. A real
// 128-bit ledger balance would saturate at 2^128-1; the realized
// on-ledger amounts in this module are uint64 (see DESIGN.md), so the
// saturation ceiling is math.MaxUint64.
func narrowU64(v *big.Int) uint64 {
	if v.Sign() <= 0 {
		return 0
	}
	if v.Cmp(maxUint64Big) >= 0 {
		return ^uint64(0)
	}
	var u uint256.Int
	u.SetFromBig(v)
	return u.Uint64()
}

// CalSwapResult implements the swap formula y = x*X*Y/(x+X)^2 and its
// paired fee phi = x^2*Y/(x+X)^2. Returns (0,0) if any of X, Y, x is
// zero.
func CalSwapResult(reserveIn, reserveOut, amountIn uint64) (result, fee uint64) {
	if reserveIn == 0 || reserveOut == 0 || amountIn == 0 {
		return 0, 0
	}
	X := bi(reserveIn)
	Y := bi(reserveOut)
	x := bi(amountIn)
	denom := new(big.Int).Add(x, X)
	denom.Mul(denom, denom) // (x+X)^2

	y := divBig(satMulBig(x, X, Y), denom)
	phi := divBig(satMulBig(x, x, Y), denom)
	return narrowU64(y), narrowU64(phi)
}

// CalPoolUnit implements the LP-unit formula on add. F,R are
// pre-reserves, f,r are the deposits, total is the existing total
// unit. Returns (newTotal, added).
func CalPoolUnit(total, F, R, f, r uint64) (newTotal, added uint64) {
	if f == 0 && r == 0 {
		return total, 0
	}
	if F+f == 0 || R+r == 0 {
		return total, 0
	}
	if F == 0 || R == 0 {
		// bootstrap: total == add == fis_amount
		return total + f, f
	}

	Fb, Rb, fb, rb, Pb := bi(F), bi(R), bi(f), bi(r), bi(total)

	// raw = P*(F*r + f*R) / (2*R*F)
	num := new(big.Int).Add(satMulBig(Fb, rb), satMulBig(fb, Rb))
	num.Mul(num, Pb)
	den := new(big.Int).Mul(big.NewInt(2), satMulBig(Rb, Fb))
	raw := divBig(num, den)

	// slip magnitude a = |F*r - f*R|
	fr := satMulBig(Fb, rb)
	frAlt := satMulBig(fb, Rb)
	a := new(big.Int).Sub(fr, frAlt)
	a.Abs(a)

	// adj = raw*a / ((f+F)*(r+R))
	adjDen := satMulBig(new(big.Int).Add(fb, Fb), new(big.Int).Add(rb, Rb))
	adj := divBig(satMulBig(raw, a), adjDen)

	add := new(big.Int).Sub(raw, adj)
	if add.Sign() < 0 {
		add.SetInt64(0)
	}

	addU := narrowU64(add)
	return total + addU, addU
}

// CalRemoveLiquidity implements the remove formula (spec §4.1). Given
// total units P, units to remove u, units of that to swap s, and
// pre-reserves F,R, returns the proportional withdrawal amounts and the
// swap-leg input amount.
func CalRemoveLiquidity(total, rmUnit, swapUnit, F, R uint64, inputIsFis bool) (wF, wR, swapIn uint64) {
	if total == 0 {
		return 0, 0, 0
	}
	u := rmUnit
	if u > total {
		u = total
	}
	s := swapUnit
	if s > u {
		s = u
	}

	Pb := bi(total)
	ub := bi(u)
	sb := bi(s)

	wF = narrowU64(divBig(satMulBig(ub, bi(F)), Pb))
	wR = narrowU64(divBig(satMulBig(ub, bi(R)), Pb))

	if inputIsFis {
		swapIn = narrowU64(divBig(satMulBig(sb, bi(F)), Pb))
	} else {
		swapIn = narrowU64(divBig(satMulBig(sb, bi(R)), Pb))
	}
	return wF, wR, swapIn
}
