package service

import "math/big"

// proportionalCut returns stake's share of profit relative to total. The
// product stake*profit can overflow int64 for large bankrolls, so it runs
// through big.Int. The quotient truncates toward zero and is then stripped to
// a multiple of 10 internal units, also toward zero, which keeps the summed
// cuts bounded by the profit being distributed for either sign.
func proportionalCut(stake, profit, total int64) int64 {
	if total == 0 || stake == 0 || profit == 0 {
		return 0
	}

	num := new(big.Int).Mul(big.NewInt(stake), big.NewInt(profit))
	cut := num.Quo(num, big.NewInt(total)).Int64()
	return cut - cut%10
}

// percentageOf returns pct percent of amount, truncated toward zero, through
// big.Int for the same overflow reason.
func percentageOf(amount, pct int64) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}

	num := new(big.Int).Mul(big.NewInt(amount), big.NewInt(pct))
	return num.Quo(num, big.NewInt(100)).Int64()
}
