package chain

import (
	"math/big"
	"strings"
)

// Divisor exponents per chain family, per spec.md §4.1's decode table.
const (
	DivisorEVM  = 18 // wei -> ether, AION/QUARK/THETA follow the same convention
	DivisorBTC  = 8  // satoshi -> BTC
	DivisorTRX  = 6  // sun -> TRX
	DivisorALGO = 6  // microalgo -> ALGO
	DivisorICX  = 18 // loop -> ICX
)

// DecimalFromHex converts a "0x"-prefixed hex integer string in minor
// units to a fixed-precision decimal string, dividing by 10^exp. Returns
// ok=false on any parse failure, which the caller treats as a non-fatal
// "amount_decimal remains absent" per spec.md §4.1.
func DecimalFromHex(hexValue string, exp int) (string, bool) {
	v := strings.TrimPrefix(strings.TrimPrefix(hexValue, "0x"), "0X")
	if v == "" {
		return "", false
	}
	n, ok := new(big.Int).SetString(v, 16)
	if !ok {
		return "", false
	}
	return scale(n, exp), true
}

// DecimalFromInt converts a base-10 integer string in minor units to a
// fixed-precision decimal string, dividing by 10^exp.
func DecimalFromInt(decValue string, exp int) (string, bool) {
	decValue = strings.TrimSpace(decValue)
	if decValue == "" {
		return "", false
	}
	n, ok := new(big.Int).SetString(decValue, 10)
	if !ok {
		return "", false
	}
	return scale(n, exp), true
}

// scale renders n / 10^exp as a decimal string with at least one
// fractional digit, trimming trailing zeros beyond that.
func scale(n *big.Int, exp int) string {
	neg := n.Sign() < 0
	abs := new(big.Int).Abs(n)

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	q, r := new(big.Int).QuoRem(abs, divisor, new(big.Int))

	frac := r.String()
	if pad := exp - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	out := q.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
