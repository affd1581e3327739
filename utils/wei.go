package utils

import (
	"fmt"
	"math/big"
)

// ParseWei validates a canonical wei amount: a base-10 unsigned integer
// string with no sign, exponent, or decimal point. Bets carry wei as
// strings end to end so no float ever touches the amount.
func ParseWei(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("amount_wei is required")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("amount_wei %q is not a base-10 integer", s)
	}
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("amount_wei must be positive")
	}
	return n, nil
}

// SumWei adds decimal wei strings, skipping any that fail to parse.
func SumWei(amounts []string) *big.Int {
	total := new(big.Int)
	for _, a := range amounts {
		n, ok := new(big.Int).SetString(a, 10)
		if !ok {
			continue
		}
		total.Add(total, n)
	}
	return total
}

// WeiToEth renders wei as a display ETH string with up to 6 decimals.
func WeiToEth(wei *big.Int) string {
	eth := new(big.Rat).SetFrac(wei, big.NewInt(1e18))
	return eth.FloatString(6)
}
