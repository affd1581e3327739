package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWei(t *testing.T) {
	t.Run("valid amounts", func(t *testing.T) {
		for _, s := range []string{"1", "1000000000000000000", "999999999999999999999999999"} {
			n, err := ParseWei(s)
			require.NoError(t, err, "amount %q", s)
			assert.Equal(t, s, n.String())
		}
	})

	t.Run("invalid amounts", func(t *testing.T) {
		for _, s := range []string{"", "0", "-1", "1.5", "1e18", "0x10", "1 000", "abc"} {
			_, err := ParseWei(s)
			assert.Error(t, err, "amount %q should be rejected", s)
		}
	})
}

func TestSumWei(t *testing.T) {
	total := SumWei([]string{"1000000000000000000", "500000000000000000", "garbage"})
	assert.Equal(t, "1500000000000000000", total.String())

	assert.Equal(t, "0", SumWei(nil).String())
}

func TestWeiToEth(t *testing.T) {
	oneEth := new(big.Int)
	oneEth.SetString("1000000000000000000", 10)
	assert.Equal(t, "1.000000", WeiToEth(oneEth))

	half := new(big.Int)
	half.SetString("500000000000000000", 10)
	assert.Equal(t, "0.500000", WeiToEth(half))
}
