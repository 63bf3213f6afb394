package ethunit

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// WeiPerEther: 1 ether = 10^18 wei.
const weiDecimals = 18

var ErrSubWeiPrecision = errors.New("amount has sub-wei precision")

// ToWei converts a human-scale ether amount to wei without any float math.
// Amounts finer than 1 wei are rejected, not rounded.
func ToWei(amount decimal.Decimal) (*big.Int, error) {
	shifted := amount.Shift(weiDecimals)
	if !shifted.IsInteger() {
		return nil, ErrSubWeiPrecision
	}
	return shifted.BigInt(), nil
}

// FromWei converts a wei quantity back to an exact ether-scale decimal.
func FromWei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -weiDecimals)
}

// FromHexWei parses a 0x-prefixed hex wei quantity (JSON-RPC encoding).
func FromHexWei(s string) (decimal.Decimal, error) {
	t := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if t == "" {
		return decimal.Zero, fmt.Errorf("empty hex quantity %q", s)
	}
	wei, ok := new(big.Int).SetString(t, 16)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid hex quantity %q", s)
	}
	return FromWei(wei), nil
}

// ToHexWei renders an ether amount as the 0x-hex wei quantity JSON-RPC expects.
func ToHexWei(amount decimal.Decimal) (string, error) {
	wei, err := ToWei(amount)
	if err != nil {
		return "", err
	}
	return "0x" + wei.Text(16), nil
}
