package ledgermock

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"smartloans/internal/domain/ledger"
)

var _ ledger.Client = (*Client)(nil)

var errUnimplemented = errors.New("ledgermock: method not implemented")

// Client is a function-backed mock that satisfies ledger.Client.
type Client struct {
	BalanceOfFn func(ctx context.Context, address string) (decimal.Decimal, error)
	TransferFn  func(ctx context.Context, from, to string, amount decimal.Decimal) (string, error)

	// Calls records every submitted transfer for assertion convenience.
	Calls []TransferCall
}

type TransferCall struct {
	From, To string
	Amount   decimal.Decimal
}

func (m *Client) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	if m.BalanceOfFn != nil {
		return m.BalanceOfFn(ctx, address)
	}
	return decimal.Zero, errUnimplemented
}

func (m *Client) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error) {
	m.Calls = append(m.Calls, TransferCall{From: from, To: to, Amount: amount})
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	return "", errUnimplemented
}
