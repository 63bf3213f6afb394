package ledger

import (
	"context"
	"errors"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable: the ledger network could not be reached, or a submitted
	// transfer was never confirmed within the configured window.
	ErrUnavailable = errors.New("ledger unavailable")
	// ErrTransferRejected: the ledger accepted the request but rejected the
	// transfer (bad address, reverted transaction, insufficient on-chain funds).
	ErrTransferRejected = errors.New("transfer rejected by ledger")
	ErrInvalidAddress   = errors.New("invalid ledger address")
)

var reAddress = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func ValidAddress(addr string) bool { return reAddress.MatchString(addr) }

// Client is the capability surface of the external ledger. Implementations
// perform no retries; retry policy belongs to the caller.
type Client interface {
	// BalanceOf reads the address's current confirmed balance.
	BalanceOf(ctx context.Context, address string) (decimal.Decimal, error)
	// Transfer submits a value transfer and blocks until the ledger durably
	// confirms it, returning the opaque confirmation id (transaction hash).
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error)
}
