package ethrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"smartloans/internal/domain/ledger"
	"smartloans/pkg/ethunit"
)

// Client talks JSON-RPC 2.0 to an Ethereum-style node (ganache, geth with
// unlocked accounts). It satisfies ledger.Client. No retries: a failed or
// unconfirmed call surfaces as ledger.ErrUnavailable / ErrTransferRejected
// and policy belongs to the caller.
type Client struct {
	url            string
	http           *http.Client
	confirmTimeout time.Duration
	pollEvery      time.Duration
	reqID          atomic.Uint64
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) { c.confirmTimeout = d }
}
func WithPollInterval(d time.Duration) Option { return func(c *Client) { c.pollEvery = d } }

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:            url,
		http:           &http.Client{Timeout: 15 * time.Second},
		confirmTimeout: 60 * time.Second,
		pollEvery:      500 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ ledger.Client = (*Client)(nil)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC round trip. Transport failures map to
// ledger.ErrUnavailable; node-level errors come back as *rpcError.
func (c *Client) call(ctx context.Context, method string, params ...any) (json.RawMessage, *rpcError, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.reqID.Add(1),
	})
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: rpc status %d", ledger.ErrUnavailable, resp.StatusCode)
	}
	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("%w: decode: %v", ledger.ErrUnavailable, err)
	}
	return out.Result, out.Error, nil
}

func (c *Client) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	if !ledger.ValidAddress(address) {
		return decimal.Zero, ledger.ErrInvalidAddress
	}
	res, rpcErr, err := c.call(ctx, "eth_getBalance", address, "latest")
	if err != nil {
		return decimal.Zero, err
	}
	if rpcErr != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ledger.ErrUnavailable, rpcErr.Message)
	}
	var hexWei string
	if err := json.Unmarshal(res, &hexWei); err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed balance", ledger.ErrUnavailable)
	}
	bal, err := ethunit.FromHexWei(hexWei)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	return bal, nil
}

func (c *Client) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error) {
	if !ledger.ValidAddress(from) || !ledger.ValidAddress(to) {
		return "", ledger.ErrInvalidAddress
	}
	value, err := ethunit.ToHexWei(amount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrTransferRejected, err)
	}
	tx := map[string]string{"from": from, "to": to, "value": value}
	res, rpcErr, err := c.call(ctx, "eth_sendTransaction", tx)
	if err != nil {
		return "", err
	}
	if rpcErr != nil {
		return "", fmt.Errorf("%w: %s", ledger.ErrTransferRejected, rpcErr.Message)
	}
	var txHash string
	if err := json.Unmarshal(res, &txHash); err != nil || txHash == "" {
		return "", fmt.Errorf("%w: malformed transaction hash", ledger.ErrTransferRejected)
	}
	return txHash, c.waitConfirmed(ctx, txHash)
}

type receipt struct {
	Status string `json:"status"`
}

// waitConfirmed polls for the transaction receipt until the ledger mines the
// transaction or the confirmation window elapses.
func (c *Client) waitConfirmed(ctx context.Context, txHash string) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		res, rpcErr, err := c.call(ctx, "eth_getTransactionReceipt", txHash)
		if err != nil {
			return err
		}
		if rpcErr != nil {
			return fmt.Errorf("%w: %s", ledger.ErrUnavailable, rpcErr.Message)
		}
		if len(res) > 0 && string(res) != "null" {
			var r receipt
			if err := json.Unmarshal(res, &r); err != nil {
				return fmt.Errorf("%w: malformed receipt", ledger.ErrUnavailable)
			}
			if r.Status == "0x0" {
				return fmt.Errorf("%w: transaction %s reverted", ledger.ErrTransferRejected, txHash)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: confirmation timeout for %s", ledger.ErrUnavailable, txHash)
		case <-ticker.C:
		}
	}
}
