package blockchain

import (
	"context"

	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain/types"
)

// AccountInfo reads an account root. ledgerIndex is "validated", "current" or "closed".
func (c *Client) AccountInfo(ctx context.Context, account, ledgerIndex string) (*types.AccountInfo, error) {
	var out types.AccountInfo
	err := c.Request(ctx, "account_info", map[string]any{
		"account":      account,
		"ledger_index": ledgerIndex,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Fee(ctx context.Context) (*types.FeeResult, error) {
	var out types.FeeResult
	if err := c.Request(ctx, "fee", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidatedLedger returns the index of the latest validated ledger.
func (c *Client) ValidatedLedger(ctx context.Context) (uint32, error) {
	var out types.LedgerResult
	if err := c.Request(ctx, "ledger", map[string]any{"ledger_index": "validated"}, &out); err != nil {
		return 0, err
	}
	return out.LedgerIndex, nil
}

// Sign asks the node to sign tx with secret. Only standalone and test nodes
// normally allow this.
func (c *Client) Sign(ctx context.Context, tx types.Payment, secret string) (*types.SignResult, error) {
	var out types.SignResult
	err := c.Request(ctx, "sign", map[string]any{
		"tx_json": tx,
		"secret":  secret,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Submit(ctx context.Context, txBlob string) (*types.SubmitResult, error) {
	var out types.SubmitResult
	if err := c.Request(ctx, "submit", map[string]any{"tx_blob": txBlob}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Tx(ctx context.Context, hash string) (*types.TxResult, error) {
	var out types.TxResult
	if err := c.Request(ctx, "tx", map[string]any{"transaction": hash}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
