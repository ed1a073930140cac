package blockchain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain/types"
)

var (
	ErrNoSigner  = errors.New("no signer configured for ledger submissions")
	ErrTxExpired = errors.New("transaction expired before validation")
)

// EngineError reports a transaction the ledger rejected, either at submit
// time or in its validated outcome.
type EngineError struct {
	Result  types.EngineResult
	Message string
}

func (e *EngineError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("transaction failed: %s", e.Result)
	}
	return fmt.Sprintf("transaction failed: %s: %s", e.Result, e.Message)
}

// Autofill sets Sequence, Fee and LastLedgerSequence when they are zero.
func (c *Client) Autofill(ctx context.Context, tx *types.Payment) error {
	if tx.TransactionType == "" {
		tx.TransactionType = "Payment"
	}
	if tx.Sequence == 0 {
		info, err := c.AccountInfo(ctx, tx.Account, "current")
		if err != nil {
			return err
		}
		tx.Sequence = info.AccountData.Sequence
	}
	if tx.Fee == "" || tx.LastLedgerSequence == 0 {
		fee, err := c.Fee(ctx)
		if err != nil {
			return err
		}
		if tx.Fee == "" {
			tx.Fee = strconv.FormatInt(c.pickFee(fee.Drops), 10)
		}
		if tx.LastLedgerSequence == 0 {
			tx.LastLedgerSequence = fee.LedgerCurrentIndex + c.opts.LedgerOffset
		}
	}
	return nil
}

func (c *Client) pickFee(d types.FeeDrops) int64 {
	fee, err := strconv.ParseInt(d.OpenLedgerFee, 10, 64)
	if err != nil || fee <= 0 {
		fee, err = strconv.ParseInt(d.BaseFee, 10, 64)
		if err != nil || fee <= 0 {
			fee = 10
		}
	}
	if fee > c.opts.MaxFeeDrops {
		fee = c.opts.MaxFeeDrops
	}
	return fee
}

// SubmitPayment autofills, signs and submits tx, then waits until it is in a
// validated ledger. It returns the transaction hash.
func (c *Client) SubmitPayment(ctx context.Context, tx types.Payment) (string, error) {
	return c.SubmitAndWait(ctx, tx, c.signer)
}

func (c *Client) SubmitAndWait(ctx context.Context, tx types.Payment, signer Signer) (string, error) {
	if signer == nil {
		return "", ErrNoSigner
	}
	if err := c.Autofill(ctx, &tx); err != nil {
		return "", fmt.Errorf("autofill: %w", err)
	}

	signed, err := signer.Sign(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}

	res, err := c.Submit(ctx, signed.TxBlob)
	if err != nil {
		return "", err
	}
	hash := signed.TxJSON.Hash
	if hash == "" {
		hash = res.TxJSON.Hash
	}
	c.log.Info("Transaction submitted", "hash", hash, "engine_result", res.EngineResult)

	if res.EngineResult.Final() {
		return hash, &EngineError{Result: res.EngineResult, Message: res.EngineResultMessage}
	}

	if err := c.waitValidated(ctx, hash, tx.LastLedgerSequence); err != nil {
		return hash, err
	}
	return hash, nil
}

func (c *Client) waitValidated(ctx context.Context, hash string, lastLedger uint32) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		tx, err := c.Tx(ctx, hash)
		var rpcErr *RPCError
		switch {
		case err == nil && tx.Validated:
			if tx.Meta.TransactionResult != types.ResultSuccess {
				return &EngineError{Result: tx.Meta.TransactionResult}
			}
			c.log.Info("Transaction validated", "hash", hash, "ledger_index", tx.LedgerIndex)
			return nil
		case err == nil, errors.As(err, &rpcErr) && rpcErr.Code == "txnNotFound":
			// still pending
		default:
			return err
		}

		if lastLedger > 0 {
			validated, err := c.ValidatedLedger(ctx)
			if err != nil {
				return err
			}
			if validated > lastLedger {
				return ErrTxExpired
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for validation of %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}
