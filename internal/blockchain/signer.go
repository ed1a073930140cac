package blockchain

import (
	"context"
	"errors"
	"fmt"

	xrplwallet "github.com/Peersyst/xrpl-go/xrpl/wallet"
	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain/types"
)

var ErrSignerAccount = errors.New("payment account does not match the signing wallet")

// Signer holds the keys of the paying account. It returns the signed blob and
// the tx_json with its hash.
type Signer interface {
	Sign(ctx context.Context, tx types.Payment) (*types.SignResult, error)
}

// SeedSigner derives the account keys from a family seed and signs locally.
type SeedSigner struct {
	wallet xrplwallet.Wallet
}

func NewSeedSigner(seed string) (*SeedSigner, error) {
	w, err := xrplwallet.FromSeed(seed, "")
	if err != nil {
		return nil, fmt.Errorf("derive wallet from seed: %w", err)
	}
	return &SeedSigner{wallet: w}, nil
}

// Address is the classic address controlled by the seed.
func (s *SeedSigner) Address() string {
	return string(s.wallet.ClassicAddress)
}

func (s *SeedSigner) Sign(_ context.Context, tx types.Payment) (*types.SignResult, error) {
	if tx.Account != s.Address() {
		return nil, fmt.Errorf("%w: %s != %s", ErrSignerAccount, tx.Account, s.Address())
	}

	blob, hash, err := s.wallet.Sign(flatten(tx))
	if err != nil {
		return nil, fmt.Errorf("sign payment: %w", err)
	}
	signed := tx
	signed.Hash = hash
	return &types.SignResult{TxBlob: blob, TxJSON: signed}, nil
}

// flatten builds the field map the binary codec encodes. UInt32 fields stay
// uint32 and amounts stay drop strings.
func flatten(tx types.Payment) map[string]interface{} {
	flat := map[string]interface{}{
		"TransactionType": tx.TransactionType,
		"Account":         tx.Account,
		"Destination":     tx.Destination,
		"Amount":          tx.Amount,
		"Fee":             tx.Fee,
		"Sequence":        tx.Sequence,
	}
	if tx.LastLedgerSequence != 0 {
		flat["LastLedgerSequence"] = tx.LastLedgerSequence
	}
	if tx.DestinationTag != nil {
		flat["DestinationTag"] = *tx.DestinationTag
	}
	return flat
}

// nodeSigner asks the node to sign with the seed. The seed travels to the
// node, so it is only built when Options.NodeSign is set.
type nodeSigner struct {
	client *Client
	secret string
}

func (s *nodeSigner) Sign(ctx context.Context, tx types.Payment) (*types.SignResult, error) {
	return s.client.Sign(ctx, tx, s.secret)
}
