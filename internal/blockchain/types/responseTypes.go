package types

import "encoding/json"

// Engine result classes returned by rippled on submit.
type EngineResult string

const (
	ResultSuccess EngineResult = "tesSUCCESS"
	ResultQueued  EngineResult = "terQUEUED"
)

// Class returns the three letter prefix (tes, tec, tef, tel, tem, ter).
func (r EngineResult) Class() string {
	if len(r) < 3 {
		return ""
	}
	return string(r[:3])
}

// Final reports whether the result can never lead to the tx being included in a ledger.
func (r EngineResult) Final() bool {
	switch r.Class() {
	case "tem", "tef", "tel":
		return true
	}
	return false
}

// Payment is the tx_json of an XRP-to-XRP Payment transaction.
type Payment struct {
	TransactionType    string  `json:"TransactionType"`
	Account            string  `json:"Account"`
	Destination        string  `json:"Destination"`
	DestinationTag     *uint32 `json:"DestinationTag,omitempty"`
	Amount             string  `json:"Amount"` // drops
	Fee                string  `json:"Fee,omitempty"`
	Sequence           uint32  `json:"Sequence,omitempty"`
	LastLedgerSequence uint32  `json:"LastLedgerSequence,omitempty"`
	SigningPubKey      string  `json:"SigningPubKey,omitempty"`
	TxnSignature       string  `json:"TxnSignature,omitempty"`
	Hash               string  `json:"hash,omitempty"`
}

// Response is the websocket envelope for every command reply.
type Response struct {
	ID           uint64          `json:"id"`
	Status       string          `json:"status"`
	Type         string          `json:"type"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorCode    int             `json:"error_code"`
	ErrorMessage string          `json:"error_message"`
}

type AccountData struct {
	Account  string `json:"Account"`
	Balance  string `json:"Balance"`
	Sequence uint32 `json:"Sequence"`
}

// AccountInfo is the result of account_info.
type AccountInfo struct {
	AccountData        AccountData `json:"account_data"`
	LedgerIndex        uint32      `json:"ledger_index"`
	LedgerCurrentIndex uint32      `json:"ledger_current_index"`
	Validated          bool        `json:"validated"`
}

type FeeDrops struct {
	BaseFee       string `json:"base_fee"`
	MedianFee     string `json:"median_fee"`
	MinimumFee    string `json:"minimum_fee"`
	OpenLedgerFee string `json:"open_ledger_fee"`
}

// FeeResult is the result of the fee command.
type FeeResult struct {
	Drops              FeeDrops `json:"drops"`
	LedgerCurrentIndex uint32   `json:"ledger_current_index"`
}

// LedgerResult is the result of ledger with ledger_index "validated".
type LedgerResult struct {
	LedgerIndex uint32 `json:"ledger_index"`
	Validated   bool   `json:"validated"`
}

// SignResult is the result of the node-side sign command.
type SignResult struct {
	TxBlob string  `json:"tx_blob"`
	TxJSON Payment `json:"tx_json"`
}

// SubmitResult is the result of submit.
type SubmitResult struct {
	EngineResult        EngineResult `json:"engine_result"`
	EngineResultCode    int          `json:"engine_result_code"`
	EngineResultMessage string       `json:"engine_result_message"`
	Accepted            bool         `json:"accepted"`
	TxBlob              string       `json:"tx_blob"`
	TxJSON              Payment      `json:"tx_json"`
}

type TxMeta struct {
	TransactionResult EngineResult `json:"TransactionResult"`
	DeliveredAmount   any          `json:"delivered_amount,omitempty"`
}

// TxResult is the result of the tx command.
type TxResult struct {
	Hash        string `json:"hash"`
	LedgerIndex uint32 `json:"ledger_index"`
	Validated   bool   `json:"validated"`
	Meta        TxMeta `json:"meta"`
}
