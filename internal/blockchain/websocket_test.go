package blockchain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain/types"
	"github.com/gorilla/websocket"
)

// fakeNode answers a handful of rippled commands. The submitted tx becomes
// validated after pendingPolls tx lookups.
type fakeNode struct {
	mu           sync.Mutex
	commands     []string
	submitResult string
	finalResult  string
	pendingPolls int
	validated    uint32
	lastSigned   map[string]any
	blobs        []string
	secrets      []any
}

func (n *fakeNode) handle(req map[string]any) map[string]any {
	n.mu.Lock()
	defer n.mu.Unlock()

	cmd, _ := req["command"].(string)
	n.commands = append(n.commands, cmd)
	if secret, ok := req["secret"]; ok {
		n.secrets = append(n.secrets, secret)
	}
	ok := func(result any) map[string]any {
		return map[string]any{"id": req["id"], "type": "response", "status": "success", "result": result}
	}
	fail := func(code string) map[string]any {
		return map[string]any{"id": req["id"], "type": "response", "status": "error", "error": code, "error_message": code + " message"}
	}

	switch cmd {
	case "account_info":
		if req["account"] == "rMissing" {
			return fail("actNotFound")
		}
		return ok(map[string]any{"account_data": map[string]any{"Account": req["account"], "Balance": "50000000", "Sequence": 7}, "ledger_current_index": 100})
	case "fee":
		return ok(map[string]any{"drops": map[string]any{"base_fee": "10", "open_ledger_fee": "12"}, "ledger_current_index": 100})
	case "sign":
		n.lastSigned, _ = req["tx_json"].(map[string]any)
		return ok(map[string]any{"tx_blob": "DEADBEEF", "tx_json": map[string]any{"hash": "TXN1"}})
	case "submit":
		blob, _ := req["tx_blob"].(string)
		n.blobs = append(n.blobs, blob)
		return ok(map[string]any{"engine_result": n.submitResult, "engine_result_message": "msg", "tx_json": map[string]any{"hash": "TXN1"}})
	case "tx":
		if n.pendingPolls > 0 {
			n.pendingPolls--
			return fail("txnNotFound")
		}
		return ok(map[string]any{"hash": req["transaction"], "validated": true, "ledger_index": 101, "meta": map[string]any{"TransactionResult": n.finalResult}})
	case "ledger":
		return ok(map[string]any{"ledger_index": n.validated, "validated": true})
	}
	return fail("unknownCmd")
}

func (n *fakeNode) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.commands...)
}

func startFakeNode(t *testing.T, node *fakeNode) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// A stream message with no id must be ignored by the client.
		_ = conn.WriteJSON(map[string]any{"type": "ledgerClosed", "ledger_index": 99})
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req map[string]any
			if err := json.Unmarshal(msg, &req); err != nil {
				return
			}
			if err := conn.WriteJSON(node.handle(req)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialFake(t *testing.T, node *fakeNode, opts Options) *Client {
	t.Helper()
	opts.PollInterval = 5 * time.Millisecond
	opts.ConfirmTimeout = 2 * time.Second
	c, err := Dial(context.Background(), startFakeNode(t, node), opts)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSubmitPayment_WaitsForValidation(t *testing.T) {
	node := &fakeNode{submitResult: "tesSUCCESS", finalResult: "tesSUCCESS", pendingPolls: 2, validated: 100}
	c := dialFake(t, node, Options{Secret: "snoPBrXtMeMyMHUVTgbuqAfg1SUTb", NodeSign: true})

	hash, err := c.SubmitPayment(context.Background(), types.Payment{
		Account:     "rSender",
		Destination: "rDest",
		Amount:      "5000000",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if hash != "TXN1" {
		t.Fatalf("hash: got %q", hash)
	}

	node.mu.Lock()
	signed := node.lastSigned
	node.mu.Unlock()

	if signed["Sequence"] != float64(7) {
		t.Fatalf("sequence not autofilled: %v", signed["Sequence"])
	}
	if signed["Fee"] != "12" {
		t.Fatalf("fee not autofilled: %v", signed["Fee"])
	}
	if signed["LastLedgerSequence"] != float64(120) {
		t.Fatalf("last ledger sequence: %v", signed["LastLedgerSequence"])
	}
	if signed["TransactionType"] != "Payment" {
		t.Fatalf("transaction type: %v", signed["TransactionType"])
	}

	submits := 0
	for _, cmd := range node.seen() {
		if cmd == "submit" {
			submits++
		}
	}
	if submits != 1 {
		t.Fatalf("expected exactly one submit, got %d", submits)
	}
}

func TestSubmitPayment_RejectedAtSubmit(t *testing.T) {
	node := &fakeNode{submitResult: "temBAD_AMOUNT", finalResult: "tesSUCCESS"}
	c := dialFake(t, node, Options{Secret: "s", NodeSign: true})

	_, err := c.SubmitPayment(context.Background(), types.Payment{Account: "rSender", Destination: "rDest", Amount: "1"})
	var engineErr *EngineError
	if !errors.As(err, &engineErr) || engineErr.Result != "temBAD_AMOUNT" {
		t.Fatalf("expected temBAD_AMOUNT engine error, got %v", err)
	}
	for _, cmd := range node.seen() {
		if cmd == "tx" {
			t.Fatalf("should not poll after a final rejection")
		}
	}
}

func TestSubmitPayment_FailedOutcome(t *testing.T) {
	node := &fakeNode{submitResult: "tesSUCCESS", finalResult: "tecUNFUNDED_PAYMENT"}
	c := dialFake(t, node, Options{Secret: "s", NodeSign: true})

	_, err := c.SubmitPayment(context.Background(), types.Payment{Account: "rSender", Destination: "rDest", Amount: "1"})
	var engineErr *EngineError
	if !errors.As(err, &engineErr) || engineErr.Result != "tecUNFUNDED_PAYMENT" {
		t.Fatalf("expected tecUNFUNDED_PAYMENT, got %v", err)
	}
}

func TestSubmitPayment_Expired(t *testing.T) {
	node := &fakeNode{submitResult: "tesSUCCESS", finalResult: "tesSUCCESS", pendingPolls: 1000, validated: 500}
	c := dialFake(t, node, Options{Secret: "s", NodeSign: true})

	_, err := c.SubmitPayment(context.Background(), types.Payment{Account: "rSender", Destination: "rDest", Amount: "1"})
	if !errors.Is(err, ErrTxExpired) {
		t.Fatalf("expected ErrTxExpired, got %v", err)
	}
}

// genesisSeed controls genesisAddress on every fresh rippled network.
const (
	genesisSeed    = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"
	genesisAddress = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
)

func TestSubmitPayment_SignsLocallyByDefault(t *testing.T) {
	node := &fakeNode{submitResult: "tesSUCCESS", finalResult: "tesSUCCESS", validated: 100}
	c := dialFake(t, node, Options{Secret: genesisSeed})

	hash, err := c.SubmitPayment(context.Background(), types.Payment{
		Account:     genesisAddress,
		Destination: "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
		Amount:      "5000000",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	node.mu.Lock()
	secrets, blobs := node.secrets, node.blobs
	node.mu.Unlock()

	if len(secrets) != 0 {
		t.Fatalf("the seed was sent to the node: %v", secrets)
	}
	for _, cmd := range node.seen() {
		if cmd == "sign" {
			t.Fatalf("node sign command used without NodeSign")
		}
	}
	if len(blobs) != 1 || blobs[0] == "" || blobs[0] == "DEADBEEF" {
		t.Fatalf("expected one locally signed blob, got %v", blobs)
	}
	if len(hash) != 64 {
		t.Fatalf("expected the locally computed hash, got %q", hash)
	}
}

func TestSeedSigner(t *testing.T) {
	s, err := NewSeedSigner(genesisSeed)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	if s.Address() != genesisAddress {
		t.Fatalf("address: got %q", s.Address())
	}

	_, err = s.Sign(context.Background(), types.Payment{Account: "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe", Destination: genesisAddress, Amount: "1"})
	if !errors.Is(err, ErrSignerAccount) {
		t.Fatalf("expected ErrSignerAccount, got %v", err)
	}

	if _, err := NewSeedSigner("not-a-seed"); err == nil {
		t.Fatalf("expected an error for a malformed seed")
	}
}

func TestSubmitPayment_NodeSignIsOptIn(t *testing.T) {
	node := &fakeNode{submitResult: "tesSUCCESS", finalResult: "tesSUCCESS", validated: 100}
	c := dialFake(t, node, Options{Secret: genesisSeed, NodeSign: true})

	if _, err := c.SubmitPayment(context.Background(), types.Payment{Account: "rSender", Destination: "rDest", Amount: "1"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	node.mu.Lock()
	defer node.mu.Unlock()
	if len(node.secrets) != 1 {
		t.Fatalf("node signing should send the seed exactly once, got %d", len(node.secrets))
	}
}

func TestSubmitPayment_NoSigner(t *testing.T) {
	c := dialFake(t, &fakeNode{}, Options{})
	if _, err := c.SubmitPayment(context.Background(), types.Payment{}); !errors.Is(err, ErrNoSigner) {
		t.Fatalf("expected ErrNoSigner, got %v", err)
	}
}

func TestAccountInfo_RPCError(t *testing.T) {
	c := dialFake(t, &fakeNode{}, Options{})

	_, err := c.AccountInfo(context.Background(), "rMissing", "validated")
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != "actNotFound" {
		t.Fatalf("expected actNotFound, got %v", err)
	}
}

func TestRequestAfterClose(t *testing.T) {
	c := dialFake(t, &fakeNode{}, Options{})
	_ = c.Close()

	if _, err := c.Fee(context.Background()); err == nil {
		t.Fatalf("expected error after close")
	}
}

func TestXRPToDrops(t *testing.T) {
	cases := []struct {
		xrp     float64
		drops   int64
		wantErr bool
	}{
		{xrp: 1, drops: 1_000_000},
		{xrp: 5, drops: 5_000_000},
		{xrp: 0.000001, drops: 1},
		{xrp: 1.1, drops: 1_100_000},
		{xrp: -1, wantErr: true},
		{xrp: 200_000_000_000, wantErr: true},
	}
	for _, tc := range cases {
		got, err := XRPToDrops(tc.xrp)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("XRPToDrops(%v): expected error", tc.xrp)
			}
			continue
		}
		if err != nil || got != tc.drops {
			t.Fatalf("XRPToDrops(%v) = %d, %v; want %d", tc.xrp, got, err, tc.drops)
		}
	}
	if DropsToXRP(2_500_000) != 2.5 {
		t.Fatalf("DropsToXRP mismatch")
	}
}
