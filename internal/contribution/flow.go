package contribution

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain"
	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain/types"
	"github.com/Soar-Robotics/SoarchainPresale/internal/utils"
	"github.com/go-playground/validator/v10"
)

// MinXRP is the smallest contribution accepted from the UI.
const MinXRP = 1

const SuccessMessage = "Purchase successful!"

// emailRule matches the backend's binding for the optional email field.
const emailRule = "omitempty,email"

var validate = validator.New()

// Wallet exposes the connected address of a wallet session.
type Wallet interface {
	Address() (string, bool)
}

// Ledger is one open ledger connection able to pay and wait for validation.
type Ledger interface {
	SubmitPayment(ctx context.Context, tx types.Payment) (string, error)
	Close() error
}

type Dialer func(ctx context.Context) (Ledger, error)

type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

type Stage string

const (
	StageConnecting Stage = "connecting"
	StageSubmitting Stage = "submitting"
	StageRecording  Stage = "recording"
	StageSucceeded  Stage = "succeeded"
	StageFailed     Stage = "failed"
)

type Status struct {
	Stage   Stage
	Message string
}

type Config struct {
	Destination    string
	DestinationTag *uint32
	// RecordBeforeConfirmation records client data without touching the
	// ledger. The backend must then accept contributions without a tx id.
	RecordBeforeConfirmation bool
}

type Flow struct {
	cfg      Config
	wallet   Wallet
	dial     Dialer
	recorder Recorder
	log      *utils.Logger
	onStatus func(Status)
}

func NewFlow(cfg Config, wallet Wallet, dial Dialer, recorder Recorder, log *utils.Logger) *Flow {
	if log == nil {
		log = utils.NopLogger()
	}
	return &Flow{cfg: cfg, wallet: wallet, dial: dial, recorder: recorder, log: log}
}

// OnStatus registers the UI callback for progress updates.
func (f *Flow) OnStatus(fn func(Status)) {
	f.onStatus = fn
}

type Result struct {
	WalletAddress string
	XRPAmount     float64
	TransactionID string
}

// Submit pays xrpAmount from the connected wallet to the destination and
// records the contribution once the payment is validated.
func (f *Flow) Submit(ctx context.Context, xrpAmount float64, email string) (*Result, error) {
	address, ok := f.wallet.Address()
	if !ok {
		return nil, f.failed(ErrNoWalletConnected)
	}
	drops, err := checkAmount(xrpAmount)
	if err != nil {
		return nil, f.failed(err)
	}
	email = strings.TrimSpace(email)
	if err := validate.Var(email, emailRule); err != nil {
		return nil, f.failed(ErrInvalidEmail)
	}

	res := &Result{WalletAddress: address, XRPAmount: xrpAmount}

	if !f.cfg.RecordBeforeConfirmation {
		txID, err := f.pay(ctx, address, drops)
		if err != nil {
			return nil, f.failed(&LedgerError{Err: err})
		}
		res.TransactionID = txID
	}

	f.status(StageRecording, "Recording contribution...")
	err = f.recorder.Record(ctx, Record{
		WalletAddress: address,
		XRPAmount:     xrpAmount,
		TransactionID: res.TransactionID,
		Email:         email,
	})
	if err != nil {
		var recErr *RecordingError
		if !errors.As(err, &recErr) {
			err = &RecordingError{Err: err}
		}
		return res, f.failed(err)
	}

	f.log.Info("Contribution complete", "wallet", address, "xrp_amount", xrpAmount, "transaction_id", res.TransactionID)
	f.status(StageSucceeded, SuccessMessage)
	return res, nil
}

// checkAmount rejects amounts below MinXRP and amounts finer than one drop,
// so the recorded figure is exactly what was paid.
func checkAmount(xrp float64) (int64, error) {
	if math.IsNaN(xrp) || math.IsInf(xrp, 0) || xrp < MinXRP {
		return 0, fmt.Errorf("%w: minimum is %d XRP", ErrInvalidAmount, MinXRP)
	}
	drops, err := blockchain.XRPToDrops(xrp)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if blockchain.DropsToXRP(drops) != xrp {
		return 0, fmt.Errorf("%w: at most 6 decimal places", ErrInvalidAmount)
	}
	return drops, nil
}

func (f *Flow) pay(ctx context.Context, address string, drops int64) (string, error) {
	f.status(StageConnecting, "Connecting to the XRP Ledger...")
	ledger, err := f.dial(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			f.log.Debug("Closing ledger connection", "error", err)
		}
	}()

	f.status(StageSubmitting, "Submitting payment...")
	return ledger.SubmitPayment(ctx, types.Payment{
		TransactionType: "Payment",
		Account:         address,
		Destination:     f.cfg.Destination,
		DestinationTag:  f.cfg.DestinationTag,
		Amount:          strconv.FormatInt(drops, 10),
	})
}

func (f *Flow) failed(err error) error {
	f.log.Warn("Contribution failed", "error", err)
	f.status(StageFailed, err.Error())
	return err
}

func (f *Flow) status(stage Stage, msg string) {
	if f.onStatus != nil {
		f.onStatus(Status{Stage: stage, Message: msg})
	}
}
