package contribution

import (
	"errors"
	"fmt"
)

var (
	ErrNoWalletConnected      = errors.New("no wallet connected")
	ErrInvalidAmount          = errors.New("invalid XRP amount")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrLedgerSubmissionFailed = errors.New("ledger submission failed")
	ErrRecordingFailed        = errors.New("recording contribution failed")
)

// LedgerError wraps any failure between opening the ledger connection and
// validation of the payment.
type LedgerError struct {
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s: %v", ErrLedgerSubmissionFailed, e.Err)
}

func (e *LedgerError) Unwrap() []error { return []error{ErrLedgerSubmissionFailed, e.Err} }

// RecordingError is a non-success reply from the backend. Recorded is true
// when the backend stored the contribution but failed afterwards.
type RecordingError struct {
	StatusCode int
	Message    string
	Recorded   bool
	Err        error
}

func (e *RecordingError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", ErrRecordingFailed, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrRecordingFailed, e.Err)
	default:
		return fmt.Sprintf("%s: http %d", ErrRecordingFailed, e.StatusCode)
	}
}

func (e *RecordingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRecordingFailed}
	}
	return []error{ErrRecordingFailed, e.Err}
}
