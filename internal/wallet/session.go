package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Soar-Robotics/SoarchainPresale/internal/utils"
)

// StorageKey is the local storage key holding the connected address.
const StorageKey = "walletAddress"

const (
	LabelConnect     = "Connect Wallet"
	connectedPrefix  = "Connected: "
	labelAddressSize = 6
)

// ConnectFailedMessage is shown to the user for any failed connect attempt.
const ConnectFailedMessage = "Failed to connect wallet. Please try again."

var ErrConnectFailed = errors.New("failed to connect wallet")

type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Snapshot is what the UI renders from.
type Snapshot struct {
	State      State
	Address    string
	Label      string
	CanConnect bool
}

// Provider is the wallet side of a connection: it holds keys and picks accounts.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	// Events may return nil when the provider never reports changes.
	Events() <-chan Event
}

// AccountCheck verifies a freshly selected account, e.g. against the ledger.
type AccountCheck func(ctx context.Context, address string) error

type Option func(*Session)

func WithAccountCheck(check AccountCheck) Option {
	return func(s *Session) { s.check = check }
}

func WithLogger(log *utils.Logger) Option {
	return func(s *Session) { s.log = log }
}

// Session tracks the connected wallet address. Calls are expected to be
// serialized by the user; the mutex only covers event delivery from Watch.
type Session struct {
	provider Provider
	storage  Storage
	check    AccountCheck
	log      *utils.Logger

	mu        sync.Mutex
	address   string
	observers map[int]func(Snapshot)
	nextObs   int
}

// NewSession restores a previously stored address, if any.
func NewSession(provider Provider, storage Storage, opts ...Option) (*Session, error) {
	s := &Session{
		provider:  provider,
		storage:   storage,
		log:       utils.NopLogger(),
		observers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	addr, ok, err := storage.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("restore wallet session: %w", err)
	}
	if ok {
		s.address = addr
	}
	return s, nil
}

// Address returns the connected address, if any.
func (s *Session) Address() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address, s.address != ""
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.address)
}

func snapshotOf(address string) Snapshot {
	if address == "" {
		return Snapshot{State: Disconnected, Label: LabelConnect, CanConnect: true}
	}
	return Snapshot{State: Connected, Address: address, Label: Label(address), CanConnect: false}
}

// Label is the connect button text for a connected address.
func Label(address string) string {
	short := address
	if len(short) > labelAddressSize {
		short = short[:labelAddressSize]
	}
	return connectedPrefix + short + "..."
}

// Subscribe registers fn for every state transition and returns a func that
// removes it.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Connect asks the provider for an account. On failure nothing changes and
// the returned error wraps ErrConnectFailed.
func (s *Session) Connect(ctx context.Context) error {
	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		s.log.Warn("Wallet connection error", "error", err)
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	if len(accounts) == 0 || strings.TrimSpace(accounts[0]) == "" {
		s.log.Warn("Wallet returned no accounts")
		return fmt.Errorf("%w: no accounts returned", ErrConnectFailed)
	}
	address := strings.TrimSpace(accounts[0])

	if s.check != nil {
		if err := s.check(ctx, address); err != nil {
			s.log.Warn("Wallet account check failed", "address", address, "error", err)
			return fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}
	}

	if err := s.setAddress(address); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	s.log.Info("Connected wallet", "address", address)
	return nil
}

// Disconnect clears the session and the stored address.
func (s *Session) Disconnect() error {
	return s.setAddress("")
}

// HandleEvent applies one provider event.
func (s *Session) HandleEvent(e Event) error {
	switch ev := e.(type) {
	case AccountsChanged:
		s.log.Info("Accounts changed", "accounts", ev.Accounts)
		// A blank first account is treated like an empty list.
		var address string
		if len(ev.Accounts) > 0 {
			address = strings.TrimSpace(ev.Accounts[0])
		}
		return s.setAddress(address)
	case ChainChanged:
		s.log.Info("Chain changed", "chain_id", ev.ChainID)
		return nil
	case Disconnect:
		s.log.Info("Disconnected", "reason", ev.Err)
		return s.setAddress("")
	default:
		return fmt.Errorf("unknown wallet event %T", e)
	}
}

// Watch applies events until ctx is done or the channel closes.
func (s *Session) Watch(ctx context.Context, events <-chan Event) {
	if events == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.HandleEvent(ev); err != nil {
				s.log.Warn("Failed to apply wallet event", "error", err)
			}
		}
	}
}

func (s *Session) setAddress(address string) error {
	var err error
	if address == "" {
		err = s.storage.Remove(StorageKey)
	} else {
		err = s.storage.Set(StorageKey, address)
	}
	if err != nil {
		return fmt.Errorf("persist wallet session: %w", err)
	}

	s.mu.Lock()
	s.address = address
	snap := snapshotOf(address)
	observers := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
	return nil
}
