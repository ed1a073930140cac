package wallet

// Event is a change reported by the wallet provider.
type Event interface {
	walletEvent()
}

// AccountsChanged carries the provider's new account list. An empty list
// means the user revoked access.
type AccountsChanged struct {
	Accounts []string
}

type ChainChanged struct {
	ChainID string
}

// Disconnect is sent when the provider session ends.
type Disconnect struct {
	Err error
}

func (AccountsChanged) walletEvent() {}
func (ChainChanged) walletEvent()    {}
func (Disconnect) walletEvent()      {}
